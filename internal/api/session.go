package api

import (
	"net/http"
	"strings"

	"github.com/p-n-ai/pai-classroom/internal/activity"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/generation"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

// TeacherHeader names the active teacher of a request.
const TeacherHeader = "X-Teacher-ID"

const dashboardActivityLimit = 10

// sessionTeacherID reads the active teacher from the header or the teacher_id
// query parameter.
func sessionTeacherID(r *http.Request) (classroom.ID, bool) {
	raw := strings.TrimSpace(r.Header.Get(TeacherHeader))
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("teacher_id"))
	}
	if raw == "" {
		return 0, false
	}
	id, err := classroom.ParseID(raw)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// sessionTeacher resolves the session id against the store. ok is false when
// the request names no teacher or the teacher does not exist.
func (h *Handler) sessionTeacher(r *http.Request) (classroom.Teacher, bool, error) {
	id, ok := sessionTeacherID(r)
	if !ok {
		return classroom.Teacher{}, false, nil
	}
	var (
		teacher classroom.Teacher
		found   bool
	)
	err := h.store.View(r.Context(), func(doc *store.Document) error {
		teacher, found = store.Teachers.Find(doc, id)
		return nil
	})
	if err != nil {
		return classroom.Teacher{}, false, err
	}
	return teacher, found, nil
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.Header.Get(TeacherHeader)) == "" && r.URL.Query().Get("teacher_id") == "" {
		writeError(w, http.StatusBadRequest, "teacher id required")
		return
	}
	id, ok := sessionTeacherID(r)
	if !ok {
		writeStoreError(w, r, store.Teachers.NotFound())
		return
	}
	teacher, err := store.Teachers.Get(r.Context(), h.store, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

type aiUsage struct {
	Used   int64 `json:"used"`
	Budget int64 `json:"budget"`
}

type dashboardResponse struct {
	Subjects        int              `json:"subjects"`
	Lectures        int              `json:"lectures"`
	Tests           int              `json:"tests"`
	Teachers        int              `json:"teachers"`
	Schedules       int              `json:"schedules"`
	UpcomingLessons int              `json:"upcoming_lessons"`
	RecentActivity  []activity.Event `json:"recent_activity"`
	AIUsage         *aiUsage         `json:"ai_usage,omitempty"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	teacherID, hasSession := sessionTeacherID(r)

	var resp dashboardResponse
	err := h.store.View(r.Context(), func(doc *store.Document) error {
		resp.Subjects = len(doc.Subjects)
		resp.Lectures = len(doc.Lectures)
		resp.Tests = len(doc.Tests)
		resp.Teachers = len(doc.Teachers)
		resp.Schedules = len(doc.Schedules)
		if hasSession {
			if _, known := store.Teachers.Find(doc, teacherID); !known {
				hasSession = false
			}
		}
		if hasSession {
			if s, ok := latestSchedule(doc.Schedules, teacherID); ok {
				resp.UpcomingLessons = s.LessonCount()
			}
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	resp.RecentActivity = h.feed.Recent(dashboardActivityLimit)

	if h.budget != nil {
		scope := generation.AnonymousScope
		if hasSession {
			scope = teacherID.String()
		}
		used, budget, err := h.budget.Usage(r.Context(), scope)
		if err != nil {
			logger(r).Warn("failed to read AI usage", "scope", scope, "error", err)
		} else {
			resp.AIUsage = &aiUsage{Used: used, Budget: budget}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// latestSchedule picks the teacher's schedule with the newest week, breaking
// ties by id.
func latestSchedule(schedules []classroom.Schedule, teacherID classroom.ID) (classroom.Schedule, bool) {
	var (
		best  classroom.Schedule
		found bool
	)
	for _, s := range schedules {
		if s.TeacherID != teacherID {
			continue
		}
		if !found || s.WeekStart > best.WeekStart || (s.WeekStart == best.WeekStart && s.ID > best.ID) {
			best, found = s, true
		}
	}
	return best, found
}

package api

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/p-n-ai/pai-classroom/internal/activity"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/generation"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

const msgScheduleFailed = "schedule generation failed"

type lectureRequest struct {
	Title     string       `json:"title" validate:"notblank"`
	SubjectID classroom.ID `json:"subjectId" validate:"required"`
}

type testRequest struct {
	LectureID     classroom.ID `json:"lectureId" validate:"required"`
	LegacyID      classroom.ID `json:"lecture_id" validate:"-"`
	QuestionCount int          `json:"questionCount" validate:"gte=0,lte=100"`
	Difficulty    string       `json:"difficulty" validate:"max=64"`
	Types         []string     `json:"types" validate:"omitempty,dive,notblank"`
}

// generationContext charges generation to the session teacher. An id that does
// not resolve to a stored teacher is charged as anonymous.
func (h *Handler) generationContext(r *http.Request) context.Context {
	teacher, ok, err := h.sessionTeacher(r)
	if err != nil {
		logger(r).Warn("failed to resolve session teacher", "error", err)
		return r.Context()
	}
	if !ok {
		return r.Context()
	}
	return generation.WithScope(r.Context(), teacher.ID.String())
}

func (h *Handler) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			logger(r).Error("schedule generation panicked", "panic", rec)
			writeError(w, http.StatusInternalServerError, msgScheduleFailed)
		}
	}()

	teacherID, ok := pathID(r, "teacherId")
	if !ok {
		writeStoreError(w, r, store.Teachers.NotFound())
		return
	}

	var (
		teacher  classroom.Teacher
		subjects []classroom.Subject
	)
	err := h.store.View(r.Context(), func(doc *store.Document) error {
		t, found := store.Teachers.Find(doc, teacherID)
		if !found {
			return store.Teachers.NotFound()
		}
		teacher = t
		subjects = slices.Clone(store.Subjects.All(doc))
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeStoreError(w, r, err)
			return
		}
		logger(r).Error("load teacher for schedule", "teacher_id", teacherID, "error", err)
		writeError(w, http.StatusInternalServerError, msgScheduleFailed)
		return
	}

	schedule := h.gen.GenerateSchedule(h.generationContext(r), teacher, subjects)

	err = h.store.Update(r.Context(), func(doc *store.Document) error {
		schedule = store.Schedules.Insert(doc, schedule.ID, schedule)
		return nil
	})
	if err != nil {
		logger(r).Error("save generated schedule", "teacher_id", teacherID, "error", err)
		writeError(w, http.StatusInternalServerError, msgScheduleFailed)
		return
	}

	h.record(r, activity.Event{
		Type:      activity.TypeGenerated,
		Entity:    store.Schedules.Entity,
		RecordID:  schedule.ID,
		Name:      schedule.WeekStart,
		TeacherID: teacher.ID,
	})
	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleGenerateLecture(w http.ResponseWriter, r *http.Request) {
	var req lectureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	subject, err := store.Subjects.Get(r.Context(), h.store, req.SubjectID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	content := h.gen.GenerateLecture(h.generationContext(r), req.Title, subject)

	lecture, err := store.Lectures.Create(r.Context(), h.store, classroom.Lecture{
		Name:      req.Title,
		Content:   content,
		SubjectID: subject.ID,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.record(r, activity.Event{
		Type:     activity.TypeGenerated,
		Entity:   store.Lectures.Entity,
		RecordID: lecture.ID,
		Name:     lecture.Name,
	})
	writeJSON(w, http.StatusOK, lecture)
}

func (h *Handler) handleGenerateTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.LectureID == 0 {
		req.LectureID = req.LegacyID
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	lecture, err := store.Lectures.Get(r.Context(), h.store, req.LectureID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	questions := h.gen.GenerateTest(h.generationContext(r), lecture, generation.TestOptions{
		QuestionCount: req.QuestionCount,
		Difficulty:    req.Difficulty,
		Types:         req.Types,
	})

	test, err := store.Tests.Create(r.Context(), h.store, classroom.Test{
		LectureID:     lecture.ID,
		Name:          generation.TestName(lecture),
		Questions:     questions,
		SchemaVersion: classroom.TestSchemaVersion,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.record(r, activity.Event{
		Type:     activity.TypeGenerated,
		Entity:   store.Tests.Entity,
		RecordID: test.ID,
		Name:     test.Name,
	})
	writeJSON(w, http.StatusOK, test)
}

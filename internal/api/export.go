package api

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/export"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

func (h *Handler) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeStoreError(w, r, store.Schedules.NotFound())
		return
	}

	var (
		schedule classroom.Schedule
		lookup   export.Lookup
	)
	err := h.store.View(r.Context(), func(doc *store.Document) error {
		s, found := store.Schedules.Find(doc, id)
		if !found {
			return store.Schedules.NotFound()
		}
		schedule = s
		lookup.Subjects = slices.Clone(doc.Subjects)
		lookup.Lectures = slices.Clone(doc.Lectures)
		if t, found := store.Teachers.Find(doc, s.TeacherID); found {
			lookup.Teacher = t.Name
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	buf, name, err := export.Schedule(schedule, lookup)
	if err != nil {
		logger(r).Error("export schedule", "schedule_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

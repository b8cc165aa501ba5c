package api

import (
	"encoding/json"
	"net/http"

	"github.com/p-n-ai/pai-classroom/internal/activity"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

// resource describes how one collection is exposed.
type resource[T any] struct {
	coll     store.Collection[T]
	label    func(T) string
	teacher  func(T) classroom.ID // optional
	readOnly bool                 // no POST or PUT
}

func (res resource[T]) event(typ string, rec T) activity.Event {
	e := activity.Event{
		Type:     typ,
		Entity:   res.coll.Entity,
		RecordID: res.coll.ID(rec),
		Name:     res.label(rec),
	}
	if res.teacher != nil {
		e.TeacherID = res.teacher(rec)
	}
	return e
}

func registerResource[T any](mux *http.ServeMux, h *Handler, res resource[T]) {
	base := "/" + res.coll.Name

	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		records, err := res.coll.List(r.Context(), h.store)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	mux.HandleFunc("GET "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeStoreError(w, r, res.coll.NotFound())
			return
		}
		rec, err := res.coll.Get(r.Context(), h.store, id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if ok {
			if err := res.coll.Delete(r.Context(), h.store, id); err != nil {
				writeStoreError(w, r, err)
				return
			}
			h.record(r, activity.Event{Type: activity.TypeDeleted, Entity: res.coll.Entity, RecordID: id})
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: res.coll.Entity + " deleted"})
	})

	if res.readOnly {
		return
	}

	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if err := decodeJSON(r, &rec); err != nil {
			writeDecodeError(w, err)
			return
		}
		created, err := res.coll.Create(r.Context(), h.store, rec)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		h.record(r, res.event(activity.TypeCreated, created))
		writeJSON(w, http.StatusOK, created)
	})

	mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeStoreError(w, r, res.coll.NotFound())
			return
		}
		var patch map[string]json.RawMessage
		if err := decodeJSON(r, &patch); err != nil {
			writeDecodeError(w, err)
			return
		}
		updated, err := res.coll.Merge(r.Context(), h.store, id, patch)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		h.record(r, res.event(activity.TypeUpdated, updated))
		writeJSON(w, http.StatusOK, updated)
	})
}

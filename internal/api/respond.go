package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

const (
	msgInvalidBody   = "invalid request body"
	msgBodyTooLarge  = "request body too large"
	msgInternalError = "internal server error"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads the request body into v. An empty body decodes as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeDecodeError maps a body decoding failure onto 413 or 400.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	writeError(w, http.StatusBadRequest, msgInvalidBody)
}

// writeStoreError maps store errors onto responses. Anything unexpected is
// logged and reported as a bare 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *store.NotFoundError
	var badPatch *store.InvalidPatchError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &badPatch):
		writeError(w, http.StatusBadRequest, msgInvalidBody)
	default:
		logger(r).Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// pathID parses a numeric path parameter. A value that is not a number cannot
// match any record, so callers answer 404.
func pathID(r *http.Request, name string) (classroom.ID, bool) {
	id, err := classroom.ParseID(r.PathValue(name))
	if err != nil {
		return 0, false
	}
	return id, true
}

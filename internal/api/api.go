// Package api serves the classroom workspace over HTTP: CRUD for every
// collection, the AI generation endpoints, the dashboard, schedule export and
// the activity feed.
package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/pai-classroom/internal/activity"
	"github.com/p-n-ai/pai-classroom/internal/ai"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/generation"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

const recentActivityLimit = 50

// Config holds dependencies for the HTTP handler.
type Config struct {
	Store        *store.Store
	Generator    *generation.Generator
	Activity     *activity.Feed   // default: a fresh in-memory feed
	Budget       ai.BudgetChecker // optional, reported by /dashboard
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Handler routes and serves API requests.
type Handler struct {
	store       *store.Store
	gen         *generation.Generator
	feed        *activity.Feed
	budget      ai.BudgetChecker
	validate    *validator.Validate
	corsOrigins []string
	maxBody     int64
}

// New creates an API handler.
func New(cfg Config) *Handler {
	feed := cfg.Activity
	if feed == nil {
		feed = activity.NewFeed()
	}
	return &Handler{
		store:       cfg.Store,
		gen:         cfg.Generator,
		feed:        feed,
		budget:      cfg.Budget,
		validate:    newValidator(),
		corsOrigins: cfg.CORSOrigins,
		maxBody:     cfg.MaxBodyBytes,
	}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	registerResource(mux, h, resource[classroom.Subject]{
		coll:  store.Subjects,
		label: func(s classroom.Subject) string { return s.Name },
	})
	registerResource(mux, h, resource[classroom.Lecture]{
		coll:  store.Lectures,
		label: func(l classroom.Lecture) string { return l.Name },
	})
	registerResource(mux, h, resource[classroom.Test]{
		coll:  store.Tests,
		label: func(t classroom.Test) string { return t.Name },
	})
	registerResource(mux, h, resource[classroom.Teacher]{
		coll:  store.Teachers,
		label: func(t classroom.Teacher) string { return t.Name },
	})
	registerResource(mux, h, resource[classroom.Schedule]{
		coll:     store.Schedules,
		label:    func(s classroom.Schedule) string { return s.WeekStart },
		teacher:  func(s classroom.Schedule) classroom.ID { return s.TeacherID },
		readOnly: true,
	})

	mux.HandleFunc("POST /schedules/generate/{teacherId}", h.handleGenerateSchedule)
	mux.HandleFunc("GET /schedules/{id}/export", h.handleExportSchedule)
	mux.HandleFunc("POST /ai/lectures", h.handleGenerateLecture)
	mux.HandleFunc("POST /ai/tests", h.handleGenerateTest)

	mux.HandleFunc("GET /session", h.handleSession)
	mux.HandleFunc("GET /dashboard", h.handleDashboard)
	mux.HandleFunc("GET /activity", h.handleActivity)
	mux.HandleFunc("GET /activity/stream", h.handleActivityStream)
}

// Routes returns a mux with every API route behind the middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return h.Wrap(mux)
}

// Wrap applies request ids, logging, panic recovery, CORS and the body limit.
func (h *Handler) Wrap(next http.Handler) http.Handler {
	return chain(next,
		requestID,
		logRequests,
		recoverPanic,
		h.cors,
		h.limitBody,
	)
}

// record publishes an activity event; a failing sink is logged, not returned.
func (h *Handler) record(r *http.Request, event activity.Event) {
	if err := h.feed.Log(event); err != nil {
		logger(r).Warn("failed to record activity", "type", event.Type, "entity", event.Entity, "error", err)
	}
}

// Package server exposes the conversational core and the task CRUD
// over HTTP. The handlers are thin glue: identity resolution, JSON
// plumbing, and error-to-status mapping around the coach service and
// the task store.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/coachly/coachd/coach"
	"github.com/coachly/coachd/core"
	"github.com/coachly/coachd/task"
)

// Authenticator resolves the request's user identity. Session
// handling is an external collaborator; the default implementation
// trusts a header and is meant for development.
type Authenticator interface {
	UserID(r *http.Request) string
}

// HeaderAuth resolves the user from the X-User-ID header.
type HeaderAuth struct{}

// UserID implements Authenticator.
func (HeaderAuth) UserID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// Server is the HTTP API.
type Server struct {
	service  *coach.Service
	profiles *coach.ProfileStore
	tasks    *task.Store
	auth     Authenticator
	logger   *slog.Logger
	router   chi.Router
}

// New assembles the router.
func New(service *coach.Service, profiles *coach.ProfileStore, tasks *task.Store, auth Authenticator, logger *slog.Logger) *Server {
	s := &Server{
		service:  service,
		profiles: profiles,
		tasks:    tasks,
		auth:     auth,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws/chat", s.handleChatSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/coach", s.handleUpsertCoach)
		r.Get("/coach", s.handleGetCoach)
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks", s.handleListTasks)
		r.Patch("/tasks/{id}/status", s.handleTaskStatus)
		r.Patch("/tasks/{id}/time", s.handleTaskTime)
		r.Post("/tasks/reset", s.handleTaskReset)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps error kinds to statuses. The raw kind is logged,
// never leaked to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)

	switch {
	case errors.Is(err, core.ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, core.ErrRateLimitExceeded):
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
	case errors.Is(err, core.ErrRateLimiterUnavailable):
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, core.ErrCoachNotFound):
		http.Error(w, "Coach not found", http.StatusNotFound)
	case errors.Is(err, task.ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

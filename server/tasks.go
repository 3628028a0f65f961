package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coachly/coachd/coach"
	"github.com/coachly/coachd/core"
	"github.com/coachly/coachd/task"
)

type createTaskRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Frequency    string `json:"frequency"`
	SpecificDate string `json:"specific_date"`
	SpecificTime string `json:"specific_time"`
	Recurring    bool   `json:"recurring"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID := s.auth.UserID(r)
	if userID == "" {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	frequency, err := task.ParseFrequency(req.Frequency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := &task.Task{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Frequency:    frequency,
		SpecificTime: req.SpecificTime,
		Recurring:    req.Recurring,
	}
	if req.SpecificDate != "" {
		date, err := time.Parse("2006-01-02", req.SpecificDate)
		if err != nil {
			http.Error(w, "invalid specific_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		t.SpecificDate = &date
	}

	if err := s.tasks.Create(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID := s.auth.UserID(r)
	if userID == "" {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	tasks, err := s.tasks.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	if s.auth.UserID(r) == "" {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Completed == nil {
		http.Error(w, "completed is required", http.StatusBadRequest)
		return
	}

	if err := s.tasks.SetCompleted(r.Context(), chi.URLParam(r, "id"), *req.Completed); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleTaskTime(w http.ResponseWriter, r *http.Request) {
	if s.auth.UserID(r) == "" {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req struct {
		SpecificTime string `json:"specific_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SpecificTime == "" {
		http.Error(w, "specific_time is required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("15:04", req.SpecificTime); err != nil {
		http.Error(w, "invalid specific_time, use HH:MM", http.StatusBadRequest)
		return
	}

	if err := s.tasks.UpdateTime(r.Context(), chi.URLParam(r, "id"), req.SpecificTime); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleTaskReset triggers the recurring rollover on demand; the cron
// resetter runs the same logic nightly.
func (s *Server) handleTaskReset(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.ResetRecurring(r.Context(), time.Now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type upsertCoachRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
	Seed         string `json:"seed"`
}

func (s *Server) handleUpsertCoach(w http.ResponseWriter, r *http.Request) {
	userID := s.auth.UserID(r)
	if userID == "" {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req upsertCoachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Instructions == "" || req.Seed == "" {
		http.Error(w, "name, instructions and seed are required", http.StatusBadRequest)
		return
	}

	c := &coach.Coach{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		Instructions: req.Instructions,
		Seed:         req.Seed,
	}
	if err := s.profiles.Upsert(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetCoach(w http.ResponseWriter, r *http.Request) {
	userID := s.auth.UserID(r)
	if userID == "" {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}

	c, err := s.profiles.GetByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

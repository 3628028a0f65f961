package server

import (
	"encoding/json"
	"net/http"
)

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat runs one conversation turn: admission, seeding, context
// assembly and the model loop all happen inside the coach service.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := s.auth.UserID(r)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	answer, err := s.service.Respond(r.Context(), userID, req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/coachly/coachd/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type socketError struct {
	Error string `json:"error"`
}

// handleChatSocket serves a websocket conversation: each inbound
// {"prompt": ...} message runs one full turn and the answer (or a
// generic error) comes back on the same connection. The connection
// itself carries no conversation state; memory does.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	userID := s.auth.UserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("websocket read failed", "user", userID, "error", err)
			}
			return
		}
		if req.Prompt == "" {
			continue
		}

		answer, err := s.service.Respond(r.Context(), userID, req.Prompt)
		if err != nil {
			s.logger.Error("websocket turn failed", "user", userID, "error", err)
			msg := "Internal error"
			switch {
			case errors.Is(err, core.ErrRateLimitExceeded):
				msg = "Rate limit exceeded"
			case errors.Is(err, core.ErrCoachNotFound):
				msg = "Coach not found"
			}
			if err := conn.WriteJSON(socketError{Error: msg}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(chatResponse{Response: answer}); err != nil {
			return
		}
	}
}

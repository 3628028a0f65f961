package engine

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/coachly/coachd/core"
)

// Session accumulates the growing message list for one turn's model
// loop. It is the only state carried across model rounds; nothing is
// retained between turns, so concurrent conversations cannot share
// loop state.
type Session struct {
	// ThreadID scopes the session to one (user, persona) thread.
	ThreadID string

	// UserID is the identity on whose behalf tools execute.
	UserID string

	messages []anthropic.MessageParam
	rounds   int
}

// NewSession creates a session for a thread.
func NewSession(threadID, userID string) *Session {
	return &Session{ThreadID: threadID, UserID: userID}
}

// RestoreTurns loads role-tagged history into the message list.
// Consecutive turns with the same role are coalesced, since the
// Messages API expects alternating roles.
func (s *Session) RestoreTurns(turns []core.Turn) {
	var (
		lastRole core.Role
		pending  []string
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		text := strings.Join(pending, "\n")
		if lastRole == core.RoleUser {
			s.messages = append(s.messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		} else {
			s.messages = append(s.messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		}
		pending = nil
	}

	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		if turn.Role != lastRole {
			flush()
			lastRole = turn.Role
		}
		pending = append(pending, turn.Content)
	}
	flush()
}

// AddAssistantResponse appends the model's response blocks so tool
// results can follow them in the next round.
func (s *Session) AddAssistantResponse(resp *anthropic.Message) {
	var blocks []anthropic.ContentBlockParamUnion
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			blocks = append(blocks, anthropic.NewTextBlock(block.Text))
		case "tool_use":
			blocks = append(blocks, anthropic.NewToolUseBlock(block.ID, block.Input, block.Name))
		}
	}
	if len(blocks) > 0 {
		s.messages = append(s.messages, anthropic.NewAssistantMessage(blocks...))
	}
}

// AddToolResults appends tool results as a user message, per the
// Messages API tool-use protocol.
func (s *Session) AddToolResults(results []anthropic.ContentBlockParamUnion) {
	if len(results) > 0 {
		s.messages = append(s.messages, anthropic.NewUserMessage(results...))
	}
}

// Messages returns the accumulated message list.
func (s *Session) Messages() []anthropic.MessageParam {
	return s.messages
}

// Rounds returns the number of model rounds taken so far.
func (s *Session) Rounds() int {
	return s.rounds
}

// IncrementRounds counts one model round.
func (s *Session) IncrementRounds() {
	s.rounds++
}

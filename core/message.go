package core

import "strings"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the user.
	RoleUser Role = "user"

	// RoleSystem marks a turn authored by the assistant.
	// The name follows the log entry prefix ("System: "), kept for
	// compatibility with existing conversation logs.
	RoleSystem Role = "system"
)

const (
	userPrefix   = "User: "
	systemPrefix = "System: "
)

// Prefix returns the log entry prefix for the role.
func (r Role) Prefix() string {
	if r == RoleUser {
		return userPrefix
	}
	return systemPrefix
}

// Turn is one role-tagged utterance in a conversation, the unit
// exchanged with the model.
type Turn struct {
	Role    Role
	Content string
}

// ParseTurn parses a log entry into a turn by its role prefix.
// Entries without a recognized prefix (seeded backstory lines) are
// not turns; ok is false for those.
func ParseTurn(entry string) (Turn, bool) {
	switch {
	case strings.HasPrefix(entry, userPrefix):
		return Turn{Role: RoleUser, Content: strings.TrimSpace(entry[len(userPrefix):])}, true
	case strings.HasPrefix(entry, systemPrefix):
		return Turn{Role: RoleSystem, Content: strings.TrimSpace(entry[len(systemPrefix):])}, true
	}
	return Turn{}, false
}

// ParseTurns parses a chronological sequence of log entries, dropping
// entries that carry no role prefix.
func ParseTurns(entries []string) []Turn {
	turns := make([]Turn, 0, len(entries))
	for _, entry := range entries {
		if turn, ok := ParseTurn(entry); ok {
			turns = append(turns, turn)
		}
	}
	return turns
}

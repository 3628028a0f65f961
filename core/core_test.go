package core

import "testing"

func TestIdentity_Key_DistinctTriplesNeverCollide(t *testing.T) {
	// Components containing the join character must not produce the
	// same key as a shifted triple.
	a := Identity{Persona: "coach/pro", Model: "m", User: "u"}
	b := Identity{Persona: "coach", Model: "pro/m", User: "u"}

	if a.Key() == b.Key() {
		t.Errorf("Keys collided: %q", a.Key())
	}
}

func TestIdentity_Key_Deterministic(t *testing.T) {
	id := Identity{Persona: "coach-1", Model: "claude-sonnet-4", User: "user-1"}
	if id.Key() != id.Key() {
		t.Error("Key is not deterministic")
	}
	if id.Key() != "coach-1/claude-sonnet-4/user-1" {
		t.Errorf("Unexpected key: %q", id.Key())
	}
}

func TestIdentity_Valid(t *testing.T) {
	valid := Identity{Persona: "p", Model: "m", User: "u"}
	if !valid.Valid() {
		t.Error("Expected valid identity")
	}
	for _, id := range []Identity{
		{Model: "m", User: "u"},
		{Persona: "p", User: "u"},
		{Persona: "p", Model: "m"},
	} {
		if id.Valid() {
			t.Errorf("Expected invalid identity: %+v", id)
		}
	}
}

func TestIdentity_ThreadID_StablePerUserPersona(t *testing.T) {
	a := Identity{Persona: "coach-1", Model: "model-a", User: "user-1"}
	b := Identity{Persona: "coach-1", Model: "model-b", User: "user-1"}
	c := Identity{Persona: "coach-2", Model: "model-a", User: "user-1"}

	if a.ThreadID() != b.ThreadID() {
		t.Error("ThreadID should not depend on the model")
	}
	if a.ThreadID() == c.ThreadID() {
		t.Error("Different personas should get different threads")
	}
}

func TestParseTurn(t *testing.T) {
	tests := []struct {
		entry  string
		want   Turn
		wantOK bool
	}{
		{"User: hello there", Turn{RoleUser, "hello there"}, true},
		{"System: hi!", Turn{RoleSystem, "hi!"}, true},
		{"User:  padded  ", Turn{RoleUser, "padded"}, true},
		{"a seeded backstory line", Turn{}, false},
		{"user: lowercase prefix", Turn{}, false},
		{"", Turn{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseTurn(tt.entry)
		if ok != tt.wantOK {
			t.Errorf("ParseTurn(%q) ok = %v, want %v", tt.entry, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseTurn(%q) = %+v, want %+v", tt.entry, got, tt.want)
		}
	}
}

func TestParseTurns_DropsUnprefixedEntries(t *testing.T) {
	entries := []string{
		"backstory line with no prefix",
		"User: first question",
		"System: first answer",
	}

	turns := ParseTurns(entries)
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d: %+v", len(turns), turns)
	}
	if turns[0].Role != RoleUser || turns[0].Content != "first question" {
		t.Errorf("Unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != RoleSystem || turns[1].Content != "first answer" {
		t.Errorf("Unexpected second turn: %+v", turns[1])
	}
}

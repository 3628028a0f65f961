package core

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Identity is the composite key scoping all memory operations.
// The triple is immutable; it is never persisted as an object, only
// canonicalized into a key.
type Identity struct {
	// Persona is the coach identifier.
	Persona string

	// Model is the language model name.
	Model string

	// User is the user identifier.
	User string
}

// Valid reports whether all components are non-empty.
// The core assumes non-empty components; callers reject invalid
// identities upstream.
func (id Identity) Valid() bool {
	return id.Persona != "" && id.Model != "" && id.User != ""
}

// Key canonicalizes the identity into a single string key.
// Components are escaped so that distinct triples can never collide,
// regardless of what characters the components contain.
func (id Identity) Key() string {
	return strings.Join([]string{
		url.PathEscape(id.Persona),
		url.PathEscape(id.Model),
		url.PathEscape(id.User),
	}, "/")
}

// threadNamespace seeds deterministic thread ID derivation.
var threadNamespace = uuid.MustParse("9c3f86b4-52e1-4d8a-b0c7-1f4a75d3a1e2")

// ThreadID derives a stable thread identifier from (user, persona).
// Concurrent conversations for different identities get distinct
// threads, so tool-loop state never crosses between them.
func (id Identity) ThreadID() string {
	return uuid.NewSHA1(threadNamespace, []byte(id.User+"/"+id.Persona)).String()
}

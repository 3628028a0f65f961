package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coachly/coachd/core"
)

// Manager composes the chronological log and the semantic index into a
// single read/write/seed API keyed by identity. It owns the seeding
// idempotency rule and serves bounded recent history to the
// orchestrator.
//
// The log is the source of truth. Vector upserts are best-effort
// enrichment: the log write must be acknowledged before the upsert is
// attempted, and upsert or embedding failures are logged and swallowed.
type Manager struct {
	log      LogStore
	index    VectorIndex
	embedder Embedder

	// seedMu serializes seeding per key within this process, bounding
	// the concurrent-seed race to the existence check of the backing
	// store.
	seedMu sync.Map // key -> *sync.Mutex

	now func() time.Time
}

// NewManager creates a Manager over the given stores.
// Construct once at process start and share by reference; there is no
// hidden global instance.
func NewManager(logStore LogStore, index VectorIndex, embedder Embedder) *Manager {
	return &Manager{
		log:      logStore,
		index:    index,
		embedder: embedder,
		now:      time.Now,
	}
}

// SeedIfEmpty populates the identity's log with the persona's scripted
// backstory, split by delimiter. If the key already has history this is
// a no-op, which is what prevents the backstory from being duplicated
// on every conversation start. Seeded lines get ascending integer
// scores starting at 0, below any wall-clock score of a live turn.
//
// Must run to completion before the first user-turn write for the same
// identity, or seeded context could sort after live turns.
func (m *Manager) SeedIfEmpty(ctx context.Context, id core.Identity, seedText, delimiter string) error {
	key := id.Key()

	mu := m.keyMutex(key)
	mu.Lock()
	defer mu.Unlock()

	exists, err := m.log.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: exists check: %v", core.ErrStoreUnavailable, err)
	}
	if exists {
		log.Printf("[MEMORY] Key %s already seeded", key)
		return nil
	}

	lines := strings.Split(seedText, delimiter)
	for i, line := range lines {
		if err := m.log.Append(ctx, key, line, int64(i)); err != nil {
			return fmt.Errorf("%w: seed append: %v", core.ErrStoreUnavailable, err)
		}
		m.upsertVector(ctx, id, line)
	}

	log.Printf("[MEMORY] Seeded %d lines for key %s", len(lines), key)
	return nil
}

// WriteTurn appends "{Role}: {text}" scored by the current wall clock,
// then best-effort indexes the entry. A log failure is fatal; an
// index failure is not.
func (m *Manager) WriteTurn(ctx context.Context, id core.Identity, role core.Role, text string) error {
	entry := role.Prefix() + text
	if err := m.log.Append(ctx, id.Key(), entry, m.now().UnixMilli()); err != nil {
		return fmt.Errorf("%w: append turn: %v", core.ErrStoreUnavailable, err)
	}
	m.upsertVector(ctx, id, entry)
	return nil
}

// ReadRecent returns the last limit entries for the identity in
// chronological order, oldest first, suitable for direct use as a
// model context window.
func (m *Manager) ReadRecent(ctx context.Context, id core.Identity, limit int) ([]string, error) {
	entries, err := m.log.Range(ctx, id.Key(), 0, m.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: range: %v", core.ErrStoreUnavailable, err)
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Search embeds the query and returns up to topK passages from the
// identity's namespace, ranked by similarity and independent of
// chronological position. Exposed for long-range recall beyond the
// truncated context window; the orchestrator currently builds context
// from ReadRecent only.
func (m *Manager) Search(ctx context.Context, id core.Identity, query string, topK int) ([]ScoredText, error) {
	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	return m.index.Query(ctx, id.User, embedding, topK)
}

// upsertVector indexes one entry under the identity's namespace.
// Failures are logged and swallowed: the log write has already been
// acknowledged and must not be rolled back.
func (m *Manager) upsertVector(ctx context.Context, id core.Identity, text string) {
	embedding, err := m.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("[MEMORY] Embed failed for key %s: %v", id.Key(), err)
		return
	}

	rec := VectorRecord{
		ID:        uuid.New().String(),
		Embedding: embedding,
		Text:      text,
		Persona:   id.Persona,
		Model:     id.Model,
		User:      id.User,
	}
	if err := m.index.Upsert(ctx, id.User, rec); err != nil {
		log.Printf("[MEMORY] Vector upsert failed for key %s: %v", id.Key(), err)
	}
}

func (m *Manager) keyMutex(key string) *sync.Mutex {
	v, _ := m.seedMu.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

package memory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/coachly/coachd/core"
	"github.com/coachly/coachd/memory"
	"github.com/coachly/coachd/memory/embedder/mock"
	logsqlite "github.com/coachly/coachd/memory/logstore/sqlite"
	"github.com/coachly/coachd/memory/store/chromem"
)

func newTestManager(t *testing.T) *memory.Manager {
	t.Helper()

	logStore, err := logsqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create log store: %v", err)
	}
	t.Cleanup(func() { logStore.Close() })

	index, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	return memory.NewManager(logStore, index, mock.New(384))
}

func testIdentity(user string) core.Identity {
	return core.Identity{Persona: "coach-1", Model: "claude-sonnet-4", User: user}
}

func TestManager_SeedIfEmpty_Idempotent(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	id := testIdentity("user-1")

	seed := "Hello, I'm your coach.\n\nUser: Hi\n\nSystem: Great to meet you!"

	for i := 0; i < 3; i++ {
		if err := manager.SeedIfEmpty(ctx, id, seed, "\n\n"); err != nil {
			t.Fatalf("Seed %d failed: %v", i, err)
		}
	}

	entries, err := manager.ReadRecent(ctx, id, 100)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 seeded entries, got %d: %v", len(entries), entries)
	}
	if entries[0] != "Hello, I'm your coach." {
		t.Errorf("Unexpected first entry: %q", entries[0])
	}
}

func TestManager_WriteTurn_ChronologicalAfterSeed(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	id := testIdentity("user-2")

	if err := manager.SeedIfEmpty(ctx, id, "System: Welcome back.", "\n\n"); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := manager.WriteTurn(ctx, id, core.RoleUser, "I want to run a marathon"); err != nil {
		t.Fatalf("WriteTurn failed: %v", err)
	}
	if err := manager.WriteTurn(ctx, id, core.RoleSystem, "Let's build a training plan."); err != nil {
		t.Fatalf("WriteTurn failed: %v", err)
	}

	entries, err := manager.ReadRecent(ctx, id, 100)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}

	want := []string{
		"System: Welcome back.",
		"User: I want to run a marathon",
		"System: Let's build a training plan.",
	}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d: %v", len(want), len(entries), entries)
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Errorf("Entry %d: got %q, want %q", i, entry, want[i])
		}
	}
}

func TestManager_ReadRecent_TruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	id := testIdentity("user-3")

	for i := 0; i < 8; i++ {
		msg := fmt.Sprintf("message %d", i)
		if err := manager.WriteTurn(ctx, id, core.RoleUser, msg); err != nil {
			t.Fatalf("WriteTurn %d failed: %v", i, err)
		}
	}

	entries, err := manager.ReadRecent(ctx, id, 3)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	// The limit keeps the newest entries.
	if !strings.HasSuffix(entries[0], "message 5") || !strings.HasSuffix(entries[2], "message 7") {
		t.Errorf("Truncation kept the wrong window: %v", entries)
	}
}

func TestManager_IdentityIsolation(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	a := testIdentity("alice")
	b := testIdentity("bob")

	if err := manager.WriteTurn(ctx, a, core.RoleUser, "alice's secret"); err != nil {
		t.Fatalf("WriteTurn failed: %v", err)
	}

	entries, err := manager.ReadRecent(ctx, b, 10)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries for bob, got %v", entries)
	}
}

func TestManager_Search_ExactMatchRanksFirst(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	id := testIdentity("user-4")

	seed := "I enjoy hiking on weekends\n\nMy goal is to eat healthier\n\nWork has been stressful lately"
	if err := manager.SeedIfEmpty(ctx, id, seed, "\n\n"); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	// The mock embedder maps identical texts to identical vectors, so
	// an exact match must come back first with similarity ~1.
	hits, err := manager.Search(ctx, id, "My goal is to eat healthier", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Expected at least one hit")
	}
	if hits[0].Text != "My goal is to eat healthier" {
		t.Errorf("Expected exact match first, got %q (score %f)", hits[0].Text, hits[0].Score)
	}
	if hits[0].Score < 0.99 {
		t.Errorf("Expected near-perfect similarity for exact match, got %f", hits[0].Score)
	}
}

func TestManager_ConcurrentSeed_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	id := testIdentity("user-5")

	seed := "line one\n\nline two\n\nline three"

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- manager.SeedIfEmpty(ctx, id, seed, "\n\n")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Concurrent seed failed: %v", err)
		}
	}

	entries, err := manager.ReadRecent(ctx, id, 100)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries after concurrent seeding, got %d: %v", len(entries), entries)
	}
}

func TestManager_SeedThenTurnEndToEnd(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	id := core.Identity{Persona: "c1", Model: "m1", User: "u1"}

	if err := manager.SeedIfEmpty(ctx, id, "Hi\nHow are you", "\n"); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := manager.WriteTurn(ctx, id, core.RoleUser, "Hello"); err != nil {
		t.Fatalf("WriteTurn failed: %v", err)
	}

	entries, err := manager.ReadRecent(ctx, id, 3)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	want := []string{"Hi", "How are you", "User: Hello"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %v, got %v", want, entries)
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Errorf("Entry %d: got %q, want %q", i, entry, want[i])
		}
	}
}

// failingEmbedder always errors, to prove indexing is best-effort.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedder offline")
}

func (failingEmbedder) Dimensions() int { return 384 }

func TestManager_WriteTurn_SurvivesEmbedFailure(t *testing.T) {
	ctx := context.Background()

	logStore, err := logsqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create log store: %v", err)
	}
	defer logStore.Close()

	index, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	manager := memory.NewManager(logStore, index, failingEmbedder{})
	id := testIdentity("user-6")

	if err := manager.WriteTurn(ctx, id, core.RoleUser, "still recorded"); err != nil {
		t.Fatalf("WriteTurn should not fail on embed error: %v", err)
	}

	entries, err := manager.ReadRecent(ctx, id, 10)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(entries) != 1 || entries[0] != "User: still recorded" {
		t.Errorf("Expected the turn in the log, got %v", entries)
	}

	if _, err := manager.Search(ctx, id, "still recorded", 1); !errors.Is(err, core.ErrEmbedding) {
		t.Errorf("Expected ErrEmbedding from Search, got %v", err)
	}
}

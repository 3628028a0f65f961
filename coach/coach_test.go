package coach

import (
	"context"
	"errors"
	"testing"

	"github.com/coachly/coachd/core"
)

func newTestProfiles(t *testing.T) *ProfileStore {
	t.Helper()
	profiles, err := NewProfileStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create profile store: %v", err)
	}
	t.Cleanup(func() { profiles.Close() })
	return profiles
}

func TestProfileStore_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	profiles := newTestProfiles(t)

	c := &Coach{
		UserID:       "user-1",
		Name:         "Ava",
		Description:  "Fitness coach",
		Instructions: "Be encouraging",
		Seed:         "Hi there",
	}
	if err := profiles.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if c.ID == "" {
		t.Fatal("Expected an assigned coach ID")
	}

	got, err := profiles.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if got.ID != c.ID || got.Name != "Ava" || got.Seed != "Hi there" {
		t.Errorf("Unexpected coach: %+v", got)
	}
}

func TestProfileStore_UpsertKeepsStableID(t *testing.T) {
	ctx := context.Background()
	profiles := newTestProfiles(t)

	first := &Coach{UserID: "user-1", Name: "Ava", Seed: "seed one"}
	if err := profiles.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Updating the profile must not change the coach ID: it is half
	// of the memory identity, and a new ID would orphan the history.
	second := &Coach{UserID: "user-1", Name: "Ava v2", Seed: "seed two"}
	if err := profiles.Upsert(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Coach ID changed across upserts: %q -> %q", first.ID, second.ID)
	}

	got, err := profiles.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if got.Name != "Ava v2" || got.Seed != "seed two" {
		t.Errorf("Expected updated fields, got %+v", got)
	}
}

func TestProfileStore_GetByUser_NotFound(t *testing.T) {
	profiles := newTestProfiles(t)

	_, err := profiles.GetByUser(context.Background(), "nobody")
	if !errors.Is(err, core.ErrCoachNotFound) {
		t.Errorf("Expected ErrCoachNotFound, got %v", err)
	}
}

// Package coach is the conversational core: the per-user coach
// profile and the turn orchestration service that answers a user
// utterance through memory, admission control and the model loop.
package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coachly/coachd/core"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Coach is a user's persona profile. The seed is the scripted example
// conversation loaded into memory on first contact.
type Coach struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	Seed         string    `json:"seed"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileStore persists coach profiles, one per user.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore opens (or creates) the profile database at path.
func NewProfileStore(path string) (*ProfileStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	createSQL := `CREATE TABLE IF NOT EXISTS coaches (
		user_id      TEXT PRIMARY KEY,
		id           TEXT NOT NULL,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		instructions TEXT NOT NULL DEFAULT '',
		seed         TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ProfileStore{db: db}, nil
}

// Upsert creates or replaces the user's coach profile. The coach ID is
// assigned on first creation and stable across updates, since it is
// half of the memory identity.
func (s *ProfileStore) Upsert(ctx context.Context, c *Coach) error {
	existing, err := s.GetByUser(ctx, c.UserID)
	switch {
	case err == nil:
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	case errors.Is(err, core.ErrCoachNotFound):
		c.ID = uuid.New().String()
		c.CreatedAt = time.Now().UTC()
	default:
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO coaches (user_id, id, name, description, instructions, seed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			instructions = excluded.instructions,
			seed = excluded.seed`,
		c.UserID, c.ID, c.Name, c.Description, c.Instructions, c.Seed,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert coach: %w", err)
	}
	return nil
}

// GetByUser returns the user's coach profile.
func (s *ProfileStore) GetByUser(ctx context.Context, userID string) (*Coach, error) {
	var (
		c         Coach
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, id, name, description, instructions, seed, created_at
		 FROM coaches WHERE user_id = ?`,
		userID,
	).Scan(&c.UserID, &c.ID, &c.Name, &c.Description, &c.Instructions, &c.Seed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrCoachNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coach: %w", err)
	}

	c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	return &c, nil
}

// Close releases the database handle.
func (s *ProfileStore) Close() error {
	return s.db.Close()
}

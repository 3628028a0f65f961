// Package sqlite implements the chronological log store on
// modernc.org/sqlite (pure Go, no CGO). Entries live in a single
// score-ordered table; insertion order breaks score ties.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Store is a score-ordered, append-only ledger backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the
// schema. Use ":memory:" for an ephemeral store.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection keeps
	// PRAGMAs consistent and makes :memory: databases usable.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	createSQL := `CREATE TABLE IF NOT EXISTS chat_log (
		seq   INTEGER PRIMARY KEY AUTOINCREMENT,
		key   TEXT NOT NULL,
		score INTEGER NOT NULL,
		entry TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_log_key_score ON chat_log(key, score, seq)`
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle. The schema must already
// be initialized; used when several stores share one database file.
func NewWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	createSQL := `CREATE TABLE IF NOT EXISTS chat_log (
		seq   INTEGER PRIMARY KEY AUTOINCREMENT,
		key   TEXT NOT NULL,
		score INTEGER NOT NULL,
		entry TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_log_key_score ON chat_log(key, score, seq)`
	if _, err := db.Exec(createSQL); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

// Append adds one entry under key, ordered by score.
func (s *Store) Append(ctx context.Context, key, entry string, score int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_log (key, score, entry) VALUES (?, ?, ?)`,
		key, score, entry,
	)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// Range returns entries with min <= score <= max, ascending by score,
// ties broken by insertion order.
func (s *Store) Range(ctx context.Context, key string, min, max int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM chat_log WHERE key = ? AND score BETWEEN ? AND ?
		 ORDER BY score ASC, seq ASC`,
		key, min, max,
	)
	if err != nil {
		return nil, fmt.Errorf("range: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Exists reports whether any entry exists under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_log WHERE key = ? LIMIT 1`, key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// ErrNotFound is returned when a task ID does not exist.
var ErrNotFound = errors.New("task not found")

// Store persists tasks in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the task database at path.
// Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	createSQL := `CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		frequency        TEXT NOT NULL DEFAULT '',
		recurring        INTEGER NOT NULL DEFAULT 0,
		completed        INTEGER NOT NULL DEFAULT 0,
		specific_date    TEXT,
		specific_time    TEXT NOT NULL DEFAULT '',
		completion_count INTEGER NOT NULL DEFAULT 0,
		missed_count     INTEGER NOT NULL DEFAULT 0,
		completed_at     TEXT,
		created_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at)`
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Create inserts a task, assigning it a ULID.
func (s *Store) Create(ctx context.Context, t *Task) error {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, frequency, recurring,
			completed, specific_date, specific_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, string(t.Frequency), t.Recurring,
		t.Completed, formatDate(t.SpecificDate), t.SpecificTime,
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListByUser returns a user's tasks, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, frequency, recurring, completed,
			specific_date, specific_time, completion_count, missed_count,
			completed_at, created_at
		 FROM tasks WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetCompleted updates a task's completed flag. Completing records the
// completion time; un-completing clears it.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	var completedAt interface{}
	if completed {
		completedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = ?, completed_at = ? WHERE id = ?`,
		completed, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return affectedOne(res)
}

// UpdateTime changes a task's time of day.
func (s *Store) UpdateTime(ctx context.Context, id, specificTime string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET specific_time = ? WHERE id = ?`,
		specificTime, id,
	)
	if err != nil {
		return fmt.Errorf("update time: %w", err)
	}
	return affectedOne(res)
}

// ResetRecurring rolls recurring tasks over for a new period relative
// to now: completed daily tasks reset every call; weekly tasks reset
// on Mondays and monthly tasks on the 1st, with uncompleted ones
// counted as missed.
func (s *Store) ResetRecurring(ctx context.Context, now time.Time) error {
	if err := s.resetFrequency(ctx, FrequencyDaily, false); err != nil {
		return err
	}
	if now.Weekday() == time.Monday {
		if err := s.resetFrequency(ctx, FrequencyWeekly, true); err != nil {
			return err
		}
	}
	if now.Day() == 1 {
		if err := s.resetFrequency(ctx, FrequencyMonthly, true); err != nil {
			return err
		}
	}
	return nil
}

// resetFrequency resets completed tasks of one frequency, optionally
// marking uncompleted ones as missed first.
func (s *Store) resetFrequency(ctx context.Context, freq Frequency, countMissed bool) error {
	if countMissed {
		_, err := s.db.ExecContext(ctx,
			`UPDATE tasks SET missed_count = missed_count + 1
			 WHERE completed = 0 AND frequency = ?`,
			string(freq),
		)
		if err != nil {
			return fmt.Errorf("count missed %s: %w", freq, err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completion_count = completion_count + 1, completed = 0
		 WHERE completed = 1 AND frequency = ?`,
		string(freq),
	)
	if err != nil {
		return fmt.Errorf("reset %s: %w", freq, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*Task, error) {
	var (
		t            Task
		frequency    string
		specificDate sql.NullString
		completedAt  sql.NullString
		createdAt    string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &frequency,
		&t.Recurring, &t.Completed, &specificDate, &t.SpecificTime,
		&t.CompletionCount, &t.MissedCount, &completedAt, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	t.Frequency = Frequency(frequency)
	if specificDate.Valid && specificDate.String != "" {
		date, err := time.Parse("2006-01-02", specificDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse specific date: %w", err)
		}
		t.SpecificDate = &date
	}
	if completedAt.Valid && completedAt.String != "" {
		at, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed at: %w", err)
		}
		t.CompletedAt = &at
	}
	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	return &t, nil
}

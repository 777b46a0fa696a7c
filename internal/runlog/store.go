package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    job_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'running',
    detail TEXT NOT NULL DEFAULT '',
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_attempts_item ON attempts(item_id);
`

// Attempt is one recorded processing attempt for a dubbing item.
type Attempt struct {
	ID         int64
	ItemID     string
	Title      string
	JobID      string
	Status     string
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store keeps an append-only history of render attempts. Unlike the ledger,
// which holds only the latest state per item, the run log preserves every
// attempt so failures can be inspected after the fact.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run log database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init run log schema: %w", err)
	}

	return &Store{db: db, path: filepath.Clean(dbPath)}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records the start of a processing attempt and returns its id.
func (s *Store) Begin(ctx context.Context, itemID, title string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (item_id, title, started_at) VALUES (?, ?, ?)`,
		itemID, title, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("record attempt start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("attempt id: %w", err)
	}
	return id, nil
}

// Finish records the outcome of a previously started attempt.
func (s *Store) Finish(ctx context.Context, attemptID int64, jobID, status, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET job_id = ?, status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		jobID, status, detail, time.Now().UTC(), attemptID)
	if err != nil {
		return fmt.Errorf("record attempt outcome: %w", err)
	}
	return nil
}

// RecentAttempts returns up to limit attempts, newest first.
func (s *Store) RecentAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, title, job_id, status, detail, started_at, finished_at
		 FROM attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var finished sql.NullTime
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Title, &a.JobID, &a.Status, &a.Detail, &a.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if finished.Valid {
			a.FinishedAt = finished.Time
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// AttemptsForItem returns every attempt for one item, newest first.
func (s *Store) AttemptsForItem(ctx context.Context, itemID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, title, job_id, status, detail, started_at, finished_at
		 FROM attempts WHERE item_id = ? ORDER BY id DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var finished sql.NullTime
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Title, &a.JobID, &a.Status, &a.Detail, &a.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if finished.Valid {
			a.FinishedAt = finished.Time
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database.
// Use ":memory:" for an in-memory store, or a file path for persistence.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if necessary) the build history database at
// dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one build run.
func (s *SQLiteStore) Record(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, started_at, duration_ms, pages, outcome, error, reason) VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.StartedAt.UnixMilli(), b.Duration.Milliseconds(), b.Pages, b.Outcome, b.Error, b.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, most recent first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, duration_ms, pages, outcome, error, reason FROM builds ORDER BY started_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var startedMilli, durationMilli int64
		var errText sql.NullString

		if err := rows.Scan(&b.ID, &startedMilli, &durationMilli, &b.Pages, &b.Outcome, &errText, &b.Reason); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}

		b.StartedAt = time.UnixMilli(startedMilli)
		b.Duration = time.Duration(durationMilli) * time.Millisecond
		b.Error = errText.String
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return builds, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Package history keeps a local log of connection attempts and imports.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Kinds of logged activity
const (
	KindConnect = "connect"
	KindImport  = "import"
)

// Entry is one logged activity
type Entry struct {
	ID           int64
	Kind         string
	Target       string // connection key host:port/database
	Detail       string // tab title or imported file
	OccurredAt   time.Time
	Duration     time.Duration
	Success      bool
	ErrorMessage string
}

// Store manages activity log persistence
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the log database at path
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add appends an entry. A zero OccurredAt is stamped with the current time.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log
		(kind, target, detail, occurred_at, duration_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Kind,
		entry.Target,
		entry.Detail,
		entry.OccurredAt.UTC().Format(time.RFC3339Nano),
		entry.Duration.Milliseconds(),
		entry.Success,
		entry.ErrorMessage,
	)
	return err
}

// GetRecent retrieves the most recent entries, newest first
func (s *Store) GetRecent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, `
		SELECT id, kind, target, detail, occurred_at, duration_ms, success, error_message
		FROM activity_log
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		var occurredAt string

		err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.Target,
			&e.Detail,
			&occurredAt,
			&durationMs,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.OccurredAt, _ = time.Parse(time.RFC3339Nano, occurredAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

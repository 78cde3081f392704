// Package catalog records capture and refine runs in a local SQLite
// database so operators can audit what ran and when.
package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Run kinds recorded in the catalog.
const (
	KindStream   = "stream"
	KindSnapshot = "snapshot"
	KindRefine   = "refine"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded operation.
type Run struct {
	ID          string
	Kind        string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	TokenCount  int
	BookCount   int
	Error       string
}

// Store is a SQLite-backed run catalog. A nil Store is valid and
// degrades every method to a no-op, so callers can treat the catalog
// as best-effort.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path and
// ensures the schema exists. Use ":memory:" for an ephemeral catalog.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records the start of a run and returns it.
func (s *Store) Begin(kind string) (*Run, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Kind, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// Complete marks a run as completed with the captured counts.
func (s *Store) Complete(run *Run, tokens, books int) error {
	if s == nil || s.db == nil || run == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, token_count = ?, book_count = ? WHERE id = ?`,
		StatusCompleted, now, tokens, books, run.ID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	run.Status = StatusCompleted
	run.CompletedAt = &now
	run.TokenCount = tokens
	run.BookCount = books
	return nil
}

// Fail marks a run as failed with the causing error.
func (s *Store) Fail(run *Run, cause error) error {
	if s == nil || s.db == nil || run == nil {
		return nil
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		StatusFailed, now, msg, run.ID,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	run.Status = StatusFailed
	run.CompletedAt = &now
	run.Error = msg
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, kind, status, started_at, completed_at, token_count, book_count, error
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status, &r.StartedAt, &completed, &r.TokenCount, &r.BookCount, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

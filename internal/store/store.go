// Package store provides a SQLite-backed run history for answered questions.
// Every question processed through the pipeline is recorded with its outcome
// so operators can audit what was asked against which document and what came
// back.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Status classifies the outcome of one answered question.
type Status string

const (
	// StatusAnswered means the model produced an answer from document context.
	StatusAnswered Status = "answered"
	// StatusNotFound means the document contained no relevant content.
	StatusNotFound Status = "not_found"
	// StatusError means the question failed terminally.
	StatusError Status = "error"
)

// Record is one question/answer outcome.
type Record struct {
	// DocumentURL identifies the source document.
	DocumentURL string
	// Question is the question as submitted.
	Question string
	// Answer is the produced answer, the not-found message, or the error text.
	Answer string
	// Status classifies the outcome.
	Status Status
	// Duration is how long the question took end to end.
	Duration time.Duration
	// CreatedAt is when the record was persisted.
	CreatedAt time.Time
}

// HistoryStore persists and retrieves question run history.
// Implementations must be safe for concurrent use.
type HistoryStore interface {
	// Append persists a single record.
	Append(ctx context.Context, rec Record) error
	// Recent returns the most recent n records, newest-first. A non-empty
	// documentURL restricts results to that document.
	Recent(ctx context.Context, documentURL string, n int) ([]Record, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a HistoryStore backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the history database.
// It resolves to ~/.hackrx/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".hackrx")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    document_url TEXT    NOT NULL,
    question     TEXT    NOT NULL,
    answer       TEXT    NOT NULL,
    status       TEXT    NOT NULL CHECK(status IN ('answered','not_found','error')),
    duration_ms  INTEGER NOT NULL,
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_runs_document_created
    ON runs (document_url, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists a single record.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	const q = `INSERT INTO runs (document_url, question, answer, status, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, q,
		rec.DocumentURL, rec.Question, rec.Answer, string(rec.Status),
		rec.Duration.Milliseconds(), createdAt.Unix())
	if err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n records, newest-first. A non-empty
// documentURL restricts results to that document.
func (s *SQLiteStore) Recent(ctx context.Context, documentURL string, n int) ([]Record, error) {
	const q = `
SELECT document_url, question, answer, status, duration_ms, created_at
FROM   runs
WHERE  (? = '' OR document_url = ?)
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, documentURL, documentURL, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		var status string
		var durationMS, ts int64
		if err := rows.Scan(&r.DocumentURL, &r.Question, &r.Answer, &status, &durationMS, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		r.Status = Status(status)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = time.Unix(ts, 0)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return recs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

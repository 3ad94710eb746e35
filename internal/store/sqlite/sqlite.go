// Package sqlite provides a SQLite-backed store.RecordStore using the pure-Go
// modernc.org/sqlite driver. It is the zero-dependency default for single-node
// deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hireloop-ai/hireloop/internal/store"
)

// Compile-time interface check.
var _ store.RecordStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS interview_sessions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    role       TEXT NOT NULL,
    level      TEXT NOT NULL,
    transcript TEXT NOT NULL,
    feedback   TEXT NOT NULL,
    score      INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);`

// Store is a SQLite-backed record store. database/sql serialises access, so
// all methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and ensures
// the schema exists. Pass ":memory:" for an ephemeral in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path must not be empty")
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite store: create data dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save implements store.RecordStore.
func (s *Store) Save(ctx context.Context, record store.SessionRecord) error {
	const q = `
		INSERT INTO interview_sessions
		    (session_id, role, level, transcript, feedback, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		record.SessionID,
		record.Role,
		record.Level,
		string(record.Transcript),
		record.Feedback,
		record.Score,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite store: save record: %w", err)
	}
	return nil
}

// Ping verifies the database handle is still usable. Used by the readiness
// probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

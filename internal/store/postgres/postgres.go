// Package postgres provides a PostgreSQL-backed store.RecordStore using pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop-ai/hireloop/internal/store"
)

// Compile-time interface check.
var _ store.RecordStore = (*Store)(nil)

// schema creates the interview_sessions table. Records are insert-only, so
// no further migration machinery is needed.
const schema = `
	CREATE TABLE IF NOT EXISTS interview_sessions (
	    id         BIGSERIAL PRIMARY KEY,
	    session_id TEXT        NOT NULL,
	    role       TEXT        NOT NULL,
	    level      TEXT        NOT NULL,
	    transcript JSONB       NOT NULL,
	    feedback   TEXT        NOT NULL,
	    score      INTEGER     NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Store is a pgx-pool-backed record store. All methods are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the PostgreSQL database at dsn, verifies the connection,
// and ensures the interview_sessions table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: create schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Save implements store.RecordStore.
func (s *Store) Save(ctx context.Context, record store.SessionRecord) error {
	const q = `
		INSERT INTO interview_sessions
		    (session_id, role, level, transcript, feedback, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, q,
		record.SessionID,
		record.Role,
		record.Level,
		record.Transcript,
		record.Feedback,
		record.Score,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres store: save record: %w", err)
	}
	return nil
}

// Ping verifies database connectivity. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Package store defines the persistence boundary for finished interviews.
//
// Exactly one SessionRecord is written per interview, at review time. There
// is no query, update, or delete path: the write is fire-and-forget and its
// failure is logged rather than surfaced to the candidate, who has already
// received their feedback by the time persistence runs.
package store

import (
	"context"
	"time"
)

// SessionRecord is the durable result of one finished interview.
type SessionRecord struct {
	// SessionID identifies the live session the record came from.
	SessionID string

	// Role and Level are the interview context as configured by the client.
	Role  string
	Level string

	// Transcript is the full turn history, JSON-serialized.
	Transcript []byte

	// Feedback is the evaluator's full free-text assessment.
	Feedback string

	// Score is the extracted 0–100 overall score.
	Score int

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// RecordStore persists finished interview sessions.
//
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// Save writes record durably. Records are write-once; Save is never
	// called twice for the same session.
	Save(ctx context.Context, record SessionRecord) error

	// Close releases underlying resources.
	Close() error
}

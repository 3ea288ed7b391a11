// Package archive stores finished game records so players can review
// past blindfold sessions. Two implementations are provided: an
// in-memory store used when no database is configured, and a
// PostgreSQL-backed store for durable history.
package archive

import (
	"context"
	"time"
)

// Record is one finished (or abandoned) game.
type Record struct {
	ID          int64
	StartedAt   time.Time
	FinishedAt  time.Time
	PlayerColor string   // "white" or "black"
	EngineElo   int
	Moves       []string // SAN, in play order
	Result      string   // "checkmate", "draw", "resigned" or "" while unfinished
	Winner      string   // "white", "black" or "" for draws
	QuizAsked   int
	QuizCorrect int
}

// Store persists game records. Implementations are safe for concurrent use.
type Store interface {
	// Save writes rec and returns it with ID populated.
	Save(ctx context.Context, rec Record) (Record, error)

	// Get returns the record with the given ID.
	Get(ctx context.Context, id int64) (Record, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases any resources held by the store.
	Close()
}

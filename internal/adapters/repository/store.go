// Package repository holds the canonical round of every live round id.
package repository

import (
	"context"
	"time"

	"github.com/okian/scorecard/internal/domain/round"
)

// Record is a stored round with its bookkeeping.
type Record struct {
	ID        string
	Version   int64
	Round     round.Round
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateFunc computes the next round from the stored one.
type UpdateFunc func(round.Round) (round.Round, error)

// Store provides read/write access to rounds.
type Store interface {
	// Create stores a new round. Version defaults to 1 when zero.
	// Returns ErrExists if the id is taken.
	Create(ctx context.Context, rec Record) (Record, error)

	// Get returns the round stored under id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Update applies fn to the stored round under the store lock. When fn
	// fails its error is returned unchanged and the stored round is kept.
	Update(ctx context.Context, id string, fn UpdateFunc) (Record, error)

	// Delete removes and returns a round.
	Delete(ctx context.Context, id string) (Record, error)

	// List returns every round, oldest first.
	List(ctx context.Context) []Record

	// Count returns the number of stored rounds.
	Count(ctx context.Context) int
}

// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/scorecard/internal/domain/round"
)

// Snapshot is the persisted copy of a round. Round is stored verbatim.
type Snapshot struct {
	RoundID   string      `json:"round_id"`
	Version   int64       `json:"version"` // bumped on every accepted transition
	Round     round.Round `json:"round"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SnapshotJob is a unit of work for the snapshot workers.
type SnapshotJob struct {
	Snapshot Snapshot
	Delete   bool      // remove the stored snapshot instead of writing it
	Enqueued time.Time // when the job entered the queue
}

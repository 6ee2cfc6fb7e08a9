// Package snapshot stores copies of rounds so they survive a restart.
//
// Stores treat the round as an opaque value: it is written and read back
// verbatim, and validating it is left to the caller.
package snapshot

import (
	"context"

	"github.com/okian/scorecard/internal/domain/model"
)

// Snapshot is the stored unit.
type Snapshot = model.Snapshot

// Store is a key-value store of snapshots keyed by round id.
type Store interface {
	// Save writes s unless a newer or equal version was already written or
	// the round was deleted, in which case ErrStale is returned.
	Save(ctx context.Context, s Snapshot) error
	// Load returns the snapshot of a round or ErrNotFound.
	Load(ctx context.Context, roundID string) (Snapshot, error)
	// LoadAll returns every readable snapshot ordered by round id.
	LoadAll(ctx context.Context) ([]Snapshot, error)
	// Delete removes a snapshot. Later saves for the same round are rejected.
	Delete(ctx context.Context, roundID string) error
}

// guard tracks written versions and deleted rounds. Callers hold the store lock.
type guard struct {
	versions map[string]int64
	deleted  map[string]struct{}
}

func newGuard() guard {
	return guard{versions: make(map[string]int64), deleted: make(map[string]struct{})}
}

func (g guard) admit(s Snapshot) bool {
	if _, gone := g.deleted[s.RoundID]; gone {
		return false
	}
	v, ok := g.versions[s.RoundID]
	return !ok || s.Version > v
}

func (g guard) saved(s Snapshot) { g.versions[s.RoundID] = s.Version }

func (g guard) forget(id string) {
	delete(g.versions, id)
	g.deleted[id] = struct{}{}
}

package snapshot

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Snapshot
	guard guard
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Snapshot), guard: newGuard()}
}

func (m *MemoryStore) Save(_ context.Context, s Snapshot) error {
	if s.RoundID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.guard.admit(s) {
		return fmt.Errorf("%w: %s v%d", ErrStale, s.RoundID, s.Version)
	}
	s.Round = s.Round.Clone()
	m.items[s.RoundID] = s
	m.guard.saved(s)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, roundID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.items[roundID]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, roundID)
	}
	s.Round = s.Round.Clone()
	return s, nil
}

func (m *MemoryStore) LoadAll(_ context.Context) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.items))
	for _, s := range m.items {
		s.Round = s.Round.Clone()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundID < out[j].RoundID })
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, roundID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.items[roundID]
	delete(m.items, roundID)
	m.guard.forget(roundID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, roundID)
	}
	return nil
}

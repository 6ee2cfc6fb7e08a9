package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/scorecard/pkg/metrics"
)

// MemoryStore is a mutex guarded map of rounds. Rounds are copied on the way
// in and out so callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	rounds map[string]Record
	now    func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		rounds: make(map[string]Record),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateActiveRounds(0)
	return s
}

func (s *MemoryStore) Create(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[rec.ID]; ok {
		return Record{}, fmt.Errorf("%w: %s", ErrExists, rec.ID)
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.Round = rec.Round.Clone()
	s.rounds[rec.ID] = rec
	metrics.UpdateActiveRounds(len(s.rounds))
	return copyRecord(rec), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rounds[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyRecord(rec), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rounds[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := fn(rec.Round.Clone())
	if err != nil {
		return Record{}, err
	}
	rec.Round = next.Clone()
	rec.Version++
	rec.UpdatedAt = s.now()
	s.rounds[id] = rec
	return copyRecord(rec), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rounds[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.rounds, id)
	metrics.UpdateActiveRounds(len(s.rounds))
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context) []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.rounds))
	for _, rec := range s.rounds {
		out = append(out, copyRecord(rec))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rounds)
}

func copyRecord(rec Record) Record {
	rec.Round = rec.Round.Clone()
	return rec
}

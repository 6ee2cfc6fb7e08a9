package service

import (
	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/adapters/snapshot"
	"github.com/okian/scorecard/internal/domain/course"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of snapshot workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the snapshot queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithIdempotencySize sets how many score request ids are remembered.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithDefaultOrderMode sets the order mode used when a start request names none.
func WithDefaultOrderMode(mode round.OrderMode) Option {
	return func(s *Service) {
		if mode.Valid() {
			s.defaultMode = mode
		}
	}
}

// WithCatalog sets the course catalog used to resolve pars.
func WithCatalog(c *course.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSnapshotStore sets where snapshots are persisted and restored from.
func WithSnapshotStore(st snapshot.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.snapshots = st
		}
	}
}

// WithRoundStore replaces the in-memory round repository.
func WithRoundStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.rounds = st
		}
	}
}

// WithPublisher sets the receiver of round updates.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithIDGenerator overrides how round ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

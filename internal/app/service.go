// Package service holds the canonical round of every round id and applies
// round operations to it. It implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scorecard/internal/adapters/mq/queue"
	"github.com/okian/scorecard/internal/adapters/mq/worker"
	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/adapters/snapshot"
	"github.com/okian/scorecard/internal/domain/course"
	"github.com/okian/scorecard/internal/domain/dedupe"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/scoring"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// Publisher receives every accepted round transition.
type Publisher interface {
	Publish(ctx context.Context, roundID string, view types.RoundView)
	Discard(ctx context.Context, roundID string)
}

// StartRequest describes a new round. Pars take precedence over Course.
type StartRequest struct {
	Players    []string
	Pars       []int
	Course     string
	Difficulty string
	OrderMode  string
}

// Service implements the API dependencies for the scorecard system.
type Service struct {
	mu sync.RWMutex

	rounds    repository.Store
	deduper   dedupe.Deduper
	snapshots snapshot.Store
	jobs      *queue.InMemoryQueue
	pool      *worker.Pool
	catalog   *course.Catalog
	publisher Publisher

	workerCount     int
	queueSize       int
	idempotencySize int
	defaultMode     round.OrderMode
	newID           func() string

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     2,
		queueSize:       1024,
		idempotencySize: 10_000,
		defaultMode:     round.OrderLastFirst,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the missing components, restores stored rounds and starts the
// snapshot workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting scorecard service...")

	if s.rounds == nil {
		s.rounds = repository.NewMemoryStore()
	}
	if s.snapshots == nil {
		s.snapshots = snapshot.NewMemoryStore()
	}
	if s.catalog == nil {
		s.catalog = course.Default()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))

	if err := s.restore(ctx); err != nil {
		return fmt.Errorf("restore rounds: %w", err)
	}

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobs, s.snapshots)
	// Workers outlive ctx so Stop can drain pending snapshots.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scorecard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("idempotencySize", s.idempotencySize),
		logger.Int("rounds", s.rounds.Count(ctx)),
		logger.Int("courses", s.catalog.Len()),
	)
	return nil
}

// restore loads stored snapshots. Snapshots that fail validation are skipped.
func (s *Service) restore(ctx context.Context) error {
	snaps, err := s.snapshots.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		if err := snap.Round.Validate(); err != nil {
			metrics.RecordSnapshotRejected()
			s.logger.Warn(ctx, "skipping invalid snapshot",
				logger.String("round_id", snap.RoundID),
				logger.Error(err),
			)
			continue
		}
		_, err := s.rounds.Create(ctx, repository.Record{
			ID:        snap.RoundID,
			Version:   snap.Version,
			Round:     snap.Round,
			CreatedAt: snap.CreatedAt,
			UpdatedAt: snap.UpdatedAt,
		})
		if err != nil {
			s.logger.Warn(ctx, "skipping snapshot", logger.String("round_id", snap.RoundID), logger.Error(err))
			continue
		}
		metrics.RecordSnapshotRestored()
	}
	return nil
}

// Stop drains pending snapshots and shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping scorecard service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "snapshot workers did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "scorecard service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// StartRound creates a round and returns its first view.
func (s *Service) StartRound(ctx context.Context, req StartRequest) (types.RoundView, error) {
	const op = "start_round"
	if err := s.ready(); err != nil {
		return types.RoundView{}, err
	}
	start := time.Now()

	mode := s.defaultMode
	if req.OrderMode != "" {
		m, err := round.ParseOrderMode(req.OrderMode)
		if err != nil {
			return types.RoundView{}, s.reject(ctx, op, "", err)
		}
		mode = m
	}

	pars := req.Pars
	var opts []round.StartOption
	if len(pars) == 0 {
		if req.Course == "" {
			return types.RoundView{}, s.reject(ctx, op, "", &round.Error{
				Op: op, Kind: round.ErrValidation, Msg: "either pars or a course is required",
			})
		}
		name, resolved, err := s.catalog.Resolve(req.Course, req.Difficulty)
		if err != nil {
			return types.RoundView{}, s.reject(ctx, op, "", courseError(op, err))
		}
		d, _ := course.ParseDifficulty(req.Difficulty)
		pars = resolved
		opts = append(opts, round.WithCourse(name, string(d)))
	} else if req.Course != "" {
		opts = append(opts, round.WithCourse(req.Course, req.Difficulty))
	}

	r, err := round.Start(req.Players, pars, mode, opts...)
	if err != nil {
		return types.RoundView{}, s.reject(ctx, op, "", err)
	}

	rec, err := s.rounds.Create(ctx, repository.Record{ID: s.newID(), Round: r})
	if err != nil {
		return types.RoundView{}, s.reject(ctx, op, "", err)
	}
	metrics.RecordRoundStarted()
	metrics.RecordOperationLatency(op, sinceMs(start))
	return s.accept(ctx, op, rec), nil
}

// Round returns the current view of a round.
func (s *Service) Round(ctx context.Context, id string) (types.RoundView, error) {
	if err := s.ready(); err != nil {
		return types.RoundView{}, err
	}
	rec, err := s.rounds.Get(ctx, id)
	if err != nil {
		return types.RoundView{}, notFound("get_round", err)
	}
	return view(rec), nil
}

// ListRounds summarizes every held round, oldest first.
func (s *Service) ListRounds(ctx context.Context) ([]types.RoundSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	recs := s.rounds.List(ctx)
	out := make([]types.RoundSummary, len(recs))
	for i, rec := range recs {
		out[i] = types.RoundSummary{
			ID:          rec.ID,
			CourseName:  rec.Round.CourseName,
			Players:     len(rec.Round.Players),
			CurrentHole: rec.Round.CurrentHole().Number,
			Ended:       rec.Round.Ended,
			UpdatedAt:   rec.UpdatedAt,
		}
	}
	return out, nil
}

// RecordScore records strokes for the player whose turn it is. A non-empty
// requestID makes retries safe: a repeated id returns the current view with
// Duplicate set instead of recording again. The id is checked and recorded
// under the store lock together with the score, so a retry racing the first
// submission waits for its outcome.
func (s *Service) RecordScore(ctx context.Context, id string, strokes int, requestID string) (types.RoundView, error) {
	const op = "record_score"

	var key string
	if requestID != "" {
		key = dedupe.Key(id, requestID)
	}
	v, err := s.mutate(ctx, op, id, func(r round.Round) (round.Round, error) {
		if key != "" && s.deduper.SeenAndRecord(ctx, key) {
			return round.Round{}, errReplay
		}
		next, err := round.RecordScore(r, strokes)
		if err != nil && key != "" {
			s.deduper.Unrecord(ctx, key)
		}
		return next, err
	})
	if errors.Is(err, errReplay) {
		metrics.RecordIdempotentReplay()
		v, err = s.Round(ctx, id)
		if err != nil {
			return types.RoundView{}, err
		}
		s.logger.Debug(ctx, "replayed score submission",
			logger.String("round_id", id),
			logger.String("request_id", requestID),
		)
		v.Duplicate = true
		return v, nil
	}
	if err != nil {
		return types.RoundView{}, err
	}
	metrics.RecordScoreRecorded()
	return v, nil
}

// EditScore replaces a recorded score.
func (s *Service) EditScore(ctx context.Context, id string, playerID, holeIndex, strokes int) (types.RoundView, error) {
	v, err := s.mutate(ctx, "edit_score", id, func(r round.Round) (round.Round, error) {
		return round.EditScore(r, playerID, holeIndex, strokes)
	})
	if err == nil {
		metrics.RecordScoreEdited()
	}
	return v, err
}

// BeginEdit flags a recorded score as being edited.
func (s *Service) BeginEdit(ctx context.Context, id string, playerID, holeIndex int) (types.RoundView, error) {
	return s.mutate(ctx, "begin_edit", id, func(r round.Round) (round.Round, error) {
		return round.BeginEdit(r, playerID, holeIndex)
	})
}

// CancelEdit clears every edit flag of the round.
func (s *Service) CancelEdit(ctx context.Context, id string) (types.RoundView, error) {
	return s.mutate(ctx, "cancel_edit", id, func(r round.Round) (round.Round, error) {
		return round.CancelEdit(r), nil
	})
}

// RemovePlayer drops a player from the round.
func (s *Service) RemovePlayer(ctx context.Context, id string, playerID int) (types.RoundView, error) {
	v, err := s.mutate(ctx, "remove_player", id, func(r round.Round) (round.Round, error) {
		return round.RemovePlayer(r, playerID)
	})
	if err == nil {
		metrics.RecordPlayerRemoved()
	}
	return v, err
}

// Advance completes the current hole when nobody is left to play it.
func (s *Service) Advance(ctx context.Context, id string) (types.RoundView, error) {
	return s.mutate(ctx, "advance", id, round.AdvanceWithoutScore)
}

// Result ranks the players of an ended round.
func (s *Service) Result(ctx context.Context, id string) (types.ResultView, error) {
	const op = "compute_result"
	if err := s.ready(); err != nil {
		return types.ResultView{}, err
	}
	rec, err := s.rounds.Get(ctx, id)
	if err != nil {
		return types.ResultView{}, s.reject(ctx, op, id, notFound(op, err))
	}
	res, err := round.ComputeResult(rec.Round)
	if err != nil {
		return types.ResultView{}, s.reject(ctx, op, id, err)
	}
	return scoring.Result(id, res), nil
}

// DiscardRound drops a round, its snapshot and its subscribers.
func (s *Service) DiscardRound(ctx context.Context, id string) error {
	const op = "discard_round"
	if err := s.ready(); err != nil {
		return err
	}
	rec, err := s.rounds.Delete(ctx, id)
	if err != nil {
		return s.reject(ctx, op, id, notFound(op, err))
	}
	s.persist(ctx, rec, true)
	if s.publisher != nil {
		s.publisher.Discard(ctx, id)
	}
	metrics.RecordRoundDiscarded()
	s.logger.Debug(ctx, "round discarded", logger.String("round_id", id))
	return nil
}

// Courses lists the course catalog.
func (s *Service) Courses(ctx context.Context) ([]course.Course, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Courses(), nil
}

// mutate applies fn to the stored round and, on success, persists and
// publishes the new view.
func (s *Service) mutate(ctx context.Context, op, id string, fn repository.UpdateFunc) (types.RoundView, error) {
	if err := s.ready(); err != nil {
		return types.RoundView{}, err
	}
	start := time.Now()

	var wasEnded bool
	rec, err := s.rounds.Update(ctx, id, func(r round.Round) (round.Round, error) {
		wasEnded = r.Ended
		return fn(r)
	})
	if errors.Is(err, errReplay) {
		return types.RoundView{}, err
	}
	if err != nil {
		return types.RoundView{}, s.reject(ctx, op, id, notFound(op, err))
	}
	if rec.Round.Ended && !wasEnded {
		metrics.RecordRoundEnded()
		s.logger.Info(ctx, "round ended", logger.String("round_id", id), logger.Int("players", len(rec.Round.Players)))
	}
	metrics.RecordOperationLatency(op, sinceMs(start))
	return s.accept(ctx, op, rec), nil
}

// accept persists and publishes an accepted transition.
func (s *Service) accept(ctx context.Context, op string, rec repository.Record) types.RoundView {
	v := view(rec)
	s.persist(ctx, rec, false)
	if s.publisher != nil {
		s.publisher.Publish(ctx, rec.ID, v)
	}
	s.logger.Debug(ctx, "round updated",
		logger.String("op", op),
		logger.String("round_id", rec.ID),
		logger.Int64("version", rec.Version),
		logger.Int("hole", rec.Round.CurrentHole().Number),
		logger.Bool("ended", rec.Round.Ended),
	)
	return v
}

// persist queues a snapshot job. Failures are logged and never reach the caller.
func (s *Service) persist(ctx context.Context, rec repository.Record, remove bool) {
	job := model.SnapshotJob{
		Snapshot: model.Snapshot{
			RoundID:   rec.ID,
			Version:   rec.Version,
			Round:     rec.Round,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		},
		Delete:   remove,
		Enqueued: time.Now(),
	}
	if err := s.jobs.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		s.logger.Warn(ctx, "snapshot not queued",
			logger.String("round_id", rec.ID),
			logger.Int64("version", rec.Version),
			logger.Error(err),
		)
	}
}

func (s *Service) reject(ctx context.Context, op, id string, err error) error {
	kind := round.KindName(err)
	metrics.RecordOperationError(op, kind)
	s.logger.Info(ctx, "operation rejected",
		logger.String("op", op),
		logger.String("round_id", id),
		logger.String("kind", kind),
		logger.Error(err),
	)
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"idempotencySize": s.idempotencySize,
		"defaultOrder":    string(s.defaultMode),
	}
	if s.started {
		stats["rounds"] = s.rounds.Count(ctx)
		stats["queueLength"] = s.jobs.Len(ctx)
		stats["idempotencyKeys"] = s.deduper.Size()
		stats["courses"] = s.catalog.Len()
		if sub, ok := s.publisher.(interface{ Subscribers() int }); ok {
			stats["subscribers"] = sub.Subscribers()
		}
	}
	return stats
}

func view(rec repository.Record) types.RoundView {
	v := types.RoundView{
		ID:          rec.ID,
		Version:     rec.Version,
		Round:       rec.Round,
		CurrentHole: rec.Round.CurrentHole(),
		Standings:   scoring.Standings(rec.Round.Players),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if p, ok := rec.Round.CurrentPlayer(); ok {
		v.CurrentPlayer = &p
	}
	return v
}

// notFound turns a missing round into an engine not-found error.
func notFound(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &round.Error{Op: op, Kind: round.ErrNotFound, Msg: err.Error()}
	}
	return err
}

func courseError(op string, err error) error {
	switch {
	case errors.Is(err, course.ErrCourseNotFound):
		return &round.Error{Op: op, Kind: round.ErrNotFound, Msg: err.Error()}
	case errors.Is(err, course.ErrInvalidCourse):
		return &round.Error{Op: op, Kind: round.ErrValidation, Msg: err.Error()}
	}
	return err
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

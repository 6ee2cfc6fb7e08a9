// Package worker runs the background writers that persist round snapshots.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/scorecard/internal/adapters/mq/queue"
	"github.com/okian/scorecard/internal/adapters/snapshot"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Writer persists snapshots.
type Writer interface {
	Save(ctx context.Context, s snapshot.Snapshot) error
	Delete(ctx context.Context, roundID string) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes snapshot jobs.
type Worker interface {
	// Run starts the worker loop until the queue is drained or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for an in-process queue.
type InMemoryWorker struct {
	queue  Queue
	writer Writer
	name   string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, w Writer, opts ...Option) *InMemoryWorker {
	wk := &InMemoryWorker{
		queue:    q,
		writer:   w,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(wk)
	}
	if wk.name != "worker" {
		wk.logger = wk.logger.Named(wk.name)
	}
	return wk
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "snapshot job failed",
					logger.String("round_id", j.Snapshot.RoundID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: jobs are passed by value through the channel
	op := "save"
	if j.Delete {
		op = "delete"
	}

	start := time.Now()
	var err error
	if j.Delete {
		err = w.writer.Delete(ctx, j.Snapshot.RoundID)
	} else {
		err = w.writer.Save(ctx, j.Snapshot)
	}

	switch {
	case err == nil:
		metrics.RecordSnapshotWrite(op, float64(time.Since(start).Microseconds())/1000)
		return nil
	case errors.Is(err, snapshot.ErrStale), errors.Is(err, snapshot.ErrNotFound):
		w.logger.Debug(ctx, "snapshot job skipped",
			logger.String("round_id", j.Snapshot.RoundID),
			logger.String("op", op),
			logger.Int64("version", j.Snapshot.Version),
			logger.String("reason", err.Error()),
		)
		return nil
	default:
		metrics.RecordSnapshotFailure(op)
		metrics.RecordWorkerError()
		return fmt.Errorf("%s snapshot %s: %w", op, j.Snapshot.RoundID, err)
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, w Writer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, w, WithName("worker-"+strconv.Itoa(i)))
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
	p.logger.Info(ctx, "snapshot workers started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still busy when ctx expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker did not drain in time", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}
	metrics.UpdateWorkerCount(0)

	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}

package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/scorecard/pkg/logger"
)

// Run plays cfg.Rounds rounds, cfg.Workers at a time, and returns the
// aggregated statistics. It fails with ErrViolations when any returned round
// was inconsistent.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	var stats Stats
	if err := cfg.validate(); err != nil {
		return stats, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	log := logger.Get().Named("simulator")
	start := time.Now()

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	courses, err := c.courses(ctx)
	if err != nil {
		log.Warn(ctx, "course catalog unavailable; using random pars", logger.Error(err))
	}

	jobs := make(chan int, cfg.Workers*2)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				g := &game{client: c, cfg: cfg, rng: rand.New(rand.NewPCG(cfg.Seed, uint64(n)))}
				g.play(ctx, courses)
				for _, v := range g.stats.violations {
					log.Error(ctx, "consistency violation", logger.String("detail", v))
				}
				mu.Lock()
				stats.add(g.stats)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for n := 0; n < cfg.Rounds; n++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- n:
			}
		}
	}()
	wg.Wait()

	stats.Duration = time.Since(start)
	log.Info(ctx, "simulation finished",
		logger.Int("roundsStarted", stats.RoundsStarted),
		logger.Int("roundsCompleted", stats.RoundsCompleted),
		logger.Int("roundsAbandoned", stats.RoundsAbandoned),
		logger.Int("scores", stats.Scores),
		logger.Int("edits", stats.Edits),
		logger.Int("removals", stats.Removals),
		logger.Int("replays", stats.Replays),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration),
	)

	if len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, len(stats.Violations))
	}
	return stats, ctx.Err()
}

// Package simulator plays random rounds against a running scorecard server
// and checks every returned round for consistency.
package simulator

import (
	"errors"
	"time"

	"github.com/okian/scorecard/internal/domain/types"
)

// Sentinel errors returned by Run.
var (
	ErrUnhealthy  = errors.New("service is not healthy")
	ErrViolations = errors.New("consistency violations found")
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Rounds     int           // Number of rounds to play
	Workers    int           // Number of rounds played concurrently
	MinPlayers int           // Fewest players per round
	MaxPlayers int           // Most players per round
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed of the random source, 0 picks one
	EditRate   float64       // Chance of editing a recorded score before a turn
	RemoveRate float64       // Chance of removing a player before a turn
	RetryRate  float64       // Chance of resending a score submission
	Keep       bool          // Keep finished rounds instead of discarding them
}

// DefaultConfig returns the settings used by the CLI when no flag is given.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:9080",
		Rounds:     50,
		Workers:    8,
		MinPlayers: 1,
		MaxPlayers: 6,
		Timeout:    10 * time.Second,
		EditRate:   0.05,
		RemoveRate: 0.01,
		RetryRate:  0.1,
	}
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base url must not be empty")
	case c.Rounds <= 0:
		return errors.New("rounds must be positive")
	case c.Workers <= 0:
		return errors.New("workers must be positive")
	case c.MinPlayers <= 0 || c.MaxPlayers < c.MinPlayers:
		return errors.New("player range is invalid")
	}
	return nil
}

// Stats holds the outcome of a simulation run.
type Stats struct {
	RoundsStarted   int
	RoundsCompleted int
	RoundsAbandoned int
	Scores          int
	Edits           int
	Removals        int
	Replays         int
	Violations      []string
	Duration        time.Duration
}

// roundStats is the per round share of Stats.
type roundStats struct {
	completed  bool
	abandoned  bool
	scores     int
	edits      int
	removals   int
	replays    int
	violations []string
}

func (s *Stats) add(r roundStats) {
	s.RoundsStarted++
	if r.completed {
		s.RoundsCompleted++
	}
	if r.abandoned {
		s.RoundsAbandoned++
	}
	s.Scores += r.scores
	s.Edits += r.edits
	s.Removals += r.removals
	s.Replays += r.replays
	s.Violations = append(s.Violations, r.violations...)
}

type roundView = types.RoundView

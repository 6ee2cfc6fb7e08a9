package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/okian/scorecard/internal/simulator"
	"github.com/okian/scorecard/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	def := simulator.DefaultConfig()
	return &cli.App{
		Name:  "simulate",
		Usage: "play random rounds against a scorecard server and check every response",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: def.BaseURL, Usage: "base URL of the service", EnvVars: []string{"SCORECARD_URL"}},
			&cli.IntFlag{Name: "rounds", Value: def.Rounds, Usage: "number of rounds to play"},
			&cli.IntFlag{Name: "workers", Value: def.Workers, Usage: "rounds played concurrently"},
			&cli.IntFlag{Name: "min-players", Value: def.MinPlayers, Usage: "fewest players per round"},
			&cli.IntFlag{Name: "max-players", Value: def.MaxPlayers, Usage: "most players per round"},
			&cli.DurationFlag{Name: "timeout", Value: def.Timeout, Usage: "HTTP request timeout"},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed, 0 picks one"},
			&cli.Float64Flag{Name: "edit-rate", Value: def.EditRate, Usage: "chance of editing a recorded score before a turn"},
			&cli.Float64Flag{Name: "remove-rate", Value: def.RemoveRate, Usage: "chance of removing a player before a turn"},
			&cli.Float64Flag{Name: "retry-rate", Value: def.RetryRate, Usage: "chance of resending a score submission"},
			&cli.BoolFlag{Name: "keep", Usage: "keep finished rounds on the server"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "json or text"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if err := logger.Init(logger.WithFormat(c.String("log-format"))); err != nil {
		return err
	}
	if err := logger.SetLevelString(c.String("log-level")); err != nil {
		return err
	}

	cfg := simulator.Config{
		BaseURL:    c.String("url"),
		Rounds:     c.Int("rounds"),
		Workers:    c.Int("workers"),
		MinPlayers: c.Int("min-players"),
		MaxPlayers: c.Int("max-players"),
		Timeout:    c.Duration("timeout"),
		Seed:       c.Uint64("seed"),
		EditRate:   c.Float64("edit-rate"),
		RemoveRate: c.Float64("remove-rate"),
		RetryRate:  c.Float64("retry-rate"),
		Keep:       c.Bool("keep"),
	}
	stats, err := simulator.Run(c.Context, cfg)

	fmt.Fprintf(c.App.Writer, "rounds: %d started, %d completed, %d abandoned\n",
		stats.RoundsStarted, stats.RoundsCompleted, stats.RoundsAbandoned)
	fmt.Fprintf(c.App.Writer, "actions: %d scores, %d edits, %d removals, %d replays in %s\n",
		stats.Scores, stats.Edits, stats.Removals, stats.Replays, stats.Duration)
	for _, v := range stats.Violations {
		fmt.Fprintln(c.App.Writer, "violation:", v)
	}
	return err
}

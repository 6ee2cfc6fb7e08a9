// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config filled with defaults.
// - Load layers a YAML file and SCORECARD_ environment variables on top.
// - Errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/scorecard/internal/domain/round"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CourseFile points to a YAML course catalog. The built-in catalog is used when empty.
	CourseFile string `koanf:"course_file"`

	// SnapshotDir enables file snapshots of live rounds. Snapshots stay in memory when empty.
	SnapshotDir string `koanf:"snapshot_dir"`

	// SnapshotQueueSize bounds the snapshot job queue.
	SnapshotQueueSize int `koanf:"snapshot_queue_size"`

	// SnapshotWorkers sets the number of snapshot writers.
	SnapshotWorkers int `koanf:"snapshot_workers"`

	// IdempotencySize caps the remembered score request ids.
	IdempotencySize int `koanf:"idempotency_size"`

	// DefaultOrderMode is used when a new round does not name one.
	DefaultOrderMode string `koanf:"default_order_mode"`

	// WSSendBuffer is the per-subscriber websocket buffer, in messages.
	WSSendBuffer int `koanf:"ws_send_buffer"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "json",
		Addr:              ":9080",
		SnapshotQueueSize: 1024,
		SnapshotWorkers:   2,
		IdempotencySize:   10_000,
		DefaultOrderMode:  string(round.OrderLastFirst),
		WSSendBuffer:      16,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.SnapshotQueueSize <= 0 {
		return fmt.Errorf("%w: snapshot_queue_size must be positive", ErrInvalidConfig)
	}
	if c.SnapshotWorkers <= 0 {
		return fmt.Errorf("%w: snapshot_workers must be positive", ErrInvalidConfig)
	}
	if c.IdempotencySize <= 0 {
		return fmt.Errorf("%w: idempotency_size must be positive", ErrInvalidConfig)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("%w: ws_send_buffer must be positive", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if _, err := round.ParseOrderMode(c.DefaultOrderMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// OrderMode returns the parsed default order mode. Call Validate first.
func (c *Config) OrderMode() round.OrderMode {
	m, _ := round.ParseOrderMode(c.DefaultOrderMode)
	return m
}

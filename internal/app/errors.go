package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned by round operations before Start.
	ErrNotStarted = errors.New("service not started")

	// errReplay aborts a store update for a request id that was already applied.
	errReplay = errors.New("request already applied")
)

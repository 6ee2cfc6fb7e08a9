package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound = errors.New("round not found")
	ErrExists   = errors.New("round already exists")
)

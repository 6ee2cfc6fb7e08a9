package snapshot

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrNotFound  = errors.New("snapshot not found")
	ErrStale     = errors.New("snapshot is older than the stored one")
	ErrInvalidID = errors.New("invalid round id")
)

package repository

import "errors"

var (
	// ErrNotFound indicates the referenced entry id does not exist, for
	// example after a concurrent delete left stale state in a client.
	ErrNotFound = errors.New("time entry not found")
	// ErrConflict indicates the row changed since it was read; the write
	// was not applied.
	ErrConflict = errors.New("time entry modified concurrently")
)

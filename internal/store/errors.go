package store

import "errors"

// Sentinel errors returned by store implementations.
// Services translate these into coded domain errors.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrConflict reports a write that lost a race with a concurrent writer.
	ErrConflict = errors.New("concurrent modification")
)

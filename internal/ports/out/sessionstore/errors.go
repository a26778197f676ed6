package sessionstore

import "errors"

var (
	// ErrNotFound indicates no session state exists for the user.
	ErrNotFound = errors.New("session state not found")

	// ErrVersionConflict indicates the stored state changed since it was
	// loaded; the caller should reload and retry.
	ErrVersionConflict = errors.New("session state version conflict")
)

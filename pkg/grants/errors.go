package grants

import "errors"

var (
	// ErrInvalidInput is returned by Load for duplicate ids or items
	// without an access class.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a mutation references an id not in the list.
	ErrNotFound = errors.New("permission not found")
	// ErrStaleReference marks a UI request against a list generation or item
	// that no longer exists.
	ErrStaleReference = errors.New("stale reference")
)

package pile

import "errors"

var (
	// ErrInvalidConfiguration reports empty catalogs, a non-positive viewport or unusable tuning.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidGeometry reports a body with a zero, negative or non-finite size.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrStopped is returned by a Handle after Stop.
	ErrStopped = errors.New("world stopped")
)

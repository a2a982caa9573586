package services

import "errors"

// Error kinds for the reservation workflow. Callers classify with errors.Is;
// wrapped messages carry the detail.
var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing table, reservation or restaurant.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a table that is not available to the caller.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition marks an illegal reservation status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnavailable marks a backing-store failure; the operation rolled back
	// and may be retried.
	ErrUnavailable = errors.New("storage unavailable")
)

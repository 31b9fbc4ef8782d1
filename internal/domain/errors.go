package domain

import "errors"

var (
	// ErrNotFound signals a missing workflow/enrollment/trigger event.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized signals a cross-tenant access attempt. Lookups fail
	// closed: no data belonging to another org is ever returned or mutated.
	ErrUnauthorized = errors.New("organization mismatch")

	// ErrInvalidTransition signals an enrollment status change the lifecycle
	// state machine forbids.
	ErrInvalidTransition = errors.New("invalid enrollment status transition")
)

package jobs

import "errors"

var (
	// ErrNotFound indicates the job does not exist or is outside the
	// actor's organization scope.
	ErrNotFound = errors.New("job not found")

	// ErrAccessDenied indicates the authorization gate rejected the actor.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

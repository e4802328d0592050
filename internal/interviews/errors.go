package interviews

import "errors"

var (
	// ErrNotFound indicates the interview is absent or outside the
	// actor's organization scope.
	ErrNotFound = errors.New("interview not found")

	// ErrAccessDenied indicates the authorization gate rejected the actor.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

package applications

import "errors"

var (
	// ErrNotFound indicates the application is absent or outside the
	// actor's organization scope. The two cases are deliberately
	// conflated so cross-tenant existence is not leaked.
	ErrNotFound = errors.New("application not found")

	// ErrAccessDenied indicates the authorization gate rejected the actor.
	ErrAccessDenied = errors.New("access denied")

	// ErrDuplicateApplication indicates the applicant already applied to
	// the job.
	ErrDuplicateApplication = errors.New("application already exists")

	// ErrInvalidTransition indicates the requested status jump is not in
	// the pipeline's adjacency table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusConflict indicates the application's status changed under
	// a concurrent request; the caller may re-read and retry.
	ErrStatusConflict = errors.New("status changed concurrently")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

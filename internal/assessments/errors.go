package assessments

import "errors"

var (
	ErrNotFound          = errors.New("assessments: not found")
	ErrAccessDenied      = errors.New("assessments: access denied")
	ErrInvalidInput      = errors.New("assessments: invalid input")
	ErrNotEligible       = errors.New("assessments: application not eligible for assignment")
	ErrAlreadyAssigned   = errors.New("assessments: test already assigned to application")
	ErrNotAvailable      = errors.New("assessments: assignment not available")
	ErrAttemptInProgress = errors.New("assessments: an attempt is already in progress")
	ErrAttemptClosed     = errors.New("assessments: attempt is no longer in progress")
)

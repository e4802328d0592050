package interviews

import (
	"context"
	"time"
)

// Repo defines persistence operations for interviews.
type Repo interface {
	Create(ctx context.Context, interview Interview) error
	GetByID(ctx context.Context, interviewID string) (Interview, error)
	ListByApplication(ctx context.Context, applicationID string) ([]Interview, error)

	// Reschedule updates timing, resets status to scheduled and replaces
	// the notes text (callers pass the already-concatenated value).
	Reschedule(ctx context.Context, interviewID string, scheduledAt time.Time, durationMinutes int, notes string, updatedAt time.Time) error

	UpdateStatus(ctx context.Context, interviewID string, status Status, notes string, updatedAt time.Time) error
}

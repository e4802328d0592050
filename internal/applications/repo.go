package applications

import "context"

// Repo defines persistence operations for applications and their status
// history.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, applicationID string) (Application, error)
	ExistsByJobAndApplicant(ctx context.Context, jobID, applicantID string) (bool, error)
	ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error)

	// Transition atomically moves the application from entry.OldStatus to
	// entry.NewStatus and appends the history entry. It returns
	// ErrStatusConflict when the stored status no longer matches
	// entry.OldStatus.
	Transition(ctx context.Context, entry StatusHistoryEntry) error

	// AppendHistory records an audit-only entry without touching the
	// application row (used for no-op transitions such as reschedules).
	AppendHistory(ctx context.Context, entry StatusHistoryEntry) error

	History(ctx context.Context, applicationID string) ([]StatusHistoryEntry, error)
}

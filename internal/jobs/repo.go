package jobs

import "context"

// Repo defines persistence operations for jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Job, error)
	SetRecruiters(ctx context.Context, jobID string, recruiterIDs []string) error
	SetActive(ctx context.Context, jobID string, active bool) error
}

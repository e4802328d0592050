package jobs

import "time"

// Job is an organization's open position. AssignedRecruiters gates who may
// act on applications and interviews under the job.
type Job struct {
	ID                 string
	OrgID              string
	CreatedBy          string
	Title              string
	Description        string
	Skills             []string
	AssignedRecruiters []string
	IsActive           bool
	CreatedAt          time.Time
}

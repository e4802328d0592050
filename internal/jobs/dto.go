package jobs

import "time"

type jobResponse struct {
	ID                 string    `json:"id"`
	OrgID              string    `json:"orgId"`
	CreatedBy          string    `json:"createdBy,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Skills             []string  `json:"skills,omitempty"`
	AssignedRecruiters []string  `json:"assignedRecruiters,omitempty"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toResponse(job Job) jobResponse {
	return jobResponse{
		ID:                 job.ID,
		OrgID:              job.OrgID,
		CreatedBy:          job.CreatedBy,
		Title:              job.Title,
		Description:        job.Description,
		Skills:             job.Skills,
		AssignedRecruiters: job.AssignedRecruiters,
		IsActive:           job.IsActive,
		CreatedAt:          job.CreatedAt,
	}
}

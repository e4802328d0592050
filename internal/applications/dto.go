package applications

import "time"

type applicationResponse struct {
	ID              string         `json:"id"`
	JobID           string         `json:"jobId"`
	ApplicantID     string         `json:"applicantId"`
	ApplicationData map[string]any `json:"applicationData,omitempty"`
	CoverLetter     string         `json:"coverLetter,omitempty"`
	ResumeScore     *float64       `json:"resumeScore,omitempty"`
	AIFeedback      map[string]any `json:"aiFeedback,omitempty"`
	Status          string         `json:"status"`
	AppliedAt       time.Time      `json:"appliedAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func toResponse(app Application) applicationResponse {
	return applicationResponse{
		ID:              app.ID,
		JobID:           app.JobID,
		ApplicantID:     app.ApplicantID,
		ApplicationData: app.ApplicationData,
		CoverLetter:     app.CoverLetter,
		ResumeScore:     app.ResumeScore,
		AIFeedback:      app.AIFeedback,
		Status:          string(app.Status),
		AppliedAt:       app.AppliedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

type historyResponse struct {
	ID               string    `json:"id"`
	OldStatus        string    `json:"oldStatus"`
	NewStatus        string    `json:"newStatus"`
	PerformedBy      string    `json:"performedBy,omitempty"`
	PerformedByName  string    `json:"performedByName,omitempty"`
	PerformedByEmail string    `json:"performedByEmail,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	PerformedAt      time.Time `json:"performedAt"`
}

func toHistoryResponse(view HistoryView) historyResponse {
	return historyResponse{
		ID:               view.ID,
		OldStatus:        string(view.OldStatus),
		NewStatus:        string(view.NewStatus),
		PerformedBy:      view.PerformedBy,
		PerformedByName:  view.PerformedByName,
		PerformedByEmail: view.PerformedByEmail,
		Notes:            view.Notes,
		PerformedAt:      view.PerformedAt,
	}
}

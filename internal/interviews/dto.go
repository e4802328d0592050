package interviews

import "time"

type interviewResponse struct {
	ID              string    `json:"id"`
	JobID           string    `json:"jobId"`
	ApplicationID   string    `json:"applicationId"`
	ApplicantID     string    `json:"applicantId"`
	ScheduledBy     string    `json:"scheduledBy,omitempty"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	Interviewers    []string  `json:"interviewers,omitempty"`
	InterviewType   string    `json:"interviewType"`
	MeetingPlatform string    `json:"meetingPlatform,omitempty"`
	MeetingLink     string    `json:"meetingLink,omitempty"`
	MeetingLocation string    `json:"meetingLocation,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toResponse(interview Interview) interviewResponse {
	return interviewResponse{
		ID:              interview.ID,
		JobID:           interview.JobID,
		ApplicationID:   interview.ApplicationID,
		ApplicantID:     interview.ApplicantID,
		ScheduledBy:     interview.ScheduledBy,
		ScheduledAt:     interview.ScheduledAt,
		Interviewers:    interview.Interviewers,
		InterviewType:   interview.InterviewType,
		MeetingPlatform: interview.MeetingPlatform,
		MeetingLink:     interview.MeetingLink,
		MeetingLocation: interview.MeetingLocation,
		DurationMinutes: interview.DurationMinutes,
		Status:          string(interview.Status),
		Notes:           interview.Notes,
		CreatedAt:       interview.CreatedAt,
		UpdatedAt:       interview.UpdatedAt,
	}
}

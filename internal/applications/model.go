package applications

import "time"

// Application is one applicant's candidacy for one job. At most one exists
// per (job, applicant) pair; rows are never deleted.
type Application struct {
	ID              string
	JobID           string
	ApplicantID     string
	ApplicationData map[string]any
	CoverLetter     string
	ResumeScore     *float64
	AIFeedback      map[string]any
	Status          Status
	AppliedAt       time.Time
	UpdatedAt       time.Time
}

// StatusHistoryEntry is an immutable audit record of one status change.
// PerformedBy is empty for system-initiated changes.
type StatusHistoryEntry struct {
	ID            string
	ApplicationID string
	OldStatus     Status
	NewStatus     Status
	PerformedBy   string
	Notes         string
	PerformedAt   time.Time
}

// HistoryView is a StatusHistoryEntry joined with the performing actor's
// display identity. Name and Email stay empty when the actor does not
// resolve.
type HistoryView struct {
	StatusHistoryEntry
	PerformedByName  string
	PerformedByEmail string
}

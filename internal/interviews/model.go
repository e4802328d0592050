package interviews

import "time"

// Status is the closed set of interview states.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// ParseStatus maps a raw value onto a known Status.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(raw), true
	default:
		return "", false
	}
}

// Interview is a scheduled meeting tied to one application. Notes are
// append-only free text; every reschedule concatenates rather than
// overwrites.
type Interview struct {
	ID              string
	JobID           string
	ApplicationID   string
	ApplicantID     string
	ScheduledBy     string
	ScheduledAt     time.Time
	Interviewers    []string
	InterviewType   string
	MeetingPlatform string
	MeetingLink     string
	MeetingLocation string
	DurationMinutes int
	Status          Status
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

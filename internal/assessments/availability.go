package assessments

import "time"

// Availability is what an applicant can currently do with an assignment.
type Availability string

const (
	AvailabilityNotStarted Availability = "not_started"
	AvailabilityAvailable  Availability = "available"
	AvailabilityExpired    Availability = "expired"
	AvailabilityCompleted  Availability = "completed"
)

// ComputeAvailability derives the assignment state visible to the applicant
// at the given instant. The window boundaries win over assignment status,
// and an assignment that is still at assigned stays available for the whole
// window even while an attempt is in progress. Only a finished assignment
// (attempted or expired) reads as completed.
func ComputeAvailability(now time.Time, a TestAssignment) Availability {
	if now.Before(a.TestStartDate) {
		return AvailabilityNotStarted
	}
	if now.After(a.TestEndDate) {
		return AvailabilityExpired
	}
	if a.Status != AssignmentAssigned {
		return AvailabilityCompleted
	}
	return AvailabilityAvailable
}

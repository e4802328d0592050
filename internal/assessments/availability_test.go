package assessments

import (
	"testing"
	"time"
)

func windowAssignment(status AssignmentStatus, start, end time.Time) TestAssignment {
	return TestAssignment{
		ID:            "asg-1",
		TestID:        "test-1",
		ApplicationID: "app-1",
		Status:        status,
		TestStartDate: start,
		TestEndDate:   end,
	}
}

func TestComputeAvailabilityWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	cases := []struct {
		name   string
		now    time.Time
		status AssignmentStatus
		want   Availability
	}{
		{"before window", start.Add(-time.Minute), AssignmentAssigned, AvailabilityNotStarted},
		{"at window start", start, AssignmentAssigned, AvailabilityAvailable},
		{"inside window", start.Add(time.Hour), AssignmentAssigned, AvailabilityAvailable},
		{"at window end", end, AssignmentAssigned, AvailabilityAvailable},
		{"after window", end.Add(time.Second), AssignmentAssigned, AvailabilityExpired},
		{"attempted inside window", start.Add(time.Hour), AssignmentAttempted, AvailabilityCompleted},
		{"expired status inside window", start.Add(time.Hour), AssignmentExpired, AvailabilityCompleted},
		{"attempted after window reads expired", end.Add(time.Hour), AssignmentAttempted, AvailabilityExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeAvailability(tc.now, windowAssignment(tc.status, start, end))
			if got != tc.want {
				t.Fatalf("availability = %q, want %q", got, tc.want)
			}
		})
	}
}

// Regression guard: an assignment whose attempt is still running must stay
// available so the applicant can keep working, not flip to completed.
func TestComputeAvailabilityInProgressAttemptStaysAvailable(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	a := windowAssignment(AssignmentAssigned, start, end)

	got := ComputeAvailability(start.Add(30*time.Minute), a)
	if got != AvailabilityAvailable {
		t.Fatalf("availability = %q, want %q", got, AvailabilityAvailable)
	}
}

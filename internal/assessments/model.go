package assessments

import "time"

// AssignmentStatus is the closed set of test-assignment states. While an
// attempt is running the assignment stays at assigned; attempt progress is
// carried by the TestAttempt row.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentAttempted AssignmentStatus = "attempted"
	AssignmentExpired   AssignmentStatus = "expired"
)

// AttemptStatus is the closed set of test-attempt states.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// Test is an organization-owned assessment template.
type Test struct {
	ID                string
	OrgID             string
	CreatedBy         string
	Title             string
	DurationMinutes   int
	TotalMarks        int
	PassingPercentage float64
	Instructions      string
	AllowedUsers      []string
	IsActive          bool
	CreatedAt         time.Time
}

// TestQuestion belongs to exactly one Test, ordered by OrderIndex.
type TestQuestion struct {
	ID            string
	TestID        string
	OrderIndex    int
	QuestionText  string
	QuestionType  string
	Options       []string
	CorrectAnswer any
	Marks         int
	Difficulty    string
}

// TestAssignment binds a Test to one Application with an availability
// window. At most one assignment exists per (test, application) pair.
type TestAssignment struct {
	ID                 string
	TestID             string
	ApplicationID      string
	Status             AssignmentStatus
	AssignedBy         string
	AssignedAt         time.Time
	TestStartDate      time.Time
	TestEndDate        time.Time
	IsProctored        bool
	ProctoringSettings map[string]any
}

// TestAttempt is one applicant's run of an assigned test. At most one
// non-submitted attempt exists per assignment.
type TestAttempt struct {
	ID             string
	AssignmentID   string
	TestID         string
	ApplicationID  string
	ApplicantID    string
	StartedAt      time.Time
	SubmittedAt    *time.Time
	Status         AttemptStatus
	TotalScore     *float64
	Percentage     *float64
	IsPassed       *bool
	IsEvaluated    bool
	ProctoringData map[string]any
	ViolationScore float64
}

// TestResponse is one applicant answer to one question within an attempt,
// unique per (attempt, question). QuestionSnapshot freezes the question as
// it stood at answer time so later edits cannot rewrite the audit record.
type TestResponse struct {
	AttemptID        string
	QuestionID       string
	SelectedOptions  []string
	Answer           string
	QuestionSnapshot map[string]any
	TimeTakenSeconds int
	UpdatedAt        time.Time
}

// ViolationEvent is one proctoring incident reported during an attempt.
type ViolationEvent struct {
	Type       string
	Details    map[string]any
	OccurredAt time.Time
}

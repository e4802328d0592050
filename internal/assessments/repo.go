package assessments

import (
	"context"
	"time"
)

// Repo is the persistence surface for tests, assignments, attempts and
// responses. Multi-row operations (test creation, attempt submission) are
// atomic in every implementation.
type Repo interface {
	// CreateTestWithQuestions inserts the test and all of its questions as
	// one unit. Either everything lands or nothing does.
	CreateTestWithQuestions(ctx context.Context, t Test, questions []TestQuestion) error
	GetTest(ctx context.Context, testID string) (Test, error)
	ListTestsByOrg(ctx context.Context, orgID string, limit, offset int) ([]Test, error)
	ListQuestions(ctx context.Context, testID string) ([]TestQuestion, error)
	GetQuestion(ctx context.Context, questionID string) (TestQuestion, error)
	SetTestActive(ctx context.Context, testID string, active bool) error

	// CreateAssignment returns ErrAlreadyAssigned when the (test,
	// application) pair already has an assignment.
	CreateAssignment(ctx context.Context, a TestAssignment) error
	GetAssignment(ctx context.Context, assignmentID string) (TestAssignment, error)
	ListAssignmentsByTest(ctx context.Context, testID string) ([]TestAssignment, error)
	ListAssignmentsByApplication(ctx context.Context, applicationID string) ([]TestAssignment, error)

	// CreateAttempt returns ErrAttemptInProgress when the assignment already
	// has a non-submitted attempt.
	CreateAttempt(ctx context.Context, a TestAttempt) error
	GetAttempt(ctx context.Context, attemptID string) (TestAttempt, error)
	// SubmitAttempt closes the attempt and marks its assignment attempted in
	// the same transaction. Returns ErrAttemptClosed when the attempt is not
	// in progress anymore.
	SubmitAttempt(ctx context.Context, attemptID string, submittedAt time.Time, totalScore, percentage float64, isPassed bool) error

	UpsertResponse(ctx context.Context, r TestResponse) error
	ListResponses(ctx context.Context, attemptID string) ([]TestResponse, error)
	UpdateProctoringData(ctx context.Context, attemptID string, data map[string]any, violationScore float64) error
}

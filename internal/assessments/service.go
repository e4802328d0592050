package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"talentedge-backend/internal/applications"
	"talentedge-backend/internal/authz"
	"talentedge-backend/internal/jobs"
	"talentedge-backend/internal/shared/metrics"
	"talentedge-backend/internal/shared/telemetry"
)

// Statuses an application may hold when a test is assigned to it.
var assignableStatuses = map[applications.Status]struct{}{
	applications.StatusShortlisted:        {},
	applications.StatusTestScheduled:      {},
	applications.StatusInterviewScheduled: {},
}

// Service owns test templates, assignments, attempts and proctoring.
type Service struct {
	Repo Repo
	Apps *applications.Service
	Jobs jobs.Repo
}

// QuestionInput is one question in a test being created.
type QuestionInput struct {
	QuestionText  string
	QuestionType  string
	Options       []string
	CorrectAnswer any
	Marks         int
	Difficulty    string
}

// CreateTestInput carries the recruiter-provided test template.
type CreateTestInput struct {
	Title             string
	DurationMinutes   int
	PassingPercentage float64
	Instructions      string
	AllowedUsers      []string
	Questions         []QuestionInput
}

// CreateTest creates a test template and its questions atomically. Total
// marks are derived from the question marks, never taken from the caller.
func (s *Service) CreateTest(ctx context.Context, actor authz.Actor, input CreateTestInput) (Test, []TestQuestion, error) {
	if d := authz.CanManageOrg(actor, actor.OrgID); !d.Allowed {
		return Test{}, nil, ErrAccessDenied
	}
	if input.Title == "" || len(input.Questions) == 0 {
		return Test{}, nil, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 {
		input.DurationMinutes = 60
	}
	if input.PassingPercentage < 0 || input.PassingPercentage > 100 {
		return Test{}, nil, ErrInvalidInput
	}

	total := 0
	for _, q := range input.Questions {
		if q.QuestionText == "" || q.Marks <= 0 {
			return Test{}, nil, ErrInvalidInput
		}
		total += q.Marks
	}

	t := Test{
		ID:                uuid.NewString(),
		OrgID:             actor.OrgID,
		CreatedBy:         actor.UserID,
		Title:             input.Title,
		DurationMinutes:   input.DurationMinutes,
		TotalMarks:        total,
		PassingPercentage: input.PassingPercentage,
		Instructions:      input.Instructions,
		AllowedUsers:      input.AllowedUsers,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}
	questions := make([]TestQuestion, 0, len(input.Questions))
	for i, q := range input.Questions {
		qt := q.QuestionType
		if qt == "" {
			qt = "single_choice"
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		questions = append(questions, TestQuestion{
			ID:            uuid.NewString(),
			TestID:        t.ID,
			OrderIndex:    i,
			QuestionText:  q.QuestionText,
			QuestionType:  qt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         q.Marks,
			Difficulty:    difficulty,
		})
	}
	if err := s.Repo.CreateTestWithQuestions(ctx, t, questions); err != nil {
		return Test{}, nil, err
	}
	telemetry.Info("test.created", map[string]any{
		"test_id":     t.ID,
		"org_id":      t.OrgID,
		"questions":   len(questions),
		"total_marks": total,
	})
	return t, questions, nil
}

// GetTest returns a test and its questions for an org member. Tests outside
// the actor's organization read as not found.
func (s *Service) GetTest(ctx context.Context, actor authz.Actor, testID string) (Test, []TestQuestion, error) {
	t, err := s.resolveTest(ctx, actor, testID)
	if err != nil {
		return Test{}, nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, testID)
	if err != nil {
		return Test{}, nil, err
	}
	return t, questions, nil
}

// ListTests returns the actor organization's tests, newest first.
func (s *Service) ListTests(ctx context.Context, actor authz.Actor, limit, offset int) ([]Test, error) {
	if actor.Role == authz.RoleApplicant || actor.OrgID == "" {
		return nil, ErrAccessDenied
	}
	return s.Repo.ListTestsByOrg(ctx, actor.OrgID, limit, offset)
}

// Deactivate retires a test template so it cannot be assigned anymore.
// Existing assignments are unaffected.
func (s *Service) Deactivate(ctx context.Context, actor authz.Actor, testID string) error {
	return s.setActive(ctx, actor, testID, false)
}

// Reactivate puts a retired test template back in circulation.
func (s *Service) Reactivate(ctx context.Context, actor authz.Actor, testID string) error {
	return s.setActive(ctx, actor, testID, true)
}

func (s *Service) setActive(ctx context.Context, actor authz.Actor, testID string, active bool) error {
	t, err := s.Repo.GetTest(ctx, testID)
	if err != nil {
		return err
	}
	if d := authz.CanManageOrg(actor, t.OrgID); !d.Allowed {
		return ErrAccessDenied
	}
	return s.Repo.SetTestActive(ctx, testID, active)
}

// AssignInput carries the assignment window and proctoring settings shared
// by every application in one assign call.
type AssignInput struct {
	ApplicationIDs     []string
	TestStartDate      time.Time
	TestEndDate        time.Time
	IsProctored        bool
	ProctoringSettings map[string]any
}

// AssignTest assigns a test to a batch of applications. Every application
// must belong to an active job in the actor's organization and sit at a
// pipeline stage where testing makes sense; one ineligible application
// fails the whole batch before anything is written. Applications that
// already hold this test are skipped. The pipeline stage is not touched;
// moving an application to test_scheduled stays an explicit recruiter
// transition.
func (s *Service) AssignTest(ctx context.Context, actor authz.Actor, testID string, input AssignInput) ([]TestAssignment, error) {
	t, err := s.resolveTest(ctx, actor, testID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrInvalidInput
	}
	if len(input.ApplicationIDs) == 0 || !input.TestEndDate.After(input.TestStartDate) {
		return nil, ErrInvalidInput
	}

	// Validate the whole batch before writing anything.
	apps := make([]applications.Application, 0, len(input.ApplicationIDs))
	for _, appID := range input.ApplicationIDs {
		app, err := s.Apps.Get(ctx, actor, appID)
		if err != nil {
			return nil, translateAppErr(err)
		}
		if _, ok := assignableStatuses[app.Status]; !ok {
			return nil, ErrNotEligible
		}
		job, err := s.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if !job.IsActive {
			return nil, ErrNotEligible
		}
		apps = append(apps, app)
	}

	now := time.Now().UTC()
	var out []TestAssignment
	for _, app := range apps {
		a := TestAssignment{
			ID:                 uuid.NewString(),
			TestID:             testID,
			ApplicationID:      app.ID,
			Status:             AssignmentAssigned,
			AssignedBy:         actor.UserID,
			AssignedAt:         now,
			TestStartDate:      input.TestStartDate,
			TestEndDate:        input.TestEndDate,
			IsProctored:        input.IsProctored,
			ProctoringSettings: input.ProctoringSettings,
		}
		if err := s.Repo.CreateAssignment(ctx, a); err != nil {
			if errors.Is(err, ErrAlreadyAssigned) {
				continue
			}
			return nil, err
		}
		out = append(out, a)
	}
	telemetry.Info("test.assigned", map[string]any{
		"test_id":   testID,
		"requested": len(input.ApplicationIDs),
		"created":   len(out),
	})
	return out, nil
}

// ListAssignmentsByTest returns everything assigned from one test template,
// for recruiters reviewing who has been invited and who has finished.
func (s *Service) ListAssignmentsByTest(ctx context.Context, actor authz.Actor, testID string) ([]AssignmentView, error) {
	if _, err := s.resolveTest(ctx, actor, testID); err != nil {
		return nil, err
	}
	assignments, err := s.Repo.ListAssignmentsByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, AssignmentView{TestAssignment: a, Availability: ComputeAvailability(now, a)})
	}
	return out, nil
}

// AssignmentView pairs an assignment with its availability at read time.
type AssignmentView struct {
	TestAssignment
	Availability Availability
}

// ListAssignmentsForApplication returns an application's assignments with
// availability computed at call time. Recruiters authorized on the job and
// the owning applicant may read them.
func (s *Service) ListAssignmentsForApplication(ctx context.Context, actor authz.Actor, applicationID string) ([]AssignmentView, error) {
	app, err := s.Apps.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, translateAppErr(err)
	}
	if d := authz.CanActAsApplicant(actor, app.ApplicantID); !d.Allowed {
		if _, err := s.Apps.Get(ctx, actor, applicationID); err != nil {
			return nil, translateAppErr(err)
		}
	}

	assignments, err := s.Repo.ListAssignmentsByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, AssignmentView{TestAssignment: a, Availability: ComputeAvailability(now, a)})
	}
	return out, nil
}

// StartAttempt opens an attempt for the owning applicant. The assignment
// must be available and at most one attempt may be running at a time.
func (s *Service) StartAttempt(ctx context.Context, actor authz.Actor, assignmentID string) (TestAttempt, error) {
	a, err := s.Repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return TestAttempt{}, err
	}
	app, err := s.Apps.Repo.GetByID(ctx, a.ApplicationID)
	if err != nil {
		return TestAttempt{}, translateAppErr(err)
	}
	if d := authz.CanActAsApplicant(actor, app.ApplicantID); !d.Allowed {
		return TestAttempt{}, ErrNotFound
	}
	t, err := s.Repo.GetTest(ctx, a.TestID)
	if err != nil {
		return TestAttempt{}, err
	}
	if len(t.AllowedUsers) > 0 && !contains(t.AllowedUsers, actor.UserID) {
		return TestAttempt{}, ErrAccessDenied
	}
	if ComputeAvailability(time.Now().UTC(), a) != AvailabilityAvailable {
		return TestAttempt{}, ErrNotAvailable
	}

	attempt := TestAttempt{
		ID:             uuid.NewString(),
		AssignmentID:   a.ID,
		TestID:         a.TestID,
		ApplicationID:  a.ApplicationID,
		ApplicantID:    app.ApplicantID,
		StartedAt:      time.Now().UTC(),
		Status:         AttemptInProgress,
		ProctoringData: map[string]any{},
	}
	if err := s.Repo.CreateAttempt(ctx, attempt); err != nil {
		return TestAttempt{}, err
	}
	metrics.IncAttemptStarted()
	telemetry.Info("attempt.started", map[string]any{
		"attempt_id":    attempt.ID,
		"assignment_id": a.ID,
		"test_id":       a.TestID,
	})
	return attempt, nil
}

// ResponseInput is one answer to one question.
type ResponseInput struct {
	QuestionID       string
	SelectedOptions  []string
	Answer           string
	TimeTakenSeconds int
}

// SubmitResponse records or overwrites the applicant's answer to a question
// while the attempt is running. The question is snapshotted with the answer
// so later template edits cannot change what was answered.
func (s *Service) SubmitResponse(ctx context.Context, actor authz.Actor, attemptID string, input ResponseInput) (TestResponse, error) {
	attempt, err := s.ownAttempt(ctx, actor, attemptID)
	if err != nil {
		return TestResponse{}, err
	}
	if attempt.Status != AttemptInProgress {
		return TestResponse{}, ErrAttemptClosed
	}
	q, err := s.Repo.GetQuestion(ctx, input.QuestionID)
	if err != nil {
		return TestResponse{}, err
	}
	if q.TestID != attempt.TestID {
		return TestResponse{}, ErrInvalidInput
	}

	snapshot, err := questionSnapshot(q)
	if err != nil {
		return TestResponse{}, err
	}
	resp := TestResponse{
		AttemptID:        attemptID,
		QuestionID:       q.ID,
		SelectedOptions:  input.SelectedOptions,
		Answer:           input.Answer,
		QuestionSnapshot: snapshot,
		TimeTakenSeconds: input.TimeTakenSeconds,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.Repo.UpsertResponse(ctx, resp); err != nil {
		return TestResponse{}, err
	}
	return resp, nil
}

// SubmitAttempt closes the attempt, scores it against the recorded correct
// answers and marks the assignment attempted, atomically. The application's
// pipeline stage is not touched; recruiters act on the result separately.
func (s *Service) SubmitAttempt(ctx context.Context, actor authz.Actor, attemptID string) (TestAttempt, error) {
	attempt, err := s.ownAttempt(ctx, actor, attemptID)
	if err != nil {
		return TestAttempt{}, err
	}
	if attempt.Status != AttemptInProgress {
		return TestAttempt{}, ErrAttemptClosed
	}
	t, err := s.Repo.GetTest(ctx, attempt.TestID)
	if err != nil {
		return TestAttempt{}, err
	}
	questions, err := s.Repo.ListQuestions(ctx, attempt.TestID)
	if err != nil {
		return TestAttempt{}, err
	}
	responses, err := s.Repo.ListResponses(ctx, attemptID)
	if err != nil {
		return TestAttempt{}, err
	}

	score := scoreAttempt(questions, responses)
	percentage := 0.0
	if t.TotalMarks > 0 {
		percentage = math.Round(score/float64(t.TotalMarks)*10000) / 100
	}
	passed := percentage >= t.PassingPercentage
	submittedAt := time.Now().UTC()

	if err := s.Repo.SubmitAttempt(ctx, attemptID, submittedAt, score, percentage, passed); err != nil {
		return TestAttempt{}, err
	}
	metrics.IncAttemptSubmitted()
	metrics.ObserveAttemptDurationMinutes(submittedAt.Sub(attempt.StartedAt).Minutes())
	telemetry.Info("attempt.submitted", map[string]any{
		"attempt_id": attemptID,
		"test_id":    attempt.TestID,
		"score":      score,
		"percentage": percentage,
		"passed":     passed,
	})

	attempt.Status = AttemptSubmitted
	attempt.SubmittedAt = &submittedAt
	attempt.TotalScore = &score
	attempt.Percentage = &percentage
	attempt.IsPassed = &passed
	attempt.IsEvaluated = true
	return attempt, nil
}

// GetAttempt returns an attempt for its applicant or a recruiter authorized
// on the underlying application.
func (s *Service) GetAttempt(ctx context.Context, actor authz.Actor, attemptID string) (TestAttempt, error) {
	attempt, err := s.Repo.GetAttempt(ctx, attemptID)
	if err != nil {
		return TestAttempt{}, err
	}
	if d := authz.CanActAsApplicant(actor, attempt.ApplicantID); d.Allowed {
		return attempt, nil
	}
	if _, err := s.Apps.Get(ctx, actor, attempt.ApplicationID); err != nil {
		return TestAttempt{}, translateAppErr(err)
	}
	return attempt, nil
}

// RecordViolation folds a proctoring incident into the attempt. Events are
// keyed by type with last-write-wins per type, plus a lastUpdated stamp, so
// repeated incidents of one kind keep a running count instead of growing
// the record without bound.
func (s *Service) RecordViolation(ctx context.Context, actor authz.Actor, attemptID string, event ViolationEvent) (TestAttempt, error) {
	attempt, err := s.ownAttempt(ctx, actor, attemptID)
	if err != nil {
		return TestAttempt{}, err
	}
	if attempt.Status != AttemptInProgress {
		return TestAttempt{}, ErrAttemptClosed
	}
	if event.Type == "" {
		return TestAttempt{}, ErrInvalidInput
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data := attempt.ProctoringData
	if data == nil {
		data = map[string]any{}
	}
	count := 1
	if prev, ok := data[event.Type].(map[string]any); ok {
		if c, ok := prev["count"].(float64); ok {
			count = int(c) + 1
		} else if c, ok := prev["count"].(int); ok {
			count = c + 1
		}
	}
	entry := map[string]any{
		"count":      count,
		"occurredAt": event.OccurredAt.Format(time.RFC3339),
	}
	for k, v := range event.Details {
		entry[k] = v
	}
	data[event.Type] = entry
	data["lastUpdated"] = event.OccurredAt.Format(time.RFC3339)
	violationScore := attempt.ViolationScore + 1

	if err := s.Repo.UpdateProctoringData(ctx, attemptID, data, violationScore); err != nil {
		return TestAttempt{}, err
	}
	metrics.IncProctoringViolation()
	attempt.ProctoringData = data
	attempt.ViolationScore = violationScore
	return attempt, nil
}

// ListAttemptQuestions returns the question set behind an attempt, for the
// applicant taking it or a recruiter reviewing it. Applicants cannot read a
// test template directly, so this is their way to the questions.
func (s *Service) ListAttemptQuestions(ctx context.Context, actor authz.Actor, attemptID string) ([]TestQuestion, error) {
	attempt, err := s.GetAttempt(ctx, actor, attemptID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListQuestions(ctx, attempt.TestID)
}

// ListResponses returns an attempt's answers for its applicant or an
// authorized recruiter.
func (s *Service) ListResponses(ctx context.Context, actor authz.Actor, attemptID string) ([]TestResponse, error) {
	if _, err := s.GetAttempt(ctx, actor, attemptID); err != nil {
		return nil, err
	}
	return s.Repo.ListResponses(ctx, attemptID)
}

func (s *Service) ownAttempt(ctx context.Context, actor authz.Actor, attemptID string) (TestAttempt, error) {
	attempt, err := s.Repo.GetAttempt(ctx, attemptID)
	if err != nil {
		return TestAttempt{}, err
	}
	if d := authz.CanActAsApplicant(actor, attempt.ApplicantID); !d.Allowed {
		return TestAttempt{}, ErrNotFound
	}
	return attempt, nil
}

func (s *Service) resolveTest(ctx context.Context, actor authz.Actor, testID string) (Test, error) {
	t, err := s.Repo.GetTest(ctx, testID)
	if err != nil {
		return Test{}, err
	}
	if t.OrgID != actor.OrgID {
		return Test{}, ErrNotFound
	}
	if actor.Role == authz.RoleApplicant {
		return Test{}, ErrAccessDenied
	}
	return t, nil
}

// scoreAttempt sums marks for responses matching the recorded correct
// answer. Questions without a correct answer (free text) score zero here
// and wait for manual review.
func scoreAttempt(questions []TestQuestion, responses []TestResponse) float64 {
	byQuestion := make(map[string]TestResponse, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}
	score := 0.0
	for _, q := range questions {
		if q.CorrectAnswer == nil {
			continue
		}
		r, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		if responseMatches(q, r) {
			score += float64(q.Marks)
		}
	}
	return score
}

func responseMatches(q TestQuestion, r TestResponse) bool {
	switch correct := q.CorrectAnswer.(type) {
	case string:
		if len(r.SelectedOptions) == 1 {
			return r.SelectedOptions[0] == correct
		}
		return r.Answer == correct
	case []any:
		if len(r.SelectedOptions) != len(correct) {
			return false
		}
		want := make(map[string]struct{}, len(correct))
		for _, v := range correct {
			s, ok := v.(string)
			if !ok {
				return false
			}
			want[s] = struct{}{}
		}
		for _, got := range r.SelectedOptions {
			if _, ok := want[got]; !ok {
				return false
			}
		}
		return true
	case []string:
		if len(r.SelectedOptions) != len(correct) {
			return false
		}
		want := make(map[string]struct{}, len(correct))
		for _, v := range correct {
			want[v] = struct{}{}
		}
		for _, got := range r.SelectedOptions {
			if _, ok := want[got]; !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func questionSnapshot(q TestQuestion) (map[string]any, error) {
	raw, err := json.Marshal(map[string]any{
		"id":           q.ID,
		"testId":       q.TestID,
		"orderIndex":   q.OrderIndex,
		"questionText": q.QuestionText,
		"questionType": q.QuestionType,
		"options":      q.Options,
		"marks":        q.Marks,
		"difficulty":   q.Difficulty,
	})
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func translateAppErr(err error) error {
	switch {
	case errors.Is(err, applications.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, applications.ErrAccessDenied):
		return ErrAccessDenied
	default:
		return err
	}
}

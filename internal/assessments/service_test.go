package assessments

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentedge-backend/internal/applications"
	"talentedge-backend/internal/authz"
	"talentedge-backend/internal/jobs"
	"talentedge-backend/internal/users"
)

var (
	admin     = authz.Actor{UserID: "admin-1", OrgID: "org-1", Role: authz.RoleOrgAdmin}
	recruiter = authz.Actor{UserID: "rec-1", OrgID: "org-1", Role: authz.RoleRecruiter}
	applicant = authz.Actor{UserID: "applicant-1", OrgID: "", Role: authz.RoleApplicant}
)

func setupService(t *testing.T) (*Service, *applications.Service, string) {
	t.Helper()
	ctx := context.Background()

	jobRepo := jobs.NewMemoryRepo()
	if err := jobRepo.Create(ctx, jobs.Job{
		ID:                 "job-1",
		OrgID:              "org-1",
		Title:              "Backend Engineer",
		AssignedRecruiters: []string{"rec-1"},
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	appSvc := &applications.Service{
		Repo:  applications.NewMemoryRepo(),
		Jobs:  jobRepo,
		Users: users.NewMemoryRepo(),
	}
	app, err := appSvc.Submit(ctx, "applicant-1", "job-1", applications.SubmitInput{})
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	if _, err := appSvc.Transition(ctx, recruiter, app.ID, applications.StatusShortlisted, ""); err != nil {
		t.Fatalf("shortlist: %v", err)
	}

	svc := &Service{Repo: NewMemoryRepo(), Apps: appSvc, Jobs: jobRepo}
	return svc, appSvc, app.ID
}

func twoQuestionTest(t *testing.T, svc *Service) (Test, []TestQuestion) {
	t.Helper()
	created, questions, err := svc.CreateTest(context.Background(), admin, CreateTestInput{
		Title:             "Go fundamentals",
		DurationMinutes:   30,
		PassingPercentage: 50,
		Questions: []QuestionInput{
			{QuestionText: "What does make do?", Options: []string{"a", "b"}, CorrectAnswer: "a", Marks: 40},
			{QuestionText: "Zero value of a map?", Options: []string{"nil", "empty"}, CorrectAnswer: "nil", Marks: 60},
		},
	})
	if err != nil {
		t.Fatalf("create test: %v", err)
	}
	return created, questions
}

func openWindow() AssignInput {
	now := time.Now().UTC()
	return AssignInput{
		TestStartDate: now.Add(-time.Hour),
		TestEndDate:   now.Add(24 * time.Hour),
	}
}

func TestCreateTestDerivesTotalMarks(t *testing.T) {
	svc, _, _ := setupService(t)

	created, questions, err := svc.CreateTest(context.Background(), admin, CreateTestInput{
		Title:             "Scoring",
		PassingPercentage: 60,
		Questions: []QuestionInput{
			{QuestionText: "q1", Marks: 10},
			{QuestionText: "q2", Marks: 15},
			{QuestionText: "q3", Marks: 25},
		},
	})
	if err != nil {
		t.Fatalf("create test: %v", err)
	}
	if created.TotalMarks != 50 {
		t.Fatalf("total marks = %d, want 50", created.TotalMarks)
	}
	if len(questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(questions))
	}
	for i, q := range questions {
		if q.OrderIndex != i {
			t.Fatalf("question %d has order index %d", i, q.OrderIndex)
		}
	}
}

func TestCreateTestRequiresOrgManager(t *testing.T) {
	svc, _, _ := setupService(t)

	_, _, err := svc.CreateTest(context.Background(), recruiter, CreateTestInput{
		Title:     "nope",
		Questions: []QuestionInput{{QuestionText: "q", Marks: 1}},
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("recruiter create: want ErrAccessDenied, got %v", err)
	}
}

func TestAssignLeavesApplicationStatusUntouched(t *testing.T) {
	svc, appSvc, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, err := svc.AssignTest(ctx, recruiter, created.ID, input)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(assignments))
	}
	if assignments[0].Status != AssignmentAssigned {
		t.Fatalf("assignment status = %s, want assigned", assignments[0].Status)
	}

	app, err := appSvc.Get(ctx, recruiter, appID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if app.Status != applications.StatusShortlisted {
		t.Fatalf("assignment must not move the pipeline, got %s", app.Status)
	}
}

func TestAssignIsIdempotentPerApplication(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	if _, err := svc.AssignTest(ctx, recruiter, created.ID, input); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	again, err := svc.AssignTest(ctx, recruiter, created.ID, input)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second assign should skip existing assignment, created %d", len(again))
	}
	all, err := svc.ListAssignmentsByTest(ctx, recruiter, created.ID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("assignments = %d, want 1", len(all))
	}
}

func TestAssignRejectsPendingApplication(t *testing.T) {
	svc, appSvc, _ := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	pending, err := appSvc.Submit(ctx, "applicant-2", "job-1", applications.SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	input := openWindow()
	input.ApplicationIDs = []string{pending.ID}
	if _, err := svc.AssignTest(ctx, recruiter, created.ID, input); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("pending application: want ErrNotEligible, got %v", err)
	}
}

func TestAssignRejectsInactiveTest(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	if err := svc.Deactivate(ctx, admin, created.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	input := openWindow()
	input.ApplicationIDs = []string{appID}
	if _, err := svc.AssignTest(ctx, recruiter, created.ID, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("inactive test assign: want ErrInvalidInput, got %v", err)
	}

	if err := svc.Reactivate(ctx, admin, created.ID); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if _, err := svc.AssignTest(ctx, recruiter, created.ID, input); err != nil {
		t.Fatalf("assign after reactivate: %v", err)
	}
}

func TestDeactivateCrossOrgDenied(t *testing.T) {
	svc, _, _ := setupService(t)
	created, _ := twoQuestionTest(t, svc)

	outsider := authz.Actor{UserID: "admin-x", OrgID: "org-2", Role: authz.RoleOrgAdmin}
	if err := svc.Deactivate(context.Background(), outsider, created.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("cross-org deactivate: want ErrAccessDenied, got %v", err)
	}
}

func TestStartAttemptOutsideWindow(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	now := time.Now().UTC()
	input := AssignInput{
		ApplicationIDs: []string{appID},
		TestStartDate:  now.Add(24 * time.Hour),
		TestEndDate:    now.Add(48 * time.Hour),
	}
	assignments, err := svc.AssignTest(ctx, recruiter, created.ID, input)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.StartAttempt(ctx, applicant, assignments[0].ID); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("attempt before window: want ErrNotAvailable, got %v", err)
	}
}

func TestStartAttemptSecondActiveRejected(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, err := svc.AssignTest(ctx, recruiter, created.ID, input)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.StartAttempt(ctx, applicant, assignments[0].ID); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if _, err := svc.StartAttempt(ctx, applicant, assignments[0].ID); !errors.Is(err, ErrAttemptInProgress) {
		t.Fatalf("second attempt: want ErrAttemptInProgress, got %v", err)
	}
}

func TestStartAttemptByOtherApplicantReadsNotFound(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, err := svc.AssignTest(ctx, recruiter, created.ID, input)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	other := authz.Actor{UserID: "applicant-9", Role: authz.RoleApplicant}
	if _, err := svc.StartAttempt(ctx, other, assignments[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign attempt: want ErrNotFound, got %v", err)
	}
}

func TestAttemptQuestionsReadableByOwningApplicant(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, _ := svc.AssignTest(ctx, recruiter, created.ID, input)
	attempt, err := svc.StartAttempt(ctx, applicant, assignments[0].ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// The template itself stays off limits for applicants.
	if _, _, err := svc.GetTest(ctx, applicant, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("template read: want ErrNotFound, got %v", err)
	}

	questions, err := svc.ListAttemptQuestions(ctx, applicant, attempt.ID)
	if err != nil {
		t.Fatalf("list attempt questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	for _, q := range toQuestions(questions, false) {
		if q.CorrectAnswer != nil {
			t.Fatalf("applicant view must not carry the correct answer, got %v", q.CorrectAnswer)
		}
		if q.QuestionText == "" || len(q.Options) == 0 {
			t.Fatalf("applicant view should carry the question body, got %+v", q)
		}
	}

	other := authz.Actor{UserID: "applicant-9", Role: authz.RoleApplicant}
	if _, err := svc.ListAttemptQuestions(ctx, other, attempt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign applicant: want ErrNotFound, got %v", err)
	}
}

func TestSubmitResponseSnapshotsQuestionAndUpserts(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, questions := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, _ := svc.AssignTest(ctx, recruiter, created.ID, input)
	attempt, err := svc.StartAttempt(ctx, applicant, assignments[0].ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	first, err := svc.SubmitResponse(ctx, applicant, attempt.ID, ResponseInput{
		QuestionID:      questions[0].ID,
		SelectedOptions: []string{"b"},
	})
	if err != nil {
		t.Fatalf("submit response: %v", err)
	}
	if first.QuestionSnapshot["questionText"] != questions[0].QuestionText {
		t.Fatalf("snapshot should freeze the question text, got %v", first.QuestionSnapshot)
	}
	if _, hasAnswer := first.QuestionSnapshot["correctAnswer"]; hasAnswer {
		t.Fatalf("snapshot must not leak the correct answer")
	}

	second, err := svc.SubmitResponse(ctx, applicant, attempt.ID, ResponseInput{
		QuestionID:      questions[0].ID,
		SelectedOptions: []string{"a"},
	})
	if err != nil {
		t.Fatalf("resubmit response: %v", err)
	}
	if len(second.SelectedOptions) != 1 || second.SelectedOptions[0] != "a" {
		t.Fatalf("resubmit should overwrite, got %v", second.SelectedOptions)
	}
	responses, err := svc.ListResponses(ctx, applicant, attempt.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1 after upsert", len(responses))
	}
}

func TestSubmitAttemptScoresAndClosesAssignment(t *testing.T) {
	svc, appSvc, appID := setupService(t)
	ctx := context.Background()
	created, questions := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, _ := svc.AssignTest(ctx, recruiter, created.ID, input)
	attempt, err := svc.StartAttempt(ctx, applicant, assignments[0].ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// Correct answer for the 40-mark question, wrong for the 60-mark one.
	if _, err := svc.SubmitResponse(ctx, applicant, attempt.ID, ResponseInput{QuestionID: questions[0].ID, SelectedOptions: []string{"a"}}); err != nil {
		t.Fatalf("response 1: %v", err)
	}
	if _, err := svc.SubmitResponse(ctx, applicant, attempt.ID, ResponseInput{QuestionID: questions[1].ID, SelectedOptions: []string{"empty"}}); err != nil {
		t.Fatalf("response 2: %v", err)
	}

	submitted, err := svc.SubmitAttempt(ctx, applicant, attempt.ID)
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}
	if submitted.Status != AttemptSubmitted || submitted.TotalScore == nil || submitted.Percentage == nil || submitted.IsPassed == nil {
		t.Fatalf("submitted attempt incomplete: %+v", submitted)
	}
	if *submitted.TotalScore != 40 {
		t.Fatalf("score = %v, want 40", *submitted.TotalScore)
	}
	if *submitted.Percentage != 40 {
		t.Fatalf("percentage = %v, want 40", *submitted.Percentage)
	}
	if *submitted.IsPassed {
		t.Fatalf("40%% must fail a 50%% passing bar")
	}

	a, err := svc.Repo.GetAssignment(ctx, assignments[0].ID)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if a.Status != AssignmentAttempted {
		t.Fatalf("assignment status = %s, want attempted", a.Status)
	}

	// Submitting a test result never moves the hiring pipeline by itself.
	app, err := appSvc.Get(ctx, recruiter, appID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if app.Status != applications.StatusShortlisted {
		t.Fatalf("application status = %s, want shortlisted", app.Status)
	}

	if _, err := svc.SubmitResponse(ctx, applicant, attempt.ID, ResponseInput{QuestionID: questions[0].ID, Answer: "late"}); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("response after submit: want ErrAttemptClosed, got %v", err)
	}
	if _, err := svc.SubmitAttempt(ctx, applicant, attempt.ID); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("double submit: want ErrAttemptClosed, got %v", err)
	}
}

func TestRecordViolationMergesByEventType(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	assignments, _ := svc.AssignTest(ctx, recruiter, created.ID, input)
	attempt, err := svc.StartAttempt(ctx, applicant, assignments[0].ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	if _, err := svc.RecordViolation(ctx, applicant, attempt.ID, ViolationEvent{Type: "tab_switch"}); err != nil {
		t.Fatalf("first violation: %v", err)
	}
	if _, err := svc.RecordViolation(ctx, applicant, attempt.ID, ViolationEvent{Type: "face_missing"}); err != nil {
		t.Fatalf("second violation: %v", err)
	}
	updated, err := svc.RecordViolation(ctx, applicant, attempt.ID, ViolationEvent{Type: "tab_switch"})
	if err != nil {
		t.Fatalf("third violation: %v", err)
	}

	tabSwitch, ok := updated.ProctoringData["tab_switch"].(map[string]any)
	if !ok {
		t.Fatalf("tab_switch entry missing: %v", updated.ProctoringData)
	}
	if count, _ := tabSwitch["count"].(int); count != 2 {
		t.Fatalf("tab_switch count = %v, want 2", tabSwitch["count"])
	}
	if _, ok := updated.ProctoringData["face_missing"]; !ok {
		t.Fatalf("face_missing entry missing")
	}
	if _, ok := updated.ProctoringData["lastUpdated"]; !ok {
		t.Fatalf("lastUpdated stamp missing")
	}
	if updated.ViolationScore != 3 {
		t.Fatalf("violation score = %v, want 3", updated.ViolationScore)
	}

	if _, err := svc.SubmitAttempt(ctx, applicant, attempt.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.RecordViolation(ctx, applicant, attempt.ID, ViolationEvent{Type: "tab_switch"}); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("violation after submit: want ErrAttemptClosed, got %v", err)
	}
}

func TestListAssignmentsReportsAvailability(t *testing.T) {
	svc, _, appID := setupService(t)
	ctx := context.Background()
	created, _ := twoQuestionTest(t, svc)

	input := openWindow()
	input.ApplicationIDs = []string{appID}
	if _, err := svc.AssignTest(ctx, recruiter, created.ID, input); err != nil {
		t.Fatalf("assign: %v", err)
	}

	views, err := svc.ListAssignmentsForApplication(ctx, applicant, appID)
	if err != nil {
		t.Fatalf("list as applicant: %v", err)
	}
	if len(views) != 1 || views[0].Availability != AvailabilityAvailable {
		t.Fatalf("availability = %+v, want one available assignment", views)
	}

	// An attempt in flight must not flip availability to completed.
	attempt, err := svc.StartAttempt(ctx, applicant, views[0].ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	views, err = svc.ListAssignmentsForApplication(ctx, applicant, appID)
	if err != nil {
		t.Fatalf("list mid-attempt: %v", err)
	}
	if views[0].Availability != AvailabilityAvailable {
		t.Fatalf("mid-attempt availability = %s, want available", views[0].Availability)
	}

	if _, err := svc.SubmitAttempt(ctx, applicant, attempt.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	views, err = svc.ListAssignmentsForApplication(ctx, recruiter, appID)
	if err != nil {
		t.Fatalf("list as recruiter: %v", err)
	}
	if views[0].Availability != AvailabilityCompleted {
		t.Fatalf("post-submit availability = %s, want completed", views[0].Availability)
	}
}

func TestGetTestCrossOrgReadsNotFound(t *testing.T) {
	svc, _, _ := setupService(t)
	created, _ := twoQuestionTest(t, svc)

	outsider := authz.Actor{UserID: "rec-x", OrgID: "org-2", Role: authz.RoleRecruiter}
	if _, _, err := svc.GetTest(context.Background(), outsider, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-org read: want ErrNotFound, got %v", err)
	}
}

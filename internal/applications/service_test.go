package applications

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentedge-backend/internal/authz"
	"talentedge-backend/internal/jobs"
	"talentedge-backend/internal/users"
)

func setupService(t *testing.T) (*Service, *MemoryRepo, *jobs.MemoryRepo) {
	t.Helper()
	appRepo := NewMemoryRepo()
	jobRepo := jobs.NewMemoryRepo()
	userRepo := users.NewMemoryRepo()

	job := jobs.Job{
		ID:                 "job-1",
		OrgID:              "org-1",
		Title:              "Backend Engineer",
		Skills:             []string{"go", "sql"},
		AssignedRecruiters: []string{"rec-1"},
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}
	if err := jobRepo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := userRepo.Upsert(context.Background(), users.User{ID: "rec-1", OrgID: "org-1", Email: "rec@org1.test", Name: "Rita Recruiter", Role: "recruiter"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := &Service{Repo: appRepo, Jobs: jobRepo, Users: userRepo}
	return svc, appRepo, jobRepo
}

var recruiter = authz.Actor{UserID: "rec-1", OrgID: "org-1", Role: authz.RoleRecruiter}

func TestSubmitRejectsDuplicatePair(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if app.Status != StatusPending {
		t.Fatalf("new application should be pending, got %s", app.Status)
	}

	if _, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{}); !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("second submit: want ErrDuplicateApplication, got %v", err)
	}
}

func TestSubmitScoresResumeAgainstJobSkills(t *testing.T) {
	svc, _, _ := setupService(t)

	app, err := svc.Submit(context.Background(), "applicant-1", "job-1", SubmitInput{
		ResumeText: "Senior Go developer, strong SQL background",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if app.ResumeScore == nil || *app.ResumeScore != 100 {
		t.Fatalf("expected resume score 100, got %v", app.ResumeScore)
	}
}

func TestSubmitRejectsInactiveJob(t *testing.T) {
	svc, _, jobRepo := setupService(t)
	ctx := context.Background()
	if err := jobRepo.SetActive(ctx, "job-1", false); err != nil {
		t.Fatalf("close job: %v", err)
	}
	if _, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for closed job, got %v", err)
	}
}

func TestTransitionWritesMatchingHistoryEntry(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.Transition(ctx, recruiter, app.ID, StatusShortlisted, "looks strong")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != StatusShortlisted {
		t.Fatalf("status=%s want shortlisted", updated.Status)
	}

	entries, err := repo.History(ctx, app.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.OldStatus != StatusPending || e.NewStatus != StatusShortlisted {
		t.Fatalf("history old=%s new=%s", e.OldStatus, e.NewStatus)
	}
	if e.PerformedBy != "rec-1" || e.Notes != "looks strong" {
		t.Fatalf("history actor=%q notes=%q", e.PerformedBy, e.Notes)
	}
}

func TestTransitionRejectsIllegalJump(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Transition(ctx, recruiter, app.ID, StatusAccepted, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending->accepted should fail with ErrInvalidTransition, got %v", err)
	}
	entries, _ := repo.History(ctx, app.ID)
	if len(entries) != 0 {
		t.Fatalf("rejected transition must not write history, got %d entries", len(entries))
	}
}

func TestTransitionCrossOrgSurfacesAsNotFound(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	outsider := authz.Actor{UserID: "rec-2", OrgID: "org-2", Role: authz.RoleOrgAdmin}
	if _, err := svc.Transition(ctx, outsider, app.ID, StatusShortlisted, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-org transition: want ErrNotFound, got %v", err)
	}
	entries, _ := repo.History(ctx, app.ID)
	if len(entries) != 0 {
		t.Fatalf("denied transition must not write history")
	}
}

func TestTransitionUnassignedRecruiterDenied(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	stranger := authz.Actor{UserID: "rec-9", OrgID: "org-1", Role: authz.RoleRecruiter}
	if _, err := svc.Transition(ctx, stranger, app.ID, StatusShortlisted, ""); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("unassigned recruiter: want ErrAccessDenied, got %v", err)
	}
}

func TestHistoryNewestFirstWithActorIdentity(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Transition(ctx, recruiter, app.ID, StatusShortlisted, "first"); err != nil {
		t.Fatalf("transition 1: %v", err)
	}
	if _, err := svc.Transition(ctx, recruiter, app.ID, StatusTestScheduled, "second"); err != nil {
		t.Fatalf("transition 2: %v", err)
	}

	views, err := svc.History(ctx, recruiter, app.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].PerformedAt.After(views[i-1].PerformedAt) {
			t.Fatalf("history not newest-first at index %d", i)
		}
	}
	if views[0].NewStatus != StatusTestScheduled {
		t.Fatalf("newest entry should be the latest transition, got %s", views[0].NewStatus)
	}
	if views[0].PerformedByName != "Rita Recruiter" || views[0].PerformedByEmail != "rec@org1.test" {
		t.Fatalf("actor identity not joined: %+v", views[0])
	}
}

func TestHistoryOmitsUnresolvableActor(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	entry := StatusHistoryEntry{
		ID:            "h-1",
		ApplicationID: app.ID,
		OldStatus:     StatusPending,
		NewStatus:     StatusShortlisted,
		PerformedBy:   "ghost-user",
		PerformedAt:   time.Now().UTC(),
	}
	if err := repo.Transition(ctx, entry); err != nil {
		t.Fatalf("seed transition: %v", err)
	}

	views, err := svc.History(ctx, recruiter, app.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(views))
	}
	if views[0].PerformedByName != "" || views[0].PerformedByEmail != "" {
		t.Fatalf("unresolvable actor should omit name/email, got %+v", views[0])
	}
}

func TestConcurrentTransitionLosesWithConflict(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.Submit(ctx, "applicant-1", "job-1", SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Simulate a racing recruiter winning first.
	if err := repo.Transition(ctx, StatusHistoryEntry{
		ID: "h-race", ApplicationID: app.ID,
		OldStatus: StatusPending, NewStatus: StatusRejected,
		PerformedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("race transition: %v", err)
	}

	if _, err := svc.Transition(ctx, recruiter, app.ID, StatusShortlisted, ""); !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("losing transition should fail, got %v", err)
	}
}

package jobs

import (
	"context"
	"errors"
	"testing"

	"talentedge-backend/internal/authz"
)

var (
	admin     = authz.Actor{UserID: "admin-1", OrgID: "org-1", Role: authz.RoleOrgAdmin}
	recruiter = authz.Actor{UserID: "rec-1", OrgID: "org-1", Role: authz.RoleRecruiter}
)

func TestCreateRequiresOrgManager(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	if _, err := svc.Create(ctx, recruiter, "Backend Engineer", "", nil); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("recruiter create: want ErrAccessDenied, got %v", err)
	}

	job, err := svc.Create(ctx, admin, "Backend Engineer", "Go services", []string{"go", "sql"})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if !job.IsActive {
		t.Fatalf("new job should start active")
	}
	if job.OrgID != "org-1" || job.CreatedBy != "admin-1" {
		t.Fatalf("ownership not recorded: %+v", job)
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	if _, err := svc.Create(context.Background(), admin, "", "", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty title: want ErrInvalidInput, got %v", err)
	}
}

func TestGetCrossOrgReadsNotFound(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	job, err := svc.Create(ctx, admin, "Backend Engineer", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	outsider := authz.Actor{UserID: "admin-x", OrgID: "org-2", Role: authz.RoleOrgAdmin}
	if _, err := svc.Get(ctx, outsider, job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-org get: want ErrNotFound, got %v", err)
	}
}

func TestAssignRecruitersAndClose(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	job, err := svc.Create(ctx, admin, "Backend Engineer", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AssignRecruiters(ctx, recruiter, job.ID, []string{"rec-1"}); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("recruiter self-assign: want ErrAccessDenied, got %v", err)
	}
	if err := svc.AssignRecruiters(ctx, admin, job.ID, []string{"rec-1", "rec-2"}); err != nil {
		t.Fatalf("assign recruiters: %v", err)
	}
	got, err := svc.Get(ctx, admin, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.AssignedRecruiters) != 2 {
		t.Fatalf("recruiters = %v, want two", got.AssignedRecruiters)
	}

	if err := svc.SetActive(ctx, admin, job.ID, false); err != nil {
		t.Fatalf("close job: %v", err)
	}
	got, _ = svc.Get(ctx, admin, job.ID)
	if got.IsActive {
		t.Fatalf("job should be closed")
	}
}

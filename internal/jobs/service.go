package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentedge-backend/internal/authz"
)

// Service contains business logic for jobs.
type Service struct {
	Repo Repo
}

// Create opens a new position in the actor's organization. Only org admins
// and senior HR may create jobs.
func (s *Service) Create(ctx context.Context, actor authz.Actor, title, description string, skills []string) (Job, error) {
	if strings.TrimSpace(title) == "" {
		return Job{}, ErrInvalidInput
	}
	if d := authz.CanManageOrg(actor, actor.OrgID); !d.Allowed {
		return Job{}, ErrAccessDenied
	}
	job := Job{
		ID:          uuid.NewString(),
		OrgID:       actor.OrgID,
		CreatedBy:   actor.UserID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Skills:      skills,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Get returns a job scoped to the actor's organization. Cross-org lookups
// surface as not-found.
func (s *Service) Get(ctx context.Context, actor authz.Actor, jobID string) (Job, error) {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.OrgID != actor.OrgID {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// List returns the actor's organization's jobs, newest first.
func (s *Service) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]Job, error) {
	return s.Repo.ListByOrg(ctx, actor.OrgID, limit, offset)
}

// AssignRecruiters replaces the job's recruiter list.
func (s *Service) AssignRecruiters(ctx context.Context, actor authz.Actor, jobID string, recruiterIDs []string) error {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if d := authz.CanManageOrg(actor, job.OrgID); !d.Allowed {
		if job.OrgID != actor.OrgID {
			return ErrNotFound
		}
		return ErrAccessDenied
	}
	return s.Repo.SetRecruiters(ctx, jobID, recruiterIDs)
}

// SetActive opens or closes the job for new applications.
func (s *Service) SetActive(ctx context.Context, actor authz.Actor, jobID string, active bool) error {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if d := authz.CanManageOrg(actor, job.OrgID); !d.Allowed {
		if job.OrgID != actor.OrgID {
			return ErrNotFound
		}
		return ErrAccessDenied
	}
	return s.Repo.SetActive(ctx, jobID, active)
}

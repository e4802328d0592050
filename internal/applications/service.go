package applications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"talentedge-backend/internal/authz"
	"talentedge-backend/internal/extract"
	"talentedge-backend/internal/jobs"
	"talentedge-backend/internal/shared/metrics"
	"talentedge-backend/internal/shared/telemetry"
	"talentedge-backend/internal/users"
)

// Service owns the application lifecycle state machine.
type Service struct {
	Repo  Repo
	Jobs  jobs.Repo
	Users users.Repo
}

// SubmitInput carries the applicant-provided payload.
type SubmitInput struct {
	ApplicationData map[string]any
	CoverLetter     string
	ResumeText      string
}

// Submit creates an application at pending. A second submit for the same
// (job, applicant) pair fails with ErrDuplicateApplication. No history
// entry is written for creation; the audit trail starts at the first
// status change.
func (s *Service) Submit(ctx context.Context, applicantID, jobID string, input SubmitInput) (Application, error) {
	if applicantID == "" || jobID == "" {
		return Application{}, ErrInvalidInput
	}
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	if !job.IsActive {
		return Application{}, ErrInvalidInput
	}
	exists, err := s.Repo.ExistsByJobAndApplicant(ctx, jobID, applicantID)
	if err != nil {
		return Application{}, err
	}
	if exists {
		return Application{}, ErrDuplicateApplication
	}

	now := time.Now().UTC()
	app := Application{
		ID:              uuid.NewString(),
		JobID:           jobID,
		ApplicantID:     applicantID,
		ApplicationData: input.ApplicationData,
		CoverLetter:     input.CoverLetter,
		Status:          StatusPending,
		AppliedAt:       now,
		UpdatedAt:       now,
	}
	if input.ResumeText != "" {
		score := extract.ScoreResume(job.Skills, input.ResumeText)
		app.ResumeScore = &score
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	metrics.IncApplicationSubmitted()
	telemetry.Info("application.submitted", map[string]any{
		"application_id": app.ID,
		"job_id":         jobID,
		"applicant_id":   applicantID,
	})
	return app, nil
}

// Transition moves the application to newStatus on behalf of the actor and
// appends a history entry, atomically. Illegal jumps fail with
// ErrInvalidTransition; cross-org applications surface as ErrNotFound.
func (s *Service) Transition(ctx context.Context, actor authz.Actor, applicationID string, newStatus Status, notes string) (Application, error) {
	if _, ok := ParseStatus(string(newStatus)); !ok {
		return Application{}, ErrInvalidTransition
	}
	app, job, err := s.resolveScoped(ctx, actor, applicationID)
	if err != nil {
		return Application{}, err
	}
	if d := authz.CanActOnJob(actor, job.OrgID, job.AssignedRecruiters); !d.Allowed {
		return Application{}, ErrAccessDenied
	}
	if !CanTransition(app.Status, newStatus) {
		metrics.IncTransitionRejected()
		return Application{}, ErrInvalidTransition
	}

	entry := StatusHistoryEntry{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		OldStatus:     app.Status,
		NewStatus:     newStatus,
		PerformedBy:   actor.UserID,
		Notes:         notes,
		PerformedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Transition(ctx, entry); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			metrics.IncTransitionRejected()
		}
		return Application{}, err
	}
	metrics.IncTransitionApplied()
	telemetry.Info("application.transition", map[string]any{
		"application_id": app.ID,
		"old_status":     string(app.Status),
		"new_status":     string(newStatus),
		"actor_id":       actor.UserID,
	})
	app.Status = newStatus
	app.UpdatedAt = entry.PerformedAt
	return app, nil
}

// AnnotateHistory writes an audit-only history entry without changing the
// application's status. Used by interview rescheduling, where the pipeline
// stage is unaffected but the change must be recorded.
func (s *Service) AnnotateHistory(ctx context.Context, actorID, applicationID string, status Status, notes string) error {
	entry := StatusHistoryEntry{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		OldStatus:     status,
		NewStatus:     status,
		PerformedBy:   actorID,
		Notes:         notes,
		PerformedAt:   time.Now().UTC(),
	}
	return s.Repo.AppendHistory(ctx, entry)
}

// History returns the application's audit trail newest-first, with each
// entry joined to the performing actor's name and email where resolvable.
func (s *Service) History(ctx context.Context, actor authz.Actor, applicationID string) ([]HistoryView, error) {
	_, job, err := s.resolveScoped(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if d := authz.CanActOnJob(actor, job.OrgID, job.AssignedRecruiters); !d.Allowed {
		return nil, ErrAccessDenied
	}

	entries, err := s.Repo.History(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	actorIDs := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.PerformedBy == "" {
			continue
		}
		if _, ok := seen[e.PerformedBy]; ok {
			continue
		}
		seen[e.PerformedBy] = struct{}{}
		actorIDs = append(actorIDs, e.PerformedBy)
	}
	resolved := map[string]users.User{}
	if len(actorIDs) > 0 {
		resolved, err = s.Users.GetByIDs(ctx, actorIDs)
		if err != nil {
			// Actor display names are best-effort; entries without a
			// resolvable actor simply omit name/email.
			telemetry.Warn("history.actor_lookup_failed", map[string]any{
				"application_id": applicationID,
				"error":          err.Error(),
			})
			resolved = map[string]users.User{}
		}
	}

	out := make([]HistoryView, 0, len(entries))
	for _, e := range entries {
		view := HistoryView{StatusHistoryEntry: e}
		if u, ok := resolved[e.PerformedBy]; ok {
			view.PerformedByName = u.Name
			view.PerformedByEmail = u.Email
		}
		out = append(out, view)
	}
	return out, nil
}

// Get returns an application scoped to the actor's organization.
func (s *Service) Get(ctx context.Context, actor authz.Actor, applicationID string) (Application, error) {
	app, job, err := s.resolveScoped(ctx, actor, applicationID)
	if err != nil {
		return Application{}, err
	}
	if d := authz.CanActOnJob(actor, job.OrgID, job.AssignedRecruiters); !d.Allowed {
		return Application{}, ErrAccessDenied
	}
	return app, nil
}

// ListByJob returns a job's applications for an authorized recruiter.
func (s *Service) ListByJob(ctx context.Context, actor authz.Actor, jobID string, limit, offset int) ([]Application, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if job.OrgID != actor.OrgID {
		return nil, ErrNotFound
	}
	if d := authz.CanActOnJob(actor, job.OrgID, job.AssignedRecruiters); !d.Allowed {
		return nil, ErrAccessDenied
	}
	return s.Repo.ListByJob(ctx, jobID, limit, offset)
}

// resolveScoped loads the application and its owning job, mapping anything
// outside the actor's organization to ErrNotFound.
func (s *Service) resolveScoped(ctx context.Context, actor authz.Actor, applicationID string) (Application, jobs.Job, error) {
	app, err := s.Repo.GetByID(ctx, applicationID)
	if err != nil {
		return Application{}, jobs.Job{}, err
	}
	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Application{}, jobs.Job{}, ErrNotFound
		}
		return Application{}, jobs.Job{}, err
	}
	if job.OrgID != actor.OrgID {
		return Application{}, jobs.Job{}, ErrNotFound
	}
	return app, job, nil
}

package interviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"talentedge-backend/internal/applications"
	"talentedge-backend/internal/authz"
	"talentedge-backend/internal/shared/telemetry"
)

// Service manages interview scheduling for applications. All authorization
// and organization scoping is delegated to the applications service, which
// resolves an application only within the actor's org.
type Service struct {
	Repo Repo
	Apps *applications.Service
}

// ScheduleInput carries recruiter-provided scheduling parameters.
type ScheduleInput struct {
	ScheduledAt     time.Time
	Interviewers    []string
	InterviewType   string
	MeetingPlatform string
	MeetingLink     string
	MeetingLocation string
	DurationMinutes int
	Notes           string
}

// Schedule creates an interview for the application and, when the pipeline
// permits, drives the application to interview_scheduled.
func (s *Service) Schedule(ctx context.Context, actor authz.Actor, applicationID string, input ScheduleInput) (Interview, error) {
	if input.ScheduledAt.IsZero() {
		return Interview{}, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 {
		input.DurationMinutes = 60
	}
	if input.InterviewType == "" {
		input.InterviewType = "technical"
	}

	app, err := s.Apps.Get(ctx, actor, applicationID)
	if err != nil {
		return Interview{}, translateAppErr(err)
	}

	now := time.Now().UTC()
	interview := Interview{
		ID:              uuid.NewString(),
		JobID:           app.JobID,
		ApplicationID:   app.ID,
		ApplicantID:     app.ApplicantID,
		ScheduledBy:     actor.UserID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		Interviewers:    input.Interviewers,
		InterviewType:   input.InterviewType,
		MeetingPlatform: input.MeetingPlatform,
		MeetingLink:     input.MeetingLink,
		MeetingLocation: input.MeetingLocation,
		DurationMinutes: input.DurationMinutes,
		Status:          StatusScheduled,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, interview); err != nil {
		return Interview{}, err
	}

	if applications.CanTransition(app.Status, applications.StatusInterviewScheduled) {
		if _, err := s.Apps.Transition(ctx, actor, app.ID, applications.StatusInterviewScheduled, "interview scheduled"); err != nil {
			telemetry.Warn("interview.pipeline_transition_failed", map[string]any{
				"interview_id":   interview.ID,
				"application_id": app.ID,
				"error":          err.Error(),
			})
		}
	}

	telemetry.Info("interview.scheduled", map[string]any{
		"interview_id":   interview.ID,
		"application_id": app.ID,
		"actor_id":       actor.UserID,
		"scheduled_at":   interview.ScheduledAt,
	})
	return interview, nil
}

// Reschedule moves an existing interview to a new time. The application's
// pipeline stage is unaffected by a time change, so only an audit-note
// history entry is written (old status equals new status).
func (s *Service) Reschedule(ctx context.Context, actor authz.Actor, interviewID string, newScheduledAt time.Time, durationMinutes int, notes string) (Interview, error) {
	if newScheduledAt.IsZero() {
		return Interview{}, ErrInvalidInput
	}

	interview, err := s.resolveScoped(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, err
	}
	if durationMinutes <= 0 {
		durationMinutes = interview.DurationMinutes
	}

	combined := appendNotes(interview.Notes, notes)
	now := time.Now().UTC()
	if err := s.Repo.Reschedule(ctx, interviewID, newScheduledAt.UTC(), durationMinutes, combined, now); err != nil {
		return Interview{}, err
	}

	auditNote := fmt.Sprintf("interview rescheduled to %s", newScheduledAt.UTC().Format(time.RFC3339))
	if notes != "" {
		auditNote += ": " + notes
	}
	if err := s.Apps.AnnotateHistory(ctx, actor.UserID, interview.ApplicationID, applications.StatusInterviewScheduled, auditNote); err != nil {
		telemetry.Error("interview.audit_note_failed", map[string]any{
			"interview_id":   interviewID,
			"application_id": interview.ApplicationID,
			"error":          err.Error(),
		})
	}

	interview.ScheduledAt = newScheduledAt.UTC()
	interview.DurationMinutes = durationMinutes
	interview.Status = StatusScheduled
	interview.Notes = combined
	interview.UpdatedAt = now
	return interview, nil
}

// UpdateStatus sets the interview's status directly. No side effects on
// the owning application.
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, interviewID string, newStatus Status, notes string) (Interview, error) {
	if _, ok := ParseStatus(string(newStatus)); !ok {
		return Interview{}, ErrInvalidInput
	}
	interview, err := s.resolveScoped(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, err
	}

	combined := appendNotes(interview.Notes, notes)
	now := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, interviewID, newStatus, combined, now); err != nil {
		return Interview{}, err
	}
	interview.Status = newStatus
	interview.Notes = combined
	interview.UpdatedAt = now
	return interview, nil
}

// ListByApplication returns an application's interviews, newest first.
func (s *Service) ListByApplication(ctx context.Context, actor authz.Actor, applicationID string) ([]Interview, error) {
	if _, err := s.Apps.Get(ctx, actor, applicationID); err != nil {
		return nil, translateAppErr(err)
	}
	return s.Repo.ListByApplication(ctx, applicationID)
}

// resolveScoped loads the interview and verifies the actor may act on the
// owning application. Cross-org interviews surface as ErrNotFound.
func (s *Service) resolveScoped(ctx context.Context, actor authz.Actor, interviewID string) (Interview, error) {
	interview, err := s.Repo.GetByID(ctx, interviewID)
	if err != nil {
		return Interview{}, err
	}
	if _, err := s.Apps.Get(ctx, actor, interview.ApplicationID); err != nil {
		return Interview{}, translateAppErr(err)
	}
	return interview, nil
}

func appendNotes(existing, addition string) string {
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition
	}
	return existing + "\n" + addition
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

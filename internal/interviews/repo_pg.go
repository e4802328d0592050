package interviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, interview Interview) error {
	const query = `
INSERT INTO interviews (id, job_id, application_id, applicant_id, scheduled_by, scheduled_at, interviewers, interview_type, meeting_platform, meeting_link, meeting_location, duration_minutes, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	interviewers := interview.Interviewers
	if interviewers == nil {
		interviewers = []string{}
	}
	raw, err := json.Marshal(interviewers)
	if err != nil {
		return err
	}
	var scheduledBy sql.NullString
	if interview.ScheduledBy != "" {
		scheduledBy = sql.NullString{String: interview.ScheduledBy, Valid: true}
	}
	_, err = r.DB.ExecContext(ctx, query,
		interview.ID,
		interview.JobID,
		interview.ApplicationID,
		interview.ApplicantID,
		scheduledBy,
		interview.ScheduledAt,
		raw,
		interview.InterviewType,
		interview.MeetingPlatform,
		interview.MeetingLink,
		interview.MeetingLocation,
		interview.DurationMinutes,
		string(interview.Status),
		interview.Notes,
		interview.CreatedAt,
		interview.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, interviewID string) (Interview, error) {
	const query = `
SELECT id, job_id, application_id, applicant_id, scheduled_by, scheduled_at, interviewers, interview_type, meeting_platform, meeting_link, meeting_location, duration_minutes, status, notes, created_at, updated_at
FROM interviews
WHERE id = $1
LIMIT 1`
	return scanInterview(r.DB.QueryRowContext(ctx, query, interviewID))
}

func (r *PGRepo) ListByApplication(ctx context.Context, applicationID string) ([]Interview, error) {
	const query = `
SELECT id, job_id, application_id, applicant_id, scheduled_by, scheduled_at, interviewers, interview_type, meeting_platform, meeting_link, meeting_location, duration_minutes, status, notes, created_at, updated_at
FROM interviews
WHERE application_id = $1
ORDER BY scheduled_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interview
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, interview)
	}
	return out, rows.Err()
}

func (r *PGRepo) Reschedule(ctx context.Context, interviewID string, scheduledAt time.Time, durationMinutes int, notes string, updatedAt time.Time) error {
	const query = `
UPDATE interviews
SET scheduled_at = $1, duration_minutes = $2, status = $3, notes = $4, updated_at = $5
WHERE id = $6`
	res, err := r.DB.ExecContext(ctx, query, scheduledAt, durationMinutes, string(StatusScheduled), notes, updatedAt, interviewID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, interviewID string, status Status, notes string, updatedAt time.Time) error {
	const query = `
UPDATE interviews
SET status = $1, notes = $2, updated_at = $3
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, string(status), notes, updatedAt, interviewID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanInterview(row interface{ Scan(dest ...any) error }) (Interview, error) {
	var interview Interview
	var scheduledBy sql.NullString
	var interviewersRaw []byte
	var status string
	err := row.Scan(
		&interview.ID,
		&interview.JobID,
		&interview.ApplicationID,
		&interview.ApplicantID,
		&scheduledBy,
		&interview.ScheduledAt,
		&interviewersRaw,
		&interview.InterviewType,
		&interview.MeetingPlatform,
		&interview.MeetingLink,
		&interview.MeetingLocation,
		&interview.DurationMinutes,
		&status,
		&interview.Notes,
		&interview.CreatedAt,
		&interview.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interview{}, ErrNotFound
		}
		return Interview{}, err
	}
	interview.Status = Status(status)
	if scheduledBy.Valid {
		interview.ScheduledBy = scheduledBy.String
	}
	if len(interviewersRaw) > 0 {
		if err := json.Unmarshal(interviewersRaw, &interview.Interviewers); err != nil {
			return Interview{}, err
		}
	}
	return interview, nil
}

var _ Repo = (*PGRepo)(nil)

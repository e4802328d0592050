package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (id, job_id, applicant_id, application_data, cover_letter, resume_score, ai_feedback, status, applied_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	data, err := marshalMap(app.ApplicationData)
	if err != nil {
		return err
	}
	feedback, err := marshalNullableMap(app.AIFeedback)
	if err != nil {
		return err
	}
	var score sql.NullFloat64
	if app.ResumeScore != nil {
		score = sql.NullFloat64{Float64: *app.ResumeScore, Valid: true}
	}
	_, err = r.DB.ExecContext(ctx, query,
		app.ID,
		app.JobID,
		app.ApplicantID,
		data,
		app.CoverLetter,
		score,
		feedback,
		string(app.Status),
		app.AppliedAt,
		app.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateApplication
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, applicationID string) (Application, error) {
	const query = `
SELECT id, job_id, applicant_id, application_data, cover_letter, resume_score, ai_feedback, status, applied_at, updated_at
FROM applications
WHERE id = $1
LIMIT 1`
	return scanApplication(r.DB.QueryRowContext(ctx, query, applicationID))
}

func (r *PGRepo) ExistsByJobAndApplicant(ctx context.Context, jobID, applicantID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, jobID, applicantID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, job_id, applicant_id, application_data, cover_letter, resume_score, ai_feedback, status, applied_at, updated_at
FROM applications
WHERE job_id = $1
ORDER BY applied_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, jobID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// Transition updates the application status and appends the history entry
// as a single transaction. The status update is guarded by the expected old
// status so concurrent transitions cannot both win.
func (r *PGRepo) Transition(ctx context.Context, entry StatusHistoryEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(entry.NewStatus), entry.PerformedAt, entry.ApplicationID, string(entry.OldStatus))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrStatusConflict
		return err
	}

	if err = insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepo) AppendHistory(ctx context.Context, entry StatusHistoryEntry) error {
	return insertHistory(ctx, r.DB, entry)
}

func (r *PGRepo) History(ctx context.Context, applicationID string) ([]StatusHistoryEntry, error) {
	const query = `
SELECT id, application_id, old_status, new_status, performed_by, notes, performed_at
FROM application_status_history
WHERE application_id = $1
ORDER BY performed_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusHistoryEntry
	for rows.Next() {
		var entry StatusHistoryEntry
		var performedBy sql.NullString
		var oldStatus, newStatus string
		if err := rows.Scan(
			&entry.ID,
			&entry.ApplicationID,
			&oldStatus,
			&newStatus,
			&performedBy,
			&entry.Notes,
			&entry.PerformedAt,
		); err != nil {
			return nil, err
		}
		entry.OldStatus = Status(oldStatus)
		entry.NewStatus = Status(newStatus)
		if performedBy.Valid {
			entry.PerformedBy = performedBy.String
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertHistory(ctx context.Context, db execer, entry StatusHistoryEntry) error {
	const query = `
INSERT INTO application_status_history (id, application_id, old_status, new_status, performed_by, notes, performed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var performedBy sql.NullString
	if entry.PerformedBy != "" {
		performedBy = sql.NullString{String: entry.PerformedBy, Valid: true}
	}
	_, err := db.ExecContext(ctx, query,
		entry.ID,
		entry.ApplicationID,
		string(entry.OldStatus),
		string(entry.NewStatus),
		performedBy,
		entry.Notes,
		entry.PerformedAt,
	)
	return err
}

func scanApplication(row interface{ Scan(dest ...any) error }) (Application, error) {
	var app Application
	var dataRaw, feedbackRaw []byte
	var score sql.NullFloat64
	var status string
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.ApplicantID,
		&dataRaw,
		&app.CoverLetter,
		&score,
		&feedbackRaw,
		&status,
		&app.AppliedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	app.Status = Status(status)
	if score.Valid {
		app.ResumeScore = &score.Float64
	}
	if len(dataRaw) > 0 {
		if err := json.Unmarshal(dataRaw, &app.ApplicationData); err != nil {
			return Application{}, err
		}
	}
	if len(feedbackRaw) > 0 {
		if err := json.Unmarshal(feedbackRaw, &app.AIFeedback); err != nil {
			return Application{}, err
		}
	}
	return app, nil
}

func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func marshalNullableMap(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

var _ Repo = (*PGRepo)(nil)

package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) CreateTestWithQuestions(ctx context.Context, t Test, questions []TestQuestion) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	allowed, err := marshalSlice(t.AllowedUsers)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO tests (id, org_id, created_by, title, duration_minutes, total_marks, passing_percentage, instructions, allowed_users, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID,
		t.OrgID,
		t.CreatedBy,
		t.Title,
		t.DurationMinutes,
		t.TotalMarks,
		t.PassingPercentage,
		t.Instructions,
		allowed,
		t.IsActive,
		t.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, q := range questions {
		opts, merr := marshalSlice(q.Options)
		if merr != nil {
			err = merr
			return err
		}
		var correct any
		if q.CorrectAnswer != nil {
			correct, merr = json.Marshal(q.CorrectAnswer)
			if merr != nil {
				err = merr
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO test_questions (id, test_id, order_index, question_text, question_type, options, correct_answer, marks, difficulty)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			q.ID,
			q.TestID,
			q.OrderIndex,
			q.QuestionText,
			q.QuestionType,
			opts,
			correct,
			q.Marks,
			q.Difficulty,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PGRepo) GetTest(ctx context.Context, testID string) (Test, error) {
	const query = `
SELECT id, org_id, created_by, title, duration_minutes, total_marks, passing_percentage, instructions, allowed_users, is_active, created_at
FROM tests
WHERE id = $1
LIMIT 1`
	return scanTest(r.DB.QueryRowContext(ctx, query, testID))
}

func (r *PGRepo) ListTestsByOrg(ctx context.Context, orgID string, limit, offset int) ([]Test, error) {
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
SELECT id, org_id, created_by, title, duration_minutes, total_marks, passing_percentage, instructions, allowed_users, is_active, created_at
FROM tests
WHERE org_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListQuestions(ctx context.Context, testID string) ([]TestQuestion, error) {
	const query = `
SELECT id, test_id, order_index, question_text, question_type, options, correct_answer, marks, difficulty
FROM test_questions
WHERE test_id = $1
ORDER BY order_index`
	rows, err := r.DB.QueryContext(ctx, query, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TestQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetQuestion(ctx context.Context, questionID string) (TestQuestion, error) {
	const query = `
SELECT id, test_id, order_index, question_text, question_type, options, correct_answer, marks, difficulty
FROM test_questions
WHERE id = $1
LIMIT 1`
	return scanQuestion(r.DB.QueryRowContext(ctx, query, questionID))
}

func (r *PGRepo) SetTestActive(ctx context.Context, testID string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tests SET is_active = $1 WHERE id = $2`, active, testID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) CreateAssignment(ctx context.Context, a TestAssignment) error {
	settings, err := marshalMap(a.ProctoringSettings)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO test_assignments (id, test_id, application_id, status, assigned_by, assigned_at, test_start_date, test_end_date, is_proctored, proctoring_settings)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID,
		a.TestID,
		a.ApplicationID,
		string(a.Status),
		a.AssignedBy,
		a.AssignedAt,
		a.TestStartDate,
		a.TestEndDate,
		a.IsProctored,
		settings,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyAssigned
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetAssignment(ctx context.Context, assignmentID string) (TestAssignment, error) {
	const query = assignmentColumns + ` WHERE id = $1 LIMIT 1`
	return scanAssignment(r.DB.QueryRowContext(ctx, query, assignmentID))
}

func (r *PGRepo) ListAssignmentsByTest(ctx context.Context, testID string) ([]TestAssignment, error) {
	const query = assignmentColumns + ` WHERE test_id = $1 ORDER BY assigned_at DESC`
	return r.queryAssignments(ctx, query, testID)
}

func (r *PGRepo) ListAssignmentsByApplication(ctx context.Context, applicationID string) ([]TestAssignment, error) {
	const query = assignmentColumns + ` WHERE application_id = $1 ORDER BY assigned_at DESC`
	return r.queryAssignments(ctx, query, applicationID)
}

func (r *PGRepo) queryAssignments(ctx context.Context, query string, arg any) ([]TestAssignment, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TestAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateAttempt(ctx context.Context, a TestAttempt) error {
	data, err := marshalMap(a.ProctoringData)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO test_attempts (id, assignment_id, test_id, application_id, applicant_id, started_at, status, is_evaluated, proctoring_data, violation_score)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID,
		a.AssignmentID,
		a.TestID,
		a.ApplicationID,
		a.ApplicantID,
		a.StartedAt,
		string(a.Status),
		a.IsEvaluated,
		data,
		a.ViolationScore,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAttemptInProgress
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetAttempt(ctx context.Context, attemptID string) (TestAttempt, error) {
	const query = `
SELECT id, assignment_id, test_id, application_id, applicant_id, started_at, submitted_at, status, total_score, percentage, is_passed, is_evaluated, proctoring_data, violation_score
FROM test_attempts
WHERE id = $1
LIMIT 1`
	return scanAttempt(r.DB.QueryRowContext(ctx, query, attemptID))
}

// SubmitAttempt closes the attempt and marks its assignment attempted in one
// transaction. The attempt update is guarded by status so a second submit
// cannot overwrite the recorded result.
func (r *PGRepo) SubmitAttempt(ctx context.Context, attemptID string, submittedAt time.Time, totalScore, percentage float64, isPassed bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var assignmentID string
	err = tx.QueryRowContext(ctx, `
UPDATE test_attempts
SET status = 'submitted', submitted_at = $2, total_score = $3, percentage = $4, is_passed = $5, is_evaluated = TRUE
WHERE id = $1 AND status = 'in_progress'
RETURNING assignment_id`,
		attemptID, submittedAt, totalScore, percentage, isPassed).Scan(&assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrAttemptClosed
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `UPDATE test_assignments SET status = 'attempted' WHERE id = $1`, assignmentID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepo) UpsertResponse(ctx context.Context, resp TestResponse) error {
	selected, err := marshalSlice(resp.SelectedOptions)
	if err != nil {
		return err
	}
	snapshot, err := marshalMap(resp.QuestionSnapshot)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO test_responses (attempt_id, question_id, selected_options, answer, question_snapshot, time_taken_seconds, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (attempt_id, question_id) DO UPDATE
SET selected_options = EXCLUDED.selected_options,
    answer = EXCLUDED.answer,
    question_snapshot = EXCLUDED.question_snapshot,
    time_taken_seconds = EXCLUDED.time_taken_seconds,
    updated_at = EXCLUDED.updated_at`,
		resp.AttemptID,
		resp.QuestionID,
		selected,
		resp.Answer,
		snapshot,
		resp.TimeTakenSeconds,
		resp.UpdatedAt,
	)
	return err
}

func (r *PGRepo) ListResponses(ctx context.Context, attemptID string) ([]TestResponse, error) {
	const query = `
SELECT attempt_id, question_id, selected_options, answer, question_snapshot, time_taken_seconds, updated_at
FROM test_responses
WHERE attempt_id = $1
ORDER BY updated_at`
	rows, err := r.DB.QueryContext(ctx, query, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TestResponse
	for rows.Next() {
		var resp TestResponse
		var selectedRaw, snapshotRaw []byte
		if err := rows.Scan(
			&resp.AttemptID,
			&resp.QuestionID,
			&selectedRaw,
			&resp.Answer,
			&snapshotRaw,
			&resp.TimeTakenSeconds,
			&resp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalInto(selectedRaw, &resp.SelectedOptions); err != nil {
			return nil, err
		}
		if err := unmarshalInto(snapshotRaw, &resp.QuestionSnapshot); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateProctoringData(ctx context.Context, attemptID string, data map[string]any, violationScore float64) error {
	raw, err := marshalMap(data)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
UPDATE test_attempts SET proctoring_data = $1, violation_score = $2 WHERE id = $3`,
		raw, violationScore, attemptID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const assignmentColumns = `
SELECT id, test_id, application_id, status, assigned_by, assigned_at, test_start_date, test_end_date, is_proctored, proctoring_settings
FROM test_assignments`

func scanTest(row interface{ Scan(dest ...any) error }) (Test, error) {
	var t Test
	var createdBy sql.NullString
	var allowedRaw []byte
	err := row.Scan(
		&t.ID,
		&t.OrgID,
		&createdBy,
		&t.Title,
		&t.DurationMinutes,
		&t.TotalMarks,
		&t.PassingPercentage,
		&t.Instructions,
		&allowedRaw,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrNotFound
		}
		return Test{}, err
	}
	if createdBy.Valid {
		t.CreatedBy = createdBy.String
	}
	if err := unmarshalInto(allowedRaw, &t.AllowedUsers); err != nil {
		return Test{}, err
	}
	return t, nil
}

func scanQuestion(row interface{ Scan(dest ...any) error }) (TestQuestion, error) {
	var q TestQuestion
	var optionsRaw, correctRaw []byte
	err := row.Scan(
		&q.ID,
		&q.TestID,
		&q.OrderIndex,
		&q.QuestionText,
		&q.QuestionType,
		&optionsRaw,
		&correctRaw,
		&q.Marks,
		&q.Difficulty,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestQuestion{}, ErrNotFound
		}
		return TestQuestion{}, err
	}
	if err := unmarshalInto(optionsRaw, &q.Options); err != nil {
		return TestQuestion{}, err
	}
	if len(correctRaw) > 0 {
		if err := json.Unmarshal(correctRaw, &q.CorrectAnswer); err != nil {
			return TestQuestion{}, err
		}
	}
	return q, nil
}

func scanAssignment(row interface{ Scan(dest ...any) error }) (TestAssignment, error) {
	var a TestAssignment
	var assignedBy sql.NullString
	var status string
	var settingsRaw []byte
	err := row.Scan(
		&a.ID,
		&a.TestID,
		&a.ApplicationID,
		&status,
		&assignedBy,
		&a.AssignedAt,
		&a.TestStartDate,
		&a.TestEndDate,
		&a.IsProctored,
		&settingsRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestAssignment{}, ErrNotFound
		}
		return TestAssignment{}, err
	}
	a.Status = AssignmentStatus(status)
	if assignedBy.Valid {
		a.AssignedBy = assignedBy.String
	}
	if err := unmarshalInto(settingsRaw, &a.ProctoringSettings); err != nil {
		return TestAssignment{}, err
	}
	return a, nil
}

func scanAttempt(row interface{ Scan(dest ...any) error }) (TestAttempt, error) {
	var a TestAttempt
	var submittedAt sql.NullTime
	var totalScore, percentage sql.NullFloat64
	var isPassed sql.NullBool
	var status string
	var dataRaw []byte
	err := row.Scan(
		&a.ID,
		&a.AssignmentID,
		&a.TestID,
		&a.ApplicationID,
		&a.ApplicantID,
		&a.StartedAt,
		&submittedAt,
		&status,
		&totalScore,
		&percentage,
		&isPassed,
		&a.IsEvaluated,
		&dataRaw,
		&a.ViolationScore,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestAttempt{}, ErrNotFound
		}
		return TestAttempt{}, err
	}
	a.Status = AttemptStatus(status)
	if submittedAt.Valid {
		a.SubmittedAt = &submittedAt.Time
	}
	if totalScore.Valid {
		a.TotalScore = &totalScore.Float64
	}
	if percentage.Valid {
		a.Percentage = &percentage.Float64
	}
	if isPassed.Valid {
		a.IsPassed = &isPassed.Bool
	}
	if err := unmarshalInto(dataRaw, &a.ProctoringData); err != nil {
		return TestAttempt{}, err
	}
	return a, nil
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

func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func marshalSlice(s []string) ([]byte, error) {
	if s == nil {
		s = []string{}
	}
	return json.Marshal(s)
}

func unmarshalInto(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

var _ Repo = (*PGRepo)(nil)

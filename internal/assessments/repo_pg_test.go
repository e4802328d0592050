package assessments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateTestWithQuestionsIsAtomic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	test := Test{ID: "test-1", OrgID: "org-1", Title: "Go", TotalMarks: 10, IsActive: true, CreatedAt: now}
	questions := []TestQuestion{
		{ID: "q1", TestID: "test-1", QuestionText: "one", Marks: 4},
		{ID: "q2", TestID: "test-1", OrderIndex: 1, QuestionText: "two", Marks: 6},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tests").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO test_questions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO test_questions").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if err := repo.CreateTestWithQuestions(context.Background(), test, questions); err == nil {
		t.Fatalf("expected error when a question insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSubmitAttemptClosesAssignmentInSameTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	submittedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE test_attempts").
		WithArgs("att-1", submittedAt, 40.0, 40.0, false).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id"}).AddRow("asg-1"))
	mock.ExpectExec("UPDATE test_assignments SET status = 'attempted'").
		WithArgs("asg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SubmitAttempt(context.Background(), "att-1", submittedAt, 40, 40, false); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSubmitAttemptAlreadyClosedRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	submittedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE test_attempts").
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id"}))
	mock.ExpectRollback()

	if err := repo.SubmitAttempt(context.Background(), "att-1", submittedAt, 40, 40, false); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("want ErrAttemptClosed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertResponseUsesOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	resp := TestResponse{
		AttemptID:        "att-1",
		QuestionID:       "q1",
		SelectedOptions:  []string{"a"},
		QuestionSnapshot: map[string]any{"questionText": "one"},
		UpdatedAt:        time.Now().UTC(),
	}

	mock.ExpectExec("ON CONFLICT \\(attempt_id, question_id\\) DO UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.UpsertResponse(context.Background(), resp); err != nil {
		t.Fatalf("UpsertResponse: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetAttemptScansNullableResultFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	started := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "assignment_id", "test_id", "application_id", "applicant_id",
		"started_at", "submitted_at", "status", "total_score", "percentage",
		"is_passed", "is_evaluated", "proctoring_data", "violation_score",
	}).AddRow("att-1", "asg-1", "test-1", "app-1", "user-1",
		started, nil, "in_progress", nil, nil,
		nil, false, []byte(`{}`), 0.0)
	mock.ExpectQuery("FROM test_attempts").
		WithArgs("att-1").
		WillReturnRows(rows)

	attempt, err := repo.GetAttempt(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if attempt.SubmittedAt != nil || attempt.TotalScore != nil || attempt.Percentage != nil || attempt.IsPassed != nil {
		t.Fatalf("in-progress attempt should have nil result fields: %+v", attempt)
	}
	if attempt.Status != AttemptInProgress {
		t.Fatalf("status = %s, want in_progress", attempt.Status)
	}
}

func TestPGRepoGetAttemptNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("FROM test_attempts").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetAttempt(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

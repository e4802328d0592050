package assessments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used in tests and DB-less dev mode.
type MemoryRepo struct {
	mu          sync.RWMutex
	tests       map[string]Test
	questions   map[string][]TestQuestion
	assignments map[string]TestAssignment
	attempts    map[string]TestAttempt
	responses   map[string]map[string]TestResponse
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tests:       make(map[string]Test),
		questions:   make(map[string][]TestQuestion),
		assignments: make(map[string]TestAssignment),
		attempts:    make(map[string]TestAttempt),
		responses:   make(map[string]map[string]TestResponse),
	}
}

func (r *MemoryRepo) CreateTestWithQuestions(ctx context.Context, t Test, questions []TestQuestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[t.ID] = t
	qs := append([]TestQuestion(nil), questions...)
	sort.Slice(qs, func(i, j int) bool { return qs[i].OrderIndex < qs[j].OrderIndex })
	r.questions[t.ID] = qs
	return nil
}

func (r *MemoryRepo) GetTest(ctx context.Context, testID string) (Test, error) {
	if err := ctx.Err(); err != nil {
		return Test{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tests[testID]
	if !ok {
		return Test{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListTestsByOrg(ctx context.Context, orgID string, limit, offset int) ([]Test, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Test
	for _, t := range r.tests {
		if t.OrgID == orgID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) ListQuestions(ctx context.Context, testID string) ([]TestQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]TestQuestion(nil), r.questions[testID]...), nil
}

func (r *MemoryRepo) GetQuestion(ctx context.Context, questionID string) (TestQuestion, error) {
	if err := ctx.Err(); err != nil {
		return TestQuestion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, qs := range r.questions {
		for _, q := range qs {
			if q.ID == questionID {
				return q, nil
			}
		}
	}
	return TestQuestion{}, ErrNotFound
}

func (r *MemoryRepo) SetTestActive(ctx context.Context, testID string, active bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[testID]
	if !ok {
		return ErrNotFound
	}
	t.IsActive = active
	r.tests[testID] = t
	return nil
}

func (r *MemoryRepo) CreateAssignment(ctx context.Context, a TestAssignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments {
		if existing.TestID == a.TestID && existing.ApplicationID == a.ApplicationID {
			return ErrAlreadyAssigned
		}
	}
	r.assignments[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetAssignment(ctx context.Context, assignmentID string) (TestAssignment, error) {
	if err := ctx.Err(); err != nil {
		return TestAssignment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[assignmentID]
	if !ok {
		return TestAssignment{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListAssignmentsByTest(ctx context.Context, testID string) ([]TestAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []TestAssignment
	for _, a := range r.assignments {
		if a.TestID == testID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (r *MemoryRepo) ListAssignmentsByApplication(ctx context.Context, applicationID string) ([]TestAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []TestAssignment
	for _, a := range r.assignments {
		if a.ApplicationID == applicationID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (r *MemoryRepo) CreateAttempt(ctx context.Context, a TestAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attempts {
		if existing.AssignmentID == a.AssignmentID && existing.Status == AttemptInProgress {
			return ErrAttemptInProgress
		}
	}
	r.attempts[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetAttempt(ctx context.Context, attemptID string) (TestAttempt, error) {
	if err := ctx.Err(); err != nil {
		return TestAttempt{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[attemptID]
	if !ok {
		return TestAttempt{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) SubmitAttempt(ctx context.Context, attemptID string, submittedAt time.Time, totalScore, percentage float64, isPassed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	if a.Status != AttemptInProgress {
		return ErrAttemptClosed
	}
	a.Status = AttemptSubmitted
	a.SubmittedAt = &submittedAt
	a.TotalScore = &totalScore
	a.Percentage = &percentage
	a.IsPassed = &isPassed
	a.IsEvaluated = true
	r.attempts[attemptID] = a

	asg, ok := r.assignments[a.AssignmentID]
	if ok {
		asg.Status = AssignmentAttempted
		r.assignments[a.AssignmentID] = asg
	}
	return nil
}

func (r *MemoryRepo) UpsertResponse(ctx context.Context, resp TestResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byQuestion, ok := r.responses[resp.AttemptID]
	if !ok {
		byQuestion = make(map[string]TestResponse)
		r.responses[resp.AttemptID] = byQuestion
	}
	byQuestion[resp.QuestionID] = resp
	return nil
}

func (r *MemoryRepo) ListResponses(ctx context.Context, attemptID string) ([]TestResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []TestResponse
	for _, resp := range r.responses[attemptID] {
		out = append(out, resp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepo) UpdateProctoringData(ctx context.Context, attemptID string, data map[string]any, violationScore float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	a.ProctoringData = data
	a.ViolationScore = violationScore
	r.attempts[attemptID] = a
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

package applications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo used in tests and DB-less dev mode.
type MemoryRepo struct {
	mu      sync.RWMutex
	apps    map[string]Application
	history map[string][]StatusHistoryEntry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		apps:    make(map[string]Application),
		history: make(map[string][]StatusHistoryEntry),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return ErrDuplicateApplication
		}
	}
	r.apps[app.ID] = app
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, applicationID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[applicationID]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) ExistsByJobAndApplicant(ctx context.Context, jobID, applicantID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, app := range r.apps {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for _, app := range r.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Transition(ctx context.Context, entry StatusHistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[entry.ApplicationID]
	if !ok {
		return ErrNotFound
	}
	if app.Status != entry.OldStatus {
		return ErrStatusConflict
	}
	app.Status = entry.NewStatus
	app.UpdatedAt = entry.PerformedAt
	r.apps[entry.ApplicationID] = app
	r.history[entry.ApplicationID] = append(r.history[entry.ApplicationID], entry)
	return nil
}

func (r *MemoryRepo) AppendHistory(ctx context.Context, entry StatusHistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[entry.ApplicationID] = append(r.history[entry.ApplicationID], entry)
	return nil
}

func (r *MemoryRepo) History(ctx context.Context, applicationID string) ([]StatusHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := append([]StatusHistoryEntry(nil), r.history[applicationID]...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].PerformedAt.After(entries[j].PerformedAt) })
	return entries, nil
}

var _ Repo = (*MemoryRepo)(nil)

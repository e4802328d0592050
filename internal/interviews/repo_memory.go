package interviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	interviews map[string]Interview
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{interviews: make(map[string]Interview)}
}

func (r *MemoryRepo) Create(ctx context.Context, interview Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interviews[interview.ID] = interview
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, interviewID string) (Interview, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	interview, ok := r.interviews[interviewID]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return interview, nil
}

func (r *MemoryRepo) ListByApplication(ctx context.Context, applicationID string) ([]Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Interview
	for _, interview := range r.interviews {
		if interview.ApplicationID == applicationID {
			out = append(out, interview)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (r *MemoryRepo) Reschedule(ctx context.Context, interviewID string, scheduledAt time.Time, durationMinutes int, notes string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	interview, ok := r.interviews[interviewID]
	if !ok {
		return ErrNotFound
	}
	interview.ScheduledAt = scheduledAt
	interview.DurationMinutes = durationMinutes
	interview.Status = StatusScheduled
	interview.Notes = notes
	interview.UpdatedAt = updatedAt
	r.interviews[interviewID] = interview
	return nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, interviewID string, status Status, notes string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	interview, ok := r.interviews[interviewID]
	if !ok {
		return ErrNotFound
	}
	interview.Status = status
	interview.Notes = notes
	interview.UpdatedAt = updatedAt
	r.interviews[interviewID] = interview
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

package memory

import (
	"context"
	"time"

	"farmsim/internal/app/ports"
)

type RunRepo struct {
	store *Store
	now   func() time.Time
}

func NewRunRepo(store *Store) RunRepo {
	return RunRepo{store: store, now: time.Now}
}

func (r RunRepo) Create(_ context.Context, run ports.RunRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.runs[run.RunID]; exists {
		return ports.ErrConflict
	}
	now := r.now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	run.UpdatedAt = now
	r.store.runs[run.RunID] = run
	return nil
}

func (r RunRepo) UpdateProgress(_ context.Context, runID string, lastTick int, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return ports.ErrNotFound
	}
	run.LastTick = lastTick
	run.Status = status
	run.UpdatedAt = r.now().UTC()
	r.store.runs[runID] = run
	return nil
}

func (r RunRepo) GetByRunID(_ context.Context, runID string) (ports.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	return run, nil
}

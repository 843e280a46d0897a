package memory

import (
	"context"

	"farmsim/internal/domain/weather"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, runID string, events []weather.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range events {
		e.RunID = runID
		r.store.events[runID] = append(r.store.events[runID], e)
	}
	return nil
}

// ListByRunID returns up to limit events, newest first.
func (r EventRepo) ListByRunID(_ context.Context, runID string, limit int) ([]weather.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := r.store.events[runID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]weather.Event, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

package memory

import (
	"context"
	"errors"
	"testing"

	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
)

func TestEventRepoListsNewestFirst(t *testing.T) {
	store := NewStore()
	repo := NewEventRepo(store)
	ctx := context.Background()

	err := repo.Append(ctx, "run-a", []weather.Event{
		{Tick: 1, Seq: 1, Type: weather.EventRain},
		{Tick: 1, Seq: 2, Type: weather.EventMovement},
		{Tick: 2, Seq: 1, Type: weather.EventDissipation},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ListByRunID(ctx, "run-a", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Type != weather.EventDissipation || got[1].Type != weather.EventMovement {
		t.Fatalf("unexpected events %+v", got)
	}
	if got[0].RunID != "run-a" {
		t.Fatalf("expected run id to be stamped, got %q", got[0].RunID)
	}
	other, _ := repo.ListByRunID(ctx, "run-b", 10)
	if len(other) != 0 {
		t.Fatalf("expected no events for another run, got %d", len(other))
	}
}

func TestRunRepoLifecycle(t *testing.T) {
	store := NewStore()
	repo := NewRunRepo(store)
	ctx := context.Background()

	if err := repo.Create(ctx, ports.RunRecord{RunID: "r1", Status: ports.RunStatusRunning}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, ports.RunRecord{RunID: "r1"}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := repo.UpdateProgress(ctx, "r1", 7, ports.RunStatusHalted); err != nil {
		t.Fatalf("update: %v", err)
	}
	run, err := repo.GetByRunID(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if run.LastTick != 7 || run.Status != ports.RunStatusHalted || run.StartedAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}
	if err := repo.UpdateProgress(ctx, "missing", 1, ports.RunStatusRunning); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	store := NewStore()
	events := NewEventRepo(store)
	runs := NewRunRepo(store)
	tx := NewTxManager(store)
	ctx := context.Background()

	_ = runs.Create(ctx, ports.RunRecord{RunID: "r1", Status: ports.RunStatusRunning})
	_ = events.Append(ctx, "r1", []weather.Event{{Tick: 1, Seq: 1}})

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		_ = events.Append(ctx, "r1", []weather.Event{{Tick: 2, Seq: 1}})
		_ = events.Append(ctx, "r2", []weather.Event{{Tick: 2, Seq: 1}})
		_ = runs.UpdateProgress(ctx, "r1", 2, ports.RunStatusRunning)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := events.ListByRunID(ctx, "r1", 0)
	if len(got) != 1 {
		t.Fatalf("expected rollback to 1 event, got %d", len(got))
	}
	if other, _ := events.ListByRunID(ctx, "r2", 0); len(other) != 0 {
		t.Fatalf("expected r2 events rolled back, got %d", len(other))
	}
	run, _ := runs.GetByRunID(ctx, "r1")
	if run.LastTick != 0 {
		t.Fatalf("expected progress rolled back, got %d", run.LastTick)
	}
}

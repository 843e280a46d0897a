package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
)

func requireDB(t *testing.T) (context.Context, RunRepo, EventRepo, TxManager) {
	t.Helper()
	dsn := os.Getenv("FARMSIM_DB_DSN")
	if dsn == "" {
		t.Skip("FARMSIM_DB_DSN is required for integration test")
	}
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return ctx, NewRunRepo(db), NewEventRepo(db), NewTxManager(db)
}

func TestRunRepo_CreateUpdateGet(t *testing.T) {
	ctx, runs, _, _ := requireDB(t)
	runID := "it-run-" + time.Now().Format("150405.000000")

	if err := runs.Create(ctx, ports.RunRecord{RunID: runID, Seed: 7, Width: 8, Height: 6, StartYearTick: 3, Status: ports.RunStatusRunning}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := runs.Create(ctx, ports.RunRecord{RunID: runID, Status: ports.RunStatusRunning}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := runs.UpdateProgress(ctx, runID, 12, ports.RunStatusHalted); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := runs.GetByRunID(ctx, runID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastTick != 12 || got.Status != ports.RunStatusHalted || got.Seed != 7 || got.StartYearTick != 3 {
		t.Fatalf("unexpected run %+v", got)
	}
	if _, err := runs.GetByRunID(ctx, runID+"-missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventRepo_AppendInTxAndList(t *testing.T) {
	ctx, runs, events, tx := requireDB(t)
	runID := "it-events-" + time.Now().Format("150405.000000")
	if err := runs.Create(ctx, ports.RunRecord{RunID: runID, Status: ports.RunStatusRunning}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	now := time.Now().UTC()
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := events.Append(txCtx, runID, []weather.Event{
			{Tick: 1, Seq: 1, Type: weather.EventRain, OccurredAt: now, Payload: map[string]any{"amount": 800}},
			{Tick: 1, Seq: 2, Type: weather.EventMovement, OccurredAt: now, Payload: map[string]any{"to_tile_id": 4}},
		}); err != nil {
			return err
		}
		return runs.UpdateProgress(txCtx, runID, 1, ports.RunStatusRunning)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, err := events.ListByRunID(ctx, runID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Type != weather.EventMovement {
		t.Fatalf("expected newest-first events, got %+v", got)
	}
	if got[1].Payload["amount"] != float64(800) {
		t.Fatalf("expected amount 800 in payload, got %v", got[1].Payload["amount"])
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx, runs, events, tx := requireDB(t)
	runID := "it-rollback-" + time.Now().Format("150405.000000")
	if err := runs.Create(ctx, ports.RunRecord{RunID: runID, Status: ports.RunStatusRunning}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		_ = events.Append(txCtx, runID, []weather.Event{{Tick: 1, Seq: 1, Type: weather.EventRain, OccurredAt: time.Now()}})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := events.ListByRunID(ctx, runID, 0)
	if len(got) != 0 {
		t.Fatalf("expected rollback, got %d events", len(got))
	}
}

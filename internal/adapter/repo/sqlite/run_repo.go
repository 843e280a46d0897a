package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"farmsim/internal/app/ports"
)

type runRow struct {
	RunID         string    `db:"run_id"`
	Seed          int64     `db:"seed"`
	Width         int       `db:"width"`
	Height        int       `db:"height"`
	StartYearTick int       `db:"start_year_tick"`
	LastTick      int       `db:"last_tick"`
	Status        string    `db:"status"`
	StartedAt     time.Time `db:"started_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) RunRepo {
	return RunRepo{db: db}
}

func (r RunRepo) Create(ctx context.Context, run ports.RunRecord) error {
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	_, err := sqlx.NamedExecContext(ctx, r.db.ext(ctx),
		`INSERT INTO simulation_runs (run_id, seed, width, height, start_year_tick, last_tick, status, started_at, updated_at)
		 VALUES (:run_id, :seed, :width, :height, :start_year_tick, :last_tick, :status, :started_at, :updated_at)`,
		runRow{
			RunID:         run.RunID,
			Seed:          run.Seed,
			Width:         run.Width,
			Height:        run.Height,
			StartYearTick: run.StartYearTick,
			LastTick:      run.LastTick,
			Status:        run.Status,
			StartedAt:     run.StartedAt.UTC(),
			UpdatedAt:     now,
		})
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ports.ErrConflict
	}
	return err
}

func (r RunRepo) UpdateProgress(ctx context.Context, runID string, lastTick int, status string) error {
	res, err := r.db.ext(ctx).ExecContext(ctx,
		`UPDATE simulation_runs SET last_tick = ?, status = ?, updated_at = ? WHERE run_id = ?`,
		lastTick, status, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r RunRepo) GetByRunID(ctx context.Context, runID string) (ports.RunRecord, error) {
	var row runRow
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &row,
		`SELECT run_id, seed, width, height, start_year_tick, last_tick, status, started_at, updated_at
		 FROM simulation_runs WHERE run_id = ?`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return ports.RunRecord{
		RunID:         row.RunID,
		Seed:          row.Seed,
		Width:         row.Width,
		Height:        row.Height,
		StartYearTick: row.StartYearTick,
		LastTick:      row.LastTick,
		Status:        row.Status,
		StartedAt:     row.StartedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

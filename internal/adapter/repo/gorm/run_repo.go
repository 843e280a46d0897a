package gormrepo

import (
	"context"
	"errors"
	"time"

	"farmsim/internal/adapter/repo/gorm/model"
	"farmsim/internal/app/ports"

	"gorm.io/gorm"
)

type RunRepo struct {
	db *gorm.DB
}

func NewRunRepo(db *gorm.DB) RunRepo {
	return RunRepo{db: db}
}

func (r RunRepo) Create(ctx context.Context, run ports.RunRecord) error {
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	row := model.SimulationRun{
		RunID:         run.RunID,
		Seed:          run.Seed,
		Width:         int32(run.Width),
		Height:        int32(run.Height),
		StartYearTick: int32(run.StartYearTick),
		LastTick:      int32(run.LastTick),
		Status:        run.Status,
		StartedAt:     run.StartedAt,
		UpdatedAt:     now,
	}
	err := getDBFromCtx(ctx, r.db).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrConflict
	}
	return err
}

func (r RunRepo) UpdateProgress(ctx context.Context, runID string, lastTick int, status string) error {
	res := getDBFromCtx(ctx, r.db).
		Model(&model.SimulationRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"last_tick":  lastTick,
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r RunRepo) GetByRunID(ctx context.Context, runID string) (ports.RunRecord, error) {
	var row model.SimulationRun
	err := getDBFromCtx(ctx, r.db).Where(&model.SimulationRun{RunID: runID}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.RunRecord{}, err
	}
	return ports.RunRecord{
		RunID:         row.RunID,
		Seed:          row.Seed,
		Width:         int(row.Width),
		Height:        int(row.Height),
		StartYearTick: int(row.StartYearTick),
		LastTick:      int(row.LastTick),
		Status:        row.Status,
		StartedAt:     row.StartedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

package ports

import (
	"context"
	"time"

	"farmsim/internal/domain/weather"
)

type EventRepository interface {
	Append(ctx context.Context, runID string, events []weather.Event) error
	ListByRunID(ctx context.Context, runID string, limit int) ([]weather.Event, error)
}

type RunRecord struct {
	RunID         string
	Seed          int64
	Width         int
	Height        int
	StartYearTick int
	LastTick      int
	Status        string
	StartedAt     time.Time
	UpdatedAt     time.Time
}

const (
	RunStatusRunning = "running"
	RunStatusHalted  = "halted"
)

type RunRepository interface {
	Create(ctx context.Context, run RunRecord) error
	UpdateProgress(ctx context.Context, runID string, lastTick int, status string) error
	GetByRunID(ctx context.Context, runID string) (RunRecord, error)
}

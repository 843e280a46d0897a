package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"farmsim/internal/adapter/repo/gorm/model"
	"farmsim/internal/domain/weather"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, runID string, events []weather.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.TickEvent, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", e.Type, err)
		}
		rows = append(rows, model.TickEvent{
			RunID:      runID,
			Tick:       int32(e.Tick),
			Seq:        int32(e.Seq),
			Type:       string(e.Type),
			OccurredAt: e.OccurredAt,
			Payload:    b,
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]weather.Event, error) {
	rows := []model.TickEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where(&model.TickEvent{RunID: runID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "seq"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]weather.Event, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, weather.Event{
			RunID:      row.RunID,
			Tick:       int(row.Tick),
			Seq:        int(row.Seq),
			Type:       weather.EventType(row.Type),
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}

package sqliterepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"farmsim/internal/domain/weather"
)

type eventRow struct {
	RunID      string    `db:"run_id"`
	Tick       int       `db:"tick"`
	Seq        int       `db:"seq"`
	Type       string    `db:"type"`
	OccurredAt time.Time `db:"occurred_at"`
	Payload    string    `db:"payload"`
}

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, runID string, events []weather.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", e.Type, err)
		}
		rows = append(rows, eventRow{
			RunID:      runID,
			Tick:       e.Tick,
			Seq:        e.Seq,
			Type:       string(e.Type),
			OccurredAt: e.OccurredAt.UTC(),
			Payload:    string(b),
		})
	}
	_, err := sqlx.NamedExecContext(ctx, r.db.ext(ctx),
		`INSERT INTO tick_events (run_id, tick, seq, type, occurred_at, payload)
		 VALUES (:run_id, :tick, :seq, :type, :occurred_at, :payload)`, rows)
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]weather.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []eventRow
	err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows,
		`SELECT run_id, tick, seq, type, occurred_at, payload FROM tick_events
		 WHERE run_id = ? ORDER BY seq DESC LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]weather.Event, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		_ = json.Unmarshal([]byte(row.Payload), &payload)
		out = append(out, weather.Event{
			RunID:      row.RunID,
			Tick:       row.Tick,
			Seq:        row.Seq,
			Type:       weather.EventType(row.Type),
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}

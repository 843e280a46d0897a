package journal

import (
	"sync"
	"time"

	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
)

// Buffer records sink notifications as journal events until drained.
type Buffer struct {
	mu     sync.Mutex
	tick   int
	seq    int
	now    func() time.Time
	events []weather.Event
}

func NewBuffer() *Buffer {
	return &Buffer{now: time.Now}
}

// SetTick stamps subsequent events with tick. Sequence numbers keep counting
// across ticks so they stay unique for the whole run.
func (b *Buffer) SetTick(tick int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick = tick
}

// Drain returns the buffered events in emission order and empties the buffer.
func (b *Buffer) Drain() []weather.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *Buffer) record(typ weather.EventType, payload map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.events = append(b.events, weather.Event{
		Tick:       b.tick,
		Seq:        b.seq,
		Type:       typ,
		OccurredAt: b.now().UTC(),
		Payload:    payload,
	})
}

func (b *Buffer) CloudRained(cloudID, tileID, amount int) {
	b.record(weather.EventRain, map[string]any{"cloud_id": cloudID, "tile_id": tileID, "amount": amount})
}

func (b *Buffer) CloudMoved(cloudID, water, fromTileID, toTileID int) {
	b.record(weather.EventMovement, map[string]any{
		"cloud_id":     cloudID,
		"water":        water,
		"from_tile_id": fromTileID,
		"to_tile_id":   toTileID,
	})
}

func (b *Buffer) SunlightReading(tileID, sunlight int) {
	b.record(weather.EventSunlightReading, map[string]any{"tile_id": tileID, "sunlight": sunlight})
}

func (b *Buffer) CloudsMerged(movingID, stationaryID, mergedID, water, duration, tileID int) {
	b.record(weather.EventMerge, map[string]any{
		"moving_id":     movingID,
		"stationary_id": stationaryID,
		"merged_id":     mergedID,
		"water":         water,
		"duration":      duration,
		"tile_id":       tileID,
	})
}

func (b *Buffer) CloudStuckInVillage(cloudID, tileID int) {
	b.record(weather.EventStuckInVillage, map[string]any{"cloud_id": cloudID, "tile_id": tileID})
}

func (b *Buffer) CloudDissipated(cloudID, tileID int) {
	b.record(weather.EventDissipation, map[string]any{"cloud_id": cloudID, "tile_id": tileID})
}

func (b *Buffer) CloudFinalPosition(cloudID, tileID, sunlight int) {
	b.record(weather.EventFinalPosition, map[string]any{"cloud_id": cloudID, "tile_id": tileID, "sunlight": sunlight})
}

func (b *Buffer) SoilMoistureBelowThreshold(fields, plantations int) {
	b.record(weather.EventMoistureBelowThreshold, map[string]any{"fields": fields, "plantations": plantations})
}

var _ ports.EventJournal = (*Buffer)(nil)

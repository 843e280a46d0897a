package weather

import "time"

type EventType string

const (
	EventRain                   EventType = "cloud_rain"
	EventMovement               EventType = "cloud_movement"
	EventSunlightReading        EventType = "sunlight_reading"
	EventMerge                  EventType = "cloud_merge"
	EventStuckInVillage         EventType = "cloud_stuck_in_village"
	EventDissipation            EventType = "cloud_dissipation"
	EventFinalPosition          EventType = "cloud_final_position"
	EventMoistureBelowThreshold EventType = "soil_moisture_below_threshold"
)

// Event is the journal record of one engine notification.
type Event struct {
	RunID      string         `json:"run_id,omitempty"`
	Tick       int            `json:"tick"`
	Seq        int            `json:"seq"`
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

package simulation

import (
	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"
)

type AdvanceResult struct {
	FromTick int        `json:"from_tick"`
	ToTick   int        `json:"to_tick"`
	YearTick int        `json:"year_tick"`
	Events   int        `json:"events"`
	Clouds   int        `json:"clouds"`
	Skipped  []Rejected `json:"skipped,omitempty"`
}

// Rejected is a scheduled incident step that was refused without halting
// the world, e.g. a cloud aimed at a village.
type Rejected struct {
	IncidentID int    `json:"incident_id"`
	TileID     int    `json:"tile_id"`
	Reason     string `json:"reason"`
}

type TileView struct {
	world.Tile
	Cloud *weather.Cloud `json:"cloud,omitempty"`
}

type Status struct {
	RunID       string `json:"run_id"`
	Tick        int    `json:"tick"`
	YearTick    int    `json:"year_tick"`
	Clouds      int    `json:"clouds"`
	NextCloudID int    `json:"next_cloud_id"`
	Pending     int    `json:"pending_incidents"`
	Halted      bool   `json:"halted"`
	HaltReason  string `json:"halt_reason,omitempty"`
}

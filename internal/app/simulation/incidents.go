package simulation

import (
	"errors"
	"fmt"
	"slices"

	"farmsim/internal/app/environment"
	"farmsim/internal/domain/weather"
)

// Incident is an externally scheduled change applied after the environment
// phase of its tick.
type Incident interface {
	IncidentID() int
	DueTick() int
	apply(r *Runner, res *AdvanceResult) error
}

// CloudCreation places one cloud on each listed tile, in ascending tile id.
type CloudCreation struct {
	ID       int   `json:"id"`
	Tick     int   `json:"tick"`
	TileIDs  []int `json:"tile_ids"`
	Amount   int   `json:"amount"`
	Duration int   `json:"duration"`
}

func (c CloudCreation) IncidentID() int { return c.ID }
func (c CloudCreation) DueTick() int    { return c.Tick }

func (c CloudCreation) apply(r *Runner, res *AdvanceResult) error {
	tiles := slices.Clone(c.TileIDs)
	slices.Sort(tiles)
	for _, tileID := range tiles {
		_, err := r.controller.CreateCloud(tileID, c.Duration, c.Amount)
		switch {
		case err == nil:
		case errors.Is(err, environment.ErrVillageTile), errors.Is(err, weather.ErrInvalidCloud):
			res.Skipped = append(res.Skipped, Rejected{IncidentID: c.ID, TileID: tileID, Reason: err.Error()})
		default:
			return fmt.Errorf("incident %d: %w", c.ID, err)
		}
	}
	return nil
}

// CityExpansion turns a tile into part of a village.
type CityExpansion struct {
	ID     int `json:"id"`
	Tick   int `json:"tick"`
	TileID int `json:"tile_id"`
}

func (c CityExpansion) IncidentID() int { return c.ID }
func (c CityExpansion) DueTick() int    { return c.Tick }

func (c CityExpansion) apply(r *Runner, _ *AdvanceResult) error {
	if err := r.controller.VillageCreatedAt(c.TileID); err != nil {
		return fmt.Errorf("incident %d: %w", c.ID, err)
	}
	return nil
}

func sortIncidents(in []Incident) {
	slices.SortStableFunc(in, func(a, b Incident) int {
		if a.DueTick() != b.DueTick() {
			return a.DueTick() - b.DueTick()
		}
		return a.IncidentID() - b.IncidentID()
	})
}

package environment

import (
	"farmsim/internal/app/ports"
	"farmsim/internal/domain/world"
)

// SoilEvaporation dries every farmable tile at the start of a tick.
type SoilEvaporation struct {
	GrowingLoss int
	FallowLoss  int
}

func DefaultSoilEvaporation() SoilEvaporation {
	return SoilEvaporation{GrowingLoss: 100, FallowLoss: 70}
}

func (e SoilEvaporation) ReduceMoisture(grid *world.Grid, _ world.TickInfo, events ports.CloudEventSink) {
	fields, plantations := 0, 0
	for _, tile := range grid.FarmableTiles() {
		soil := tile.Soil
		loss := e.FallowLoss
		if soil.Growing {
			loss = e.GrowingLoss
		}
		soil.ReduceMoisture(loss)
		if !soil.BelowThreshold() {
			continue
		}
		if tile.Category == world.TileField {
			fields++
		} else {
			plantations++
		}
	}
	if fields+plantations > 0 {
		events.SoilMoistureBelowThreshold(fields, plantations)
	}
}

// SeasonalSunlight sets farmable tiles to the baseline of the current year tick.
type SeasonalSunlight struct{}

func (SeasonalSunlight) ResetSunlight(grid *world.Grid, info world.TickInfo) {
	base := world.BaseSunlight(info.YearTick)
	for _, tile := range grid.FarmableTiles() {
		tile.Soil.Sunlight = base
	}
}

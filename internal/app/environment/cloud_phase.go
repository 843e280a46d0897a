package environment

import (
	"fmt"

	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"
)

// runCloudPhase gives every cloud exactly one turn per tick. Clouds are taken
// in waves of ascending id; a cloud born from a merge has a higher id than
// anything in the current wave and is picked up by the next one.
func (c *Controller) runCloudPhase() error {
	processed := make(map[int]struct{}, c.clouds.Len())
	// Every merge removes one cloud, so at most Len() waves can find work.
	maxWaves := c.clouds.Len() + 1

	for wave := 0; ; wave++ {
		batch := c.unprocessed(processed)
		if len(batch) == 0 {
			return nil
		}
		if wave >= maxWaves {
			return fmt.Errorf("%w: wave %d still holds %d clouds", ErrCloudPhaseDiverged, wave, len(batch))
		}
		for _, cloud := range batch {
			// An earlier cloud of this wave may have merged into it.
			if c.clouds.Contains(cloud) {
				if err := c.turn(cloud); err != nil {
					return err
				}
			}
			processed[cloud.ID] = struct{}{}
		}
	}
}

func (c *Controller) unprocessed(processed map[int]struct{}) []*weather.Cloud {
	active := c.clouds.Active()
	out := active[:0]
	for _, cloud := range active {
		if _, done := processed[cloud.ID]; !done {
			out = append(out, cloud)
		}
	}
	return out
}

func (c *Controller) turn(cloud *weather.Cloud) error {
	cloud.ResetQuota()
	for cloud.MovementQuota > 0 {
		if cloud.CanRain() {
			empty, err := c.rain(cloud)
			if err != nil {
				return err
			}
			if empty {
				c.events.CloudDissipated(cloud.ID, cloud.Location)
				c.clouds.Remove(cloud)
				return nil
			}
		}
		moved, err := c.step(cloud)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}
	}
	return nil
}

// rain drops water on the cloud's tile and reports whether the cloud is empty.
func (c *Controller) rain(cloud *weather.Cloud) (bool, error) {
	tile, err := c.grid.Tile(cloud.Location)
	if err != nil {
		return false, err
	}
	if tile.IsVillage() {
		return false, fmt.Errorf("cloud %d on tile %d: %w", cloud.ID, tile.ID, ErrCloudOnVillage)
	}

	soil, farmable, err := soilOf(tile)
	if err != nil {
		return false, err
	}
	amount := cloud.Water
	if farmable {
		if soil.Saturated() {
			return false, nil
		}
		amount = min(soil.RequiredRain(), cloud.Water)
		soil.IncreaseMoisture(amount)
	}

	empty := cloud.Drain(amount)
	if amount > 0 {
		c.events.CloudRained(cloud.ID, tile.ID, amount)
	}
	return empty, nil
}

// step moves the cloud one tile along the airflow. It reports false when the
// cloud stopped: no downstream tile, stuck in a village or merged.
func (c *Controller) step(cloud *weather.Cloud) (bool, error) {
	current, err := c.grid.Tile(cloud.Location)
	if err != nil {
		return false, err
	}
	next := c.grid.AirflowNeighbour(current)
	if next == nil {
		return false, nil
	}

	soil, farmable, err := soilOf(current)
	if err != nil {
		return false, err
	}
	if farmable {
		soil.ReduceSunlight(weather.TraversalSunlightCost)
	}
	c.events.CloudMoved(cloud.ID, cloud.Water, current.ID, next.ID)
	if farmable {
		c.events.SunlightReading(current.ID, soil.Sunlight)
	}

	if next.IsVillage() {
		c.events.CloudStuckInVillage(cloud.ID, next.ID)
		c.clouds.Remove(cloud)
		return false, nil
	}
	if occupant, ok := c.clouds.ByTile(next.ID); ok {
		if _, err := c.merge(cloud, occupant); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := c.clouds.Move(cloud, next.ID); err != nil {
		return false, err
	}
	cloud.SpendQuota()
	return true, nil
}

// merge replaces both clouds with their union on the stationary cloud's tile.
func (c *Controller) merge(moving, stationary *weather.Cloud) (*weather.Cloud, error) {
	merged := weather.Merge(*moving, *stationary, c.ids.Next())
	c.events.CloudsMerged(moving.ID, stationary.ID, merged.ID, merged.Water, merged.Duration, merged.Location)
	c.clouds.Remove(stationary)
	c.clouds.Remove(moving)
	if err := c.clouds.Add(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// finalize expires clouds first so that a cloud dissipating this tick does
// not shade its last tile.
func (c *Controller) finalize() error {
	for _, cloud := range c.clouds.Active() {
		if cloud.Age() {
			c.events.CloudDissipated(cloud.ID, cloud.Location)
			c.clouds.Remove(cloud)
		}
	}

	for _, tileID := range c.clouds.OccupiedTiles() {
		cloud, _ := c.clouds.ByTile(tileID)
		tile, err := c.grid.Tile(tileID)
		if err != nil {
			return err
		}
		soil, farmable, err := soilOf(tile)
		if err != nil {
			return err
		}
		if !farmable {
			continue
		}
		soil.ReduceSunlight(weather.EndOfTickSunlightLoss)
		c.events.CloudFinalPosition(cloud.ID, tileID, soil.Sunlight)
	}
	return nil
}

// soilOf returns the soil of a farmable tile. A farmable category without
// soil means the grid was built wrong.
func soilOf(tile *world.Tile) (*world.Soil, bool, error) {
	if !tile.Category.Farmable() {
		return nil, false, nil
	}
	soil, ok := tile.Farmable()
	if !ok {
		return nil, false, fmt.Errorf("tile %d (%s): %w", tile.ID, tile.Category, world.ErrNotFarmable)
	}
	return soil, true, nil
}

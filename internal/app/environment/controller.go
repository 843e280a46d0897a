package environment

import (
	"errors"
	"fmt"

	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"
)

var (
	// ErrIntegrity marks every failure that means the world or the engine
	// broke an invariant. The tick cannot be retried.
	ErrIntegrity = errors.New("environment integrity violation")

	ErrCloudOnVillage     = errors.New("cloud asked to rain on a village tile")
	ErrCloudPhaseDiverged = errors.New("cloud phase did not converge")
	ErrVillageTile        = errors.New("cannot place a cloud on a village tile")
)

// MoistureReducer applies the start-of-tick soil drying.
type MoistureReducer interface {
	ReduceMoisture(grid *world.Grid, info world.TickInfo, events ports.CloudEventSink)
}

// SunlightBaseline resets farmable tiles to the seasonal sunlight before
// clouds shade them.
type SunlightBaseline interface {
	ResetSunlight(grid *world.Grid, info world.TickInfo)
}

type Config struct {
	Grid     *world.Grid
	Events   ports.CloudEventSink
	Moisture MoistureReducer
	Sunlight SunlightBaseline
	// Clouds seeds the store, e.g. from a parsed map.
	Clouds []weather.Cloud
}

// Controller owns the cloud store and mutates the grid's soil during a tick.
// It is not safe for concurrent use; callers serialize access per world.
type Controller struct {
	grid     *world.Grid
	events   ports.CloudEventSink
	moisture MoistureReducer
	sunlight SunlightBaseline
	clouds   *weather.Store
	ids      *weather.IDAllocator
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.Grid == nil {
		return nil, fmt.Errorf("%w: nil grid", world.ErrInvalidGrid)
	}
	if cfg.Events == nil {
		cfg.Events = ports.NopCloudEvents{}
	}
	if cfg.Moisture == nil {
		cfg.Moisture = DefaultSoilEvaporation()
	}
	if cfg.Sunlight == nil {
		cfg.Sunlight = SeasonalSunlight{}
	}
	c := &Controller{
		grid:     cfg.Grid,
		events:   cfg.Events,
		moisture: cfg.Moisture,
		sunlight: cfg.Sunlight,
		clouds:   weather.NewStore(),
	}
	for _, seed := range cfg.Clouds {
		if err := seed.Validate(); err != nil {
			return nil, err
		}
		tile, err := cfg.Grid.Tile(seed.Location)
		if err != nil {
			return nil, err
		}
		if tile.IsVillage() {
			return nil, fmt.Errorf("cloud %d on tile %d: %w", seed.ID, tile.ID, ErrVillageTile)
		}
		cloud := seed
		if err := c.clouds.Add(&cloud); err != nil {
			return nil, err
		}
	}
	c.ids = weather.NewIDAllocator(c.clouds.MaxID())
	return c, nil
}

// RunTick applies the four environment phases in order: soil drying,
// sunlight baseline, cloud turns and end-of-tick finalization.
func (c *Controller) RunTick(info world.TickInfo) error {
	c.moisture.ReduceMoisture(c.grid, info, c.events)
	c.sunlight.ResetSunlight(c.grid, info)
	if err := c.runCloudPhase(); err != nil {
		return fmt.Errorf("tick %d: %w: %w", info.Tick, ErrIntegrity, err)
	}
	if err := c.finalize(); err != nil {
		return fmt.Errorf("tick %d: %w: %w", info.Tick, ErrIntegrity, err)
	}
	return nil
}

// CreateCloud spawns a cloud on the tile. An occupant is merged with the new
// cloud at once, the new cloud counting as the one that moved in.
func (c *Controller) CreateCloud(tileID, duration, amount int) (weather.Cloud, error) {
	tile, err := c.grid.Tile(tileID)
	if err != nil {
		return weather.Cloud{}, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	if tile.IsVillage() {
		return weather.Cloud{}, fmt.Errorf("tile %d: %w", tileID, ErrVillageTile)
	}
	if amount <= 0 {
		return weather.Cloud{}, fmt.Errorf("%w: cloud needs water, got %d L", weather.ErrInvalidCloud, amount)
	}
	created, err := weather.NewCloud(c.ids.Peek(), tileID, duration, amount)
	if err != nil {
		return weather.Cloud{}, err
	}
	created.ID = c.ids.Next()

	occupant, ok := c.clouds.ByTile(tileID)
	if !ok {
		if err := c.clouds.Add(&created); err != nil {
			return weather.Cloud{}, fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
		return created, nil
	}
	merged, err := c.merge(&created, occupant)
	if err != nil {
		return weather.Cloud{}, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	return *merged, nil
}

// VillageCreatedAt turns the tile into a village. A cloud resting on it
// dissipates.
func (c *Controller) VillageCreatedAt(tileID int) error {
	tile, err := c.grid.Tile(tileID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	tile.BecomeVillage()
	if cloud, ok := c.clouds.ByTile(tileID); ok {
		c.events.CloudDissipated(cloud.ID, tileID)
		c.clouds.Remove(cloud)
	}
	return nil
}

// Clouds returns the active clouds in ascending id order.
func (c *Controller) Clouds() []weather.Cloud {
	return c.clouds.Snapshot()
}

func (c *Controller) CloudAt(tileID int) (weather.Cloud, bool) {
	cloud, ok := c.clouds.ByTile(tileID)
	if !ok {
		return weather.Cloud{}, false
	}
	return *cloud, true
}

// Tile returns a copy of the tile's current state.
func (c *Controller) Tile(tileID int) (world.Tile, error) {
	tile, err := c.grid.Tile(tileID)
	if err != nil {
		return world.Tile{}, err
	}
	return tile.Clone(), nil
}

func (c *Controller) NextCloudID() int {
	return c.ids.Peek()
}

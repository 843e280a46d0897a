package environment

import (
	"fmt"
	"testing"

	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"
)

type recordedEvent struct {
	kind string
	args []int
}

func (e recordedEvent) String() string {
	return fmt.Sprintf("%s%v", e.kind, e.args)
}

type recordingSink struct {
	events []recordedEvent
}

func (r *recordingSink) add(kind string, args ...int) {
	r.events = append(r.events, recordedEvent{kind: kind, args: args})
}

func (r *recordingSink) CloudRained(cloudID, tileID, amount int) {
	r.add("rain", cloudID, tileID, amount)
}

func (r *recordingSink) CloudMoved(cloudID, water, fromTileID, toTileID int) {
	r.add("move", cloudID, water, fromTileID, toTileID)
}

func (r *recordingSink) SunlightReading(tileID, sunlight int) {
	r.add("sunlight", tileID, sunlight)
}

func (r *recordingSink) CloudsMerged(movingID, stationaryID, mergedID, water, duration, tileID int) {
	r.add("merge", movingID, stationaryID, mergedID, water, duration, tileID)
}

func (r *recordingSink) CloudStuckInVillage(cloudID, tileID int) {
	r.add("stuck", cloudID, tileID)
}

func (r *recordingSink) CloudDissipated(cloudID, tileID int) {
	r.add("dissipate", cloudID, tileID)
}

func (r *recordingSink) CloudFinalPosition(cloudID, tileID, sunlight int) {
	r.add("final", cloudID, tileID, sunlight)
}

func (r *recordingSink) SoilMoistureBelowThreshold(fields, plantations int) {
	r.add("dry", fields, plantations)
}

func (r *recordingSink) kinds(kind string) []recordedEvent {
	var out []recordedEvent
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

var _ ports.CloudEventSink = (*recordingSink)(nil)

type noDrying struct{}

func (noDrying) ReduceMoisture(*world.Grid, world.TickInfo, ports.CloudEventSink) {}

// tileDef describes one tile of a west-to-east strip; airflow points east
// unless last is set.
type tileDef struct {
	category world.TileCategory
	capacity int
	moisture int
	last     bool
}

func stripGrid(t *testing.T, defs ...tileDef) *world.Grid {
	t.Helper()
	tiles := make([]world.Tile, 0, len(defs))
	for i, s := range defs {
		tile := world.Tile{ID: i, Position: world.Point{X: i, Y: 0}, Category: s.category}
		if !s.last {
			tile.Airflow = world.DirectionPtr(world.East)
		}
		if s.category.Farmable() {
			tile.Soil = &world.Soil{Capacity: s.capacity, Moisture: s.moisture}
		}
		tiles = append(tiles, tile)
	}
	g, err := world.NewGrid(tiles)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func road() tileDef { return tileDef{category: world.TileRoad} }

func field(capacity, moisture int) tileDef {
	return tileDef{category: world.TileField, capacity: capacity, moisture: moisture}
}

func end(s tileDef) tileDef {
	s.last = true
	return s
}

func newTestController(t *testing.T, grid *world.Grid, clouds ...weather.Cloud) (*Controller, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	c, err := NewController(Config{Grid: grid, Events: sink, Moisture: noDrying{}, Clouds: clouds})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, sink
}

func cloudAt(id, tileID, duration, water int) weather.Cloud {
	return weather.Cloud{ID: id, Location: tileID, Duration: duration, Water: water, MovementQuota: weather.MaxMovementQuota}
}

func assertSingleOccupancy(t *testing.T, c *Controller) {
	t.Helper()
	seen := map[int]int{}
	for _, cloud := range c.Clouds() {
		if other, ok := seen[cloud.Location]; ok {
			t.Fatalf("clouds %d and %d share tile %d", other, cloud.ID, cloud.Location)
		}
		seen[cloud.Location] = cloud.ID
		if cloud.MovementQuota < 0 || cloud.MovementQuota > weather.MaxMovementQuota {
			t.Fatalf("cloud %d quota out of range: %d", cloud.ID, cloud.MovementQuota)
		}
		if cloud.Water < 0 {
			t.Fatalf("cloud %d has negative water %d", cloud.ID, cloud.Water)
		}
	}
}

package world

import (
	"errors"
	"fmt"
)

var ErrInvalidGrid = errors.New("invalid grid")

// Grid stores tiles in a dense arena indexed by tile id.
type Grid struct {
	tiles   []Tile
	byPoint map[Point]int
}

// NewGrid validates the tiles and indexes them. Ids must cover 0..len-1
// exactly once, positions must be unique and every farmable category must
// carry soil.
func NewGrid(tiles []Tile) (*Grid, error) {
	g := &Grid{
		tiles:   make([]Tile, len(tiles)),
		byPoint: make(map[Point]int, len(tiles)),
	}
	seen := make([]bool, len(tiles))
	for _, t := range tiles {
		if t.ID < 0 || t.ID >= len(tiles) || seen[t.ID] {
			return nil, fmt.Errorf("%w: tile id %d out of range or duplicated", ErrInvalidGrid, t.ID)
		}
		if !t.Category.Valid() {
			return nil, fmt.Errorf("%w: tile %d has category %q", ErrInvalidGrid, t.ID, t.Category)
		}
		if t.Category.Farmable() && t.Soil == nil {
			return nil, fmt.Errorf("tile %d (%s): %w", t.ID, t.Category, ErrNotFarmable)
		}
		if prev, dup := g.byPoint[t.Position]; dup {
			return nil, fmt.Errorf("%w: tiles %d and %d share position %v", ErrInvalidGrid, prev, t.ID, t.Position)
		}
		if t.Soil != nil {
			soil := *t.Soil
			t.Soil = &soil
		}
		seen[t.ID] = true
		g.tiles[t.ID] = t
		g.byPoint[t.Position] = t.ID
	}
	return g, nil
}

func (g *Grid) Len() int {
	return len(g.tiles)
}

// Tile returns the tile with the given id. Ids are validated when the grid
// is loaded, so ErrUnknownTile means a caller broke that contract.
func (g *Grid) Tile(id int) (*Tile, error) {
	if id < 0 || id >= len(g.tiles) {
		return nil, fmt.Errorf("tile %d: %w", id, ErrUnknownTile)
	}
	return &g.tiles[id], nil
}

func (g *Grid) TileAt(p Point) (*Tile, bool) {
	id, ok := g.byPoint[p]
	if !ok {
		return nil, false
	}
	return &g.tiles[id], true
}

// AirflowNeighbour returns the tile downstream of t, or nil when the tile has
// no airflow or the airflow points off the map.
func (g *Grid) AirflowNeighbour(t *Tile) *Tile {
	if t == nil || t.Airflow == nil {
		return nil
	}
	dx, dy, ok := t.Airflow.Delta()
	if !ok {
		return nil
	}
	next, ok := g.TileAt(t.Position.Add(dx, dy))
	if !ok {
		return nil
	}
	return next
}

// FarmableTiles returns the farmable tiles in ascending id order.
func (g *Grid) FarmableTiles() []*Tile {
	out := make([]*Tile, 0, len(g.tiles))
	for i := range g.tiles {
		if _, ok := g.tiles[i].Farmable(); ok {
			out = append(out, &g.tiles[i])
		}
	}
	return out
}

// Tiles returns copies of all tiles in id order.
func (g *Grid) Tiles() []Tile {
	out := make([]Tile, len(g.tiles))
	for i, t := range g.tiles {
		out[i] = t.Clone()
	}
	return out
}

func (t Tile) Clone() Tile {
	if t.Soil != nil {
		soil := *t.Soil
		t.Soil = &soil
	}
	return t
}

func CategoryCounts(g *Grid) map[TileCategory]int {
	out := make(map[TileCategory]int)
	for _, t := range g.tiles {
		out[t.Category]++
	}
	return out
}

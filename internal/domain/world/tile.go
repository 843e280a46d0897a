package world

import "errors"

type TileCategory string

const (
	TileVillage    TileCategory = "village"
	TileField      TileCategory = "field"
	TilePlantation TileCategory = "plantation"
	TileRoad       TileCategory = "road"
	TileMeadow     TileCategory = "meadow"
	TileFarmstead  TileCategory = "farmstead"
	TileForest     TileCategory = "forest"
)

// Farmable reports whether tiles of this category carry soil.
func (c TileCategory) Farmable() bool {
	return c == TileField || c == TilePlantation
}

func (c TileCategory) Valid() bool {
	switch c {
	case TileVillage, TileField, TilePlantation, TileRoad, TileMeadow, TileFarmstead, TileForest:
		return true
	default:
		return false
	}
}

var (
	ErrUnknownTile = errors.New("unknown tile")
	ErrNotFarmable = errors.New("farmable category without soil")
)

// Soil is the mutable state of a farmable tile.
type Soil struct {
	Capacity          int  `json:"moisture_capacity"`
	Moisture          int  `json:"current_moisture"`
	Sunlight          int  `json:"current_sunlight"`
	Growing           bool `json:"growing"`
	PreferredMoisture int  `json:"preferred_moisture,omitempty"`
}

// NewSoil returns soil saturated to its capacity.
func NewSoil(capacity int) *Soil {
	return &Soil{Capacity: capacity, Moisture: capacity}
}

func (s *Soil) ReduceSunlight(amount int) {
	s.Sunlight = max(0, s.Sunlight-amount)
}

func (s *Soil) IncreaseMoisture(amount int) {
	s.Moisture = min(s.Capacity, s.Moisture+amount)
}

func (s *Soil) ReduceMoisture(amount int) {
	s.Moisture = max(0, s.Moisture-amount)
}

// RequiredRain is the amount of water needed to saturate the soil.
func (s *Soil) RequiredRain() int {
	return s.Capacity - s.Moisture
}

func (s *Soil) Saturated() bool {
	return s.Moisture == s.Capacity
}

func (s *Soil) BelowThreshold() bool {
	return s.Growing && s.Moisture < s.PreferredMoisture
}

type Tile struct {
	ID       int          `json:"id"`
	Position Point        `json:"position"`
	Category TileCategory `json:"category"`
	FarmID   *int         `json:"farm_id,omitempty"`
	Airflow  *Direction   `json:"airflow,omitempty"`
	Soil     *Soil        `json:"soil,omitempty"`
}

// Farmable returns the tile's soil when the tile can hold moisture and
// sunlight. Categories are only trusted together with their soil.
func (t *Tile) Farmable() (*Soil, bool) {
	if t.Soil == nil || !t.Category.Farmable() {
		return nil, false
	}
	return t.Soil, true
}

func (t *Tile) IsVillage() bool {
	return t.Category == TileVillage
}

// BecomeVillage clears the tile's soil readings and reclassifies it.
func (t *Tile) BecomeVillage() {
	if t.Soil != nil {
		t.Soil.Sunlight = 0
		t.Soil.Moisture = 0
	}
	t.Category = TileVillage
}

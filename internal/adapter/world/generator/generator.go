// Package generator builds farm maps from layered simplex noise: a land layer
// picks tile categories, a soil layer sets moisture capacity and crops, and a
// wind layer sets each tile's airflow.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"
)

var ErrInvalidConfig = errors.New("invalid generator config")

type Config struct {
	Width  int
	Height int
	Seed   int64 // 0 picks a random seed
	// RoadSpacing lays a road every n rows and columns; 0 disables the grid.
	RoadSpacing   int
	InitialClouds int
	CloudWaterMin int
	CloudWaterMax int
	// CloudDurations is sampled for each initial cloud; -1 means infinite.
	CloudDurations []int
}

func DefaultConfig() Config {
	return Config{
		Width:          24,
		Height:         16,
		RoadSpacing:    8,
		InitialClouds:  6,
		CloudWaterMin:  1500,
		CloudWaterMax:  9000,
		CloudDurations: []int{4, 6, 8, weather.InfiniteDuration},
	}
}

// Map is a generated world ready to seed an environment controller.
type Map struct {
	Seed   int64
	Width  int
	Height int
	Grid   *world.Grid
	Clouds []weather.Cloud
}

func Generate(cfg Config) (Map, error) {
	def := DefaultConfig()
	if cfg.Width == 0 {
		cfg.Width = def.Width
	}
	if cfg.Height == 0 {
		cfg.Height = def.Height
	}
	if cfg.CloudWaterMin <= 0 {
		cfg.CloudWaterMin = def.CloudWaterMin
	}
	if cfg.CloudWaterMax < cfg.CloudWaterMin {
		cfg.CloudWaterMax = max(def.CloudWaterMax, cfg.CloudWaterMin)
	}
	if len(cfg.CloudDurations) == 0 {
		cfg.CloudDurations = def.CloudDurations
	}
	if cfg.Width < 1 || cfg.Height < 1 || cfg.InitialClouds < 0 {
		return Map{}, fmt.Errorf("%w: %dx%d with %d clouds", ErrInvalidConfig, cfg.Width, cfg.Height, cfg.InitialClouds)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	land := opensimplex.NewNormalized(seed)
	soil := opensimplex.NewNormalized(seed + 1)
	wind := opensimplex.NewNormalized(seed + 2)

	tiles := make([]world.Tile, 0, cfg.Width*cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)
			tile := world.Tile{
				ID:       y*cfg.Width + x,
				Position: world.Point{X: x, Y: y},
				Category: deriveCategory(octaveNoise(land, fx, fy, 3, 0.11, 0.5)),
			}
			if tile.Category != world.TileVillage && onRoad(x, y, cfg.RoadSpacing) {
				tile.Category = world.TileRoad
			}
			if tile.Category.Farmable() {
				tile.Soil = deriveSoil(tile.Category, octaveNoise(soil, fx, fy, 2, 0.2, 0.5))
			}
			if d, ok := deriveAirflow(octaveNoise(wind, fx, fy, 2, 0.05, 0.5), tile.Position, cfg.Width, cfg.Height); ok {
				tile.Airflow = world.DirectionPtr(d)
			}
			tiles = append(tiles, tile)
		}
	}

	grid, err := world.NewGrid(tiles)
	if err != nil {
		return Map{}, fmt.Errorf("generated grid: %w", err)
	}
	return Map{
		Seed:   seed,
		Width:  cfg.Width,
		Height: cfg.Height,
		Grid:   grid,
		Clouds: placeClouds(grid, cfg, rand.New(rand.NewSource(seed))),
	}, nil
}

// deriveCategory maps the land layer to a category. Villages sit on the
// highest ground, forests in the hollows.
func deriveCategory(v float64) world.TileCategory {
	switch {
	case v < 0.30:
		return world.TileForest
	case v < 0.38:
		return world.TileMeadow
	case v < 0.58:
		return world.TileField
	case v < 0.66:
		return world.TilePlantation
	case v < 0.70:
		return world.TileFarmstead
	case v < 0.74:
		return world.TileMeadow
	default:
		return world.TileVillage
	}
}

func onRoad(x, y, spacing int) bool {
	if spacing <= 0 {
		return false
	}
	return x%spacing == spacing/2 || y%spacing == spacing/2
}

func deriveSoil(category world.TileCategory, v float64) *world.Soil {
	base, span := 600, 1400
	if category == world.TilePlantation {
		base, span = 900, 1600
	}
	capacity := base + int(math.Round(v*float64(span)/10))*10
	s := world.NewSoil(capacity)
	if v > 0.45 {
		s.Growing = true
		s.PreferredMoisture = capacity * 6 / 10
	}
	return s
}

// deriveAirflow turns the wind layer into one of eight directions. Tiles whose
// airflow would leave the map get none, so clouds stall at the border.
func deriveAirflow(v float64, p world.Point, width, height int) (world.Direction, bool) {
	n := len(world.Directions)
	idx := int(math.Floor(v*float64(n)*2)) % n
	d := world.Directions[idx]
	dx, dy, _ := d.Delta()
	next := p.Add(dx, dy)
	if next.X < 0 || next.Y < 0 || next.X >= width || next.Y >= height {
		return "", false
	}
	return d, true
}

func placeClouds(grid *world.Grid, cfg Config, rng *rand.Rand) []weather.Cloud {
	candidates := make([]int, 0, grid.Len())
	for _, t := range grid.Tiles() {
		if !t.IsVillage() {
			candidates = append(candidates, t.ID)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	n := min(cfg.InitialClouds, len(candidates))
	clouds := make([]weather.Cloud, 0, n)
	for i := 0; i < n; i++ {
		water := cfg.CloudWaterMin
		if span := cfg.CloudWaterMax - cfg.CloudWaterMin; span > 0 {
			water += rng.Intn(span + 1)
		}
		clouds = append(clouds, weather.Cloud{
			ID:            i,
			Water:         water,
			Duration:      cfg.CloudDurations[rng.Intn(len(cfg.CloudDurations))],
			Location:      candidates[i],
			MovementQuota: weather.MaxMovementQuota,
		})
	}
	return clouds
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

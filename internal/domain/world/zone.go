package world

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

type Direction string

const (
	North     Direction = "north"
	NorthEast Direction = "northeast"
	East      Direction = "east"
	SouthEast Direction = "southeast"
	South     Direction = "south"
	SouthWest Direction = "southwest"
	West      Direction = "west"
	NorthWest Direction = "northwest"
)

// Directions lists the eight compass directions clockwise from north.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// Delta returns the grid offset of one step in the direction; y grows southwards.
func (d Direction) Delta() (int, int, bool) {
	switch d {
	case North:
		return 0, -1, true
	case NorthEast:
		return 1, -1, true
	case East:
		return 1, 0, true
	case SouthEast:
		return 1, 1, true
	case South:
		return 0, 1, true
	case SouthWest:
		return -1, 1, true
	case West:
		return -1, 0, true
	case NorthWest:
		return -1, -1, true
	default:
		return 0, 0, false
	}
}

func DirectionPtr(d Direction) *Direction {
	return &d
}

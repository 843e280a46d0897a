package weather

import (
	"errors"
	"fmt"
	"sort"
)

var ErrTileOccupied = errors.New("tile already occupied by a cloud")

// Store holds the active clouds and the tile occupancy index. A tile holds at
// most one cloud.
type Store struct {
	byID   map[int]*Cloud
	byTile map[int]*Cloud
}

func NewStore() *Store {
	return &Store{
		byID:   make(map[int]*Cloud),
		byTile: make(map[int]*Cloud),
	}
}

// Add inserts the cloud. Placing a cloud on an occupied tile is an integrity
// violation and is reported as ErrTileOccupied.
func (s *Store) Add(c *Cloud) error {
	if other, ok := s.byTile[c.Location]; ok {
		return fmt.Errorf("cloud %d onto tile %d held by cloud %d: %w", c.ID, c.Location, other.ID, ErrTileOccupied)
	}
	if _, ok := s.byID[c.ID]; ok {
		return fmt.Errorf("%w: duplicate id %d", ErrInvalidCloud, c.ID)
	}
	s.byID[c.ID] = c
	s.byTile[c.Location] = c
	return nil
}

func (s *Store) Remove(c *Cloud) {
	if cur, ok := s.byID[c.ID]; ok && cur == c {
		delete(s.byID, c.ID)
	}
	if cur, ok := s.byTile[c.Location]; ok && cur == c {
		delete(s.byTile, c.Location)
	}
}

// Move relocates a cloud onto an empty tile.
func (s *Store) Move(c *Cloud, tileID int) error {
	if other, ok := s.byTile[tileID]; ok && other != c {
		return fmt.Errorf("cloud %d onto tile %d held by cloud %d: %w", c.ID, tileID, other.ID, ErrTileOccupied)
	}
	delete(s.byTile, c.Location)
	c.Location = tileID
	s.byTile[tileID] = c
	return nil
}

func (s *Store) ByTile(tileID int) (*Cloud, bool) {
	c, ok := s.byTile[tileID]
	return c, ok
}

func (s *Store) Contains(c *Cloud) bool {
	cur, ok := s.byID[c.ID]
	return ok && cur == c
}

func (s *Store) Len() int {
	return len(s.byID)
}

// Active returns the live clouds in ascending id order.
func (s *Store) Active() []*Cloud {
	out := make([]*Cloud, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OccupiedTiles returns the occupied tile ids in ascending order.
func (s *Store) OccupiedTiles() []int {
	out := make([]int, 0, len(s.byTile))
	for id := range s.byTile {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// MaxID returns the highest live id, or -1 for an empty store.
func (s *Store) MaxID() int {
	maxID := -1
	for id := range s.byID {
		maxID = max(maxID, id)
	}
	return maxID
}

// Snapshot returns copies of the live clouds in ascending id order.
func (s *Store) Snapshot() []Cloud {
	active := s.Active()
	out := make([]Cloud, 0, len(active))
	for _, c := range active {
		out = append(out, *c)
	}
	return out
}

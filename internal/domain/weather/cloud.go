package weather

import (
	"errors"
	"fmt"
)

const (
	RainTriggerAmount     = 5000
	MaxMovementQuota      = 10
	TraversalSunlightCost = 3
	EndOfTickSunlightLoss = 50
	InfiniteDuration      = -1
)

var ErrInvalidCloud = errors.New("invalid cloud")

type Cloud struct {
	ID            int `json:"id"`
	Water         int `json:"water"`
	Duration      int `json:"duration"`
	Location      int `json:"location"`
	MovementQuota int `json:"movement_quota"`
}

// NewCloud returns a cloud with a full movement quota.
func NewCloud(id, location, duration, water int) (Cloud, error) {
	c := Cloud{ID: id, Water: water, Duration: duration, Location: location, MovementQuota: MaxMovementQuota}
	if err := c.Validate(); err != nil {
		return Cloud{}, err
	}
	return c, nil
}

func (c Cloud) Validate() error {
	switch {
	case c.ID < 0:
		return fmt.Errorf("%w: negative id %d", ErrInvalidCloud, c.ID)
	case c.Water < 0:
		return fmt.Errorf("%w: cloud %d holds %d L", ErrInvalidCloud, c.ID, c.Water)
	case c.Duration == 0 || c.Duration < InfiniteDuration:
		return fmt.Errorf("%w: cloud %d has duration %d", ErrInvalidCloud, c.ID, c.Duration)
	case c.MovementQuota < 0 || c.MovementQuota > MaxMovementQuota:
		return fmt.Errorf("%w: cloud %d has movement quota %d", ErrInvalidCloud, c.ID, c.MovementQuota)
	}
	return nil
}

func (c *Cloud) Infinite() bool {
	return c.Duration == InfiniteDuration
}

func (c *Cloud) CanRain() bool {
	return c.Water >= RainTriggerAmount
}

// Drain removes water from the cloud and reports whether it is now empty.
func (c *Cloud) Drain(amount int) bool {
	c.Water = max(0, c.Water-amount)
	return c.Water <= 0
}

func (c *Cloud) ResetQuota() {
	c.MovementQuota = MaxMovementQuota
}

func (c *Cloud) SpendQuota() {
	c.MovementQuota = max(0, c.MovementQuota-1)
}

// Age counts one tick off a finite duration and reports whether the cloud
// has expired. Infinite clouds never expire.
func (c *Cloud) Age() bool {
	if c.Duration > 0 {
		c.Duration--
	}
	return c.Duration == 0
}

// Merge combines a moving cloud with the stationary cloud it ran into. The
// result takes the stationary cloud's tile; water and duration do not depend
// on which operand moved.
func Merge(moving, stationary Cloud, id int) Cloud {
	duration := InfiniteDuration
	if moving.Duration != InfiniteDuration && stationary.Duration != InfiniteDuration {
		duration = min(moving.Duration, stationary.Duration)
	}
	return Cloud{
		ID:            id,
		Water:         moving.Water + stationary.Water,
		Duration:      duration,
		Location:      stationary.Location,
		MovementQuota: min(max(moving.MovementQuota, stationary.MovementQuota), MaxMovementQuota),
	}
}

// IDAllocator hands out strictly increasing cloud ids.
type IDAllocator struct {
	next int
}

// NewIDAllocator continues after the highest existing id; pass -1 when no
// cloud exists yet so the first id is 0.
func NewIDAllocator(maxExisting int) *IDAllocator {
	return &IDAllocator{next: max(maxExisting, -1) + 1}
}

func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

func (a *IDAllocator) Peek() int {
	return a.next
}

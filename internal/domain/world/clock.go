package world

const YearTicks = 24

// baseSunlight is the seasonal sunlight baseline per year tick, two ticks per
// month starting in January.
var baseSunlight = [YearTicks]int{
	98, 98, 112, 112, 126, 126, 140, 140,
	168, 168, 168, 168, 168, 168, 154, 154,
	126, 126, 112, 112, 98, 98, 84, 84,
}

// BaseSunlight returns the seasonal sunlight baseline for a year tick in 1..24.
// Out-of-range ticks are wrapped into the year.
func BaseSunlight(yearTick int) int {
	return baseSunlight[normalizeYearTick(yearTick)-1]
}

// TickInfo identifies a simulation tick and its position within the year.
type TickInfo struct {
	Tick     int `json:"tick"`
	YearTick int `json:"year_tick"`
}

func NewTickInfo(startYearTick int) TickInfo {
	return TickInfo{Tick: 0, YearTick: normalizeYearTick(startYearTick)}
}

// Next returns the following tick; the year tick wraps from 24 back to 1.
func (t TickInfo) Next() TickInfo {
	return TickInfo{Tick: t.Tick + 1, YearTick: t.YearTick%YearTicks + 1}
}

func normalizeYearTick(yearTick int) int {
	if yearTick >= 1 && yearTick <= YearTicks {
		return yearTick
	}
	n := (yearTick - 1) % YearTicks
	if n < 0 {
		n += YearTicks
	}
	return n + 1
}

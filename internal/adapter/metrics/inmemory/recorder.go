package inmemory

import (
	"sync"
	"time"

	"farmsim/internal/app/ports"
)

type Snapshot struct {
	Ticks          uint64 `json:"ticks"`
	Halts          uint64 `json:"halts"`
	LastTickMicros int64  `json:"last_tick_us"`
	TotalTickMicro int64  `json:"total_tick_us"`
	RainEvents     uint64 `json:"rain_events"`
	RainLiters     uint64 `json:"rain_liters"`
	Moves          uint64 `json:"moves"`
	Merges         uint64 `json:"merges"`
	VillageStalls  uint64 `json:"village_stalls"`
	Dissipations   uint64 `json:"dissipations"`
	DryReports     uint64 `json:"dry_reports"`
}

// Recorder counts engine notifications and tick timings.
type Recorder struct {
	mu sync.Mutex
	s  Snapshot
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordTick(elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Ticks++
	r.s.LastTickMicros = elapsed.Microseconds()
	r.s.TotalTickMicro += elapsed.Microseconds()
}

func (r *Recorder) RecordHalt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Halts++
}

func (r *Recorder) CloudRained(_, _, amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.RainEvents++
	r.s.RainLiters += uint64(amount)
}

func (r *Recorder) CloudMoved(int, int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Moves++
}

func (r *Recorder) SunlightReading(int, int) {}

func (r *Recorder) CloudsMerged(int, int, int, int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Merges++
}

func (r *Recorder) CloudStuckInVillage(int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.VillageStalls++
}

func (r *Recorder) CloudDissipated(int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Dissipations++
}

func (r *Recorder) CloudFinalPosition(int, int, int) {}

func (r *Recorder) SoilMoistureBelowThreshold(int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.DryReports++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

var (
	_ ports.CloudEventSink = (*Recorder)(nil)
	_ ports.TickMetrics    = (*Recorder)(nil)
)

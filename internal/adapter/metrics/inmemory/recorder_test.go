package inmemory

import (
	"testing"
	"time"
)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordTick(3 * time.Millisecond)
	r.RecordTick(time.Millisecond)
	r.RecordHalt()
	r.CloudRained(1, 2, 800)
	r.CloudRained(1, 3, 5000)
	r.CloudMoved(1, 100, 2, 3)
	r.CloudsMerged(1, 2, 3, 100, -1, 3)
	r.CloudStuckInVillage(3, 4)
	r.CloudDissipated(3, 4)
	r.SunlightReading(2, 90)

	s := r.Snapshot()
	if s.Ticks != 2 {
		t.Fatalf("expected 2 ticks, got %d", s.Ticks)
	}
	if s.LastTickMicros != 1000 || s.TotalTickMicro != 4000 {
		t.Fatalf("unexpected latencies last=%d total=%d", s.LastTickMicros, s.TotalTickMicro)
	}
	if s.Halts != 1 {
		t.Fatalf("expected 1 halt, got %d", s.Halts)
	}
	if s.RainEvents != 2 || s.RainLiters != 5800 {
		t.Fatalf("expected 2 rains of 5800 L, got %d / %d", s.RainEvents, s.RainLiters)
	}
	if s.Moves != 1 || s.Merges != 1 || s.VillageStalls != 1 || s.Dissipations != 1 {
		t.Fatalf("unexpected counters %+v", s)
	}
	if _, ok := r.SnapshotAny().(Snapshot); !ok {
		t.Fatalf("expected SnapshotAny to return Snapshot")
	}
}

package memory

import (
	"sync"

	"farmsim/internal/app/ports"
	"farmsim/internal/domain/weather"
)

type Store struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	events map[string][]weather.Event
	runs   map[string]ports.RunRecord
}

func NewStore() *Store {
	return &Store{
		events: make(map[string][]weather.Event),
		runs:   make(map[string]ports.RunRecord),
	}
}

type snapshot struct {
	eventLens map[string]int
	runs      map[string]ports.RunRecord
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := snapshot{
		eventLens: make(map[string]int, len(s.events)),
		runs:      make(map[string]ports.RunRecord, len(s.runs)),
	}
	for k, v := range s.events {
		out.eventLens[k] = len(v)
	}
	for k, v := range s.runs {
		out.runs[k] = v
	}
	return out
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.events {
		n, ok := snap.eventLens[k]
		if !ok {
			delete(s.events, k)
			continue
		}
		s.events[k] = v[:n]
	}
	s.runs = snap.runs
}

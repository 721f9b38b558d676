package observability

import (
	"sync"
	"time"
)

// Stats counts pipeline runs. Safe for concurrent use.
type Stats struct {
	mu       sync.RWMutex
	runs     int
	failures map[string]int
	lastRun  time.Time
}

func NewStats() *Stats {
	return &Stats{failures: make(map[string]int)}
}

// Record registers one finished run. kind is empty for successful runs.
func (s *Stats) Record(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.lastRun = time.Now()
	if kind != "" {
		s.failures[kind]++
	}
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Runs     int
	Failures map[string]int
	LastRun  time.Time
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	failures := make(map[string]int, len(s.failures))
	for k, v := range s.failures {
		failures[k] = v
	}
	return Snapshot{Runs: s.runs, Failures: failures, LastRun: s.lastRun}
}

func (s Snapshot) Succeeded() int {
	n := s.Runs
	for _, v := range s.Failures {
		n -= v
	}
	return n
}

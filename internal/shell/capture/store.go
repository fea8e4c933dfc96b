// Package capture tracks which records the user has captured. State lives
// in process memory only and is lost on restart.
package capture

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// capturedGauge mirrors the size of the most recently changed Store.
	// A process runs a single Store.
	capturedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokedex_captured",
		Help: "Number of records currently marked as captured",
	})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_capture_transitions_total",
		Help: "Total capture state changes by action",
	}, []string{"action"})
)

// Store is a concurrency-safe set of captured record ids. The zero value is
// not usable; call NewStore.
type Store struct {
	mu  sync.RWMutex
	ids map[int]struct{}
}

// NewStore creates an empty capture store.
func NewStore() *Store {
	return &Store{ids: make(map[int]struct{})}
}

// Capture marks id as captured. It reports whether the id was newly added,
// so a caller can detect a concurrent capture of the same id.
func (s *Store) Capture(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	capturedGauge.Set(float64(len(s.ids)))
	transitionsTotal.WithLabelValues("capture").Inc()
	return true
}

// Release unmarks id. It reports whether the id was captured before.
// Releasing an id that is not captured is a no-op.
func (s *Store) Release(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	capturedGauge.Set(float64(len(s.ids)))
	transitionsTotal.WithLabelValues("release").Inc()
	return true
}

// IsCaptured reports whether id is captured.
func (s *Store) IsCaptured(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of captured ids.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

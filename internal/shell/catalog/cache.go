// Package catalog caches the record roster in memory and revalidates it
// against the provider's change signal.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/artpar/pokedex/internal/core/domain"
	"github.com/artpar/pokedex/internal/core/query"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metrics
// =============================================================================

var (
	reloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_catalog_reloads_total",
		Help: "Total successful catalog reloads",
	})

	reloadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_catalog_reload_failures_total",
		Help: "Total catalog reloads that failed and kept the previous snapshot",
	})

	reloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokedex_catalog_reload_duration_seconds",
		Help:    "Duration of catalog reloads",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	catalogRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokedex_catalog_records",
		Help: "Number of records in the current catalog snapshot",
	})
)

// =============================================================================
// Types
// =============================================================================

// Provider supplies raw records and the change signal they are validated
// against. store.Provider satisfies it.
type Provider interface {
	ListPokemon(ctx context.Context) ([]domain.Pokemon, error)
	LastModified(ctx context.Context) (time.Time, error)
}

// Snapshot is one immutable load generation of the catalog.
// Records must not be modified by callers.
type Snapshot struct {
	Records    []domain.Pokemon
	Generation string    // random id of this load, empty if nothing ever loaded
	ModifiedAt time.Time // change signal observed when the load started
	LoadedAt   time.Time
}

// Cache holds the current Snapshot. Reads run concurrently; a reload takes
// the exclusive lock and replaces the snapshot wholesale.
type Cache struct {
	provider Provider
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	snapshot *Snapshot
	signal   time.Time // last change signal a successful load was based on

	// sentinelFailed is set when a reload under the zero-time sentinel
	// failed. Further reads under the sentinel keep the current snapshot
	// until a real signal or a successful load clears it.
	sentinelFailed bool
}

// NewCache creates a cache over provider. Nothing is loaded until the first
// read.
func NewCache(provider Provider, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// =============================================================================
// Reads
// =============================================================================

// GetAll returns the records of the current snapshot, reloading first if the
// provider's change signal moved. It never fails: on provider errors the
// previous snapshot, or an empty catalog, is returned and the error logged.
func (c *Cache) GetAll(ctx context.Context) []domain.Pokemon {
	return c.Snapshot(ctx).Records
}

// Snapshot is GetAll with the load metadata.
func (c *Cache) Snapshot(ctx context.Context) Snapshot {
	signal := c.changeSignal(ctx)

	c.mu.RLock()
	snap := c.snapshot
	fresh := snap != nil && c.isFreshLocked(signal)
	c.mu.RUnlock()
	if fresh {
		return *snap
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another reader may have reloaded while we waited for the lock.
	if c.snapshot != nil && c.isFreshLocked(signal) {
		return *c.snapshot
	}
	c.reloadLocked(ctx, signal)
	return *c.snapshot
}

// isFreshLocked reports whether the current snapshot is valid for signal.
// c.mu must be held.
func (c *Cache) isFreshLocked(signal time.Time) bool {
	if signal.Equal(c.signal) {
		return true
	}
	return signal.IsZero() && c.sentinelFailed
}

// FindByID returns the record with the given id in the current snapshot.
func (c *Cache) FindByID(ctx context.Context, id int) (domain.Pokemon, bool) {
	return query.FindByID(c.GetAll(ctx), id)
}

// changeSignal asks the provider for its modification time. Errors collapse
// to the zero time, so an unreachable source triggers at most one reload
// attempt until the provider answers again.
func (c *Cache) changeSignal(ctx context.Context) time.Time {
	signal, err := c.provider.LastModified(ctx)
	if err != nil {
		c.logger.Debug("catalog change signal unavailable", "error", err)
		return time.Time{}
	}
	return signal
}

// reloadLocked fetches a fresh roster and installs it. c.mu must be held for
// writing.
func (c *Cache) reloadLocked(ctx context.Context, signal time.Time) {
	start := c.now()
	records, err := c.provider.ListPokemon(ctx)
	reloadDuration.Observe(c.now().Sub(start).Seconds())

	if err != nil {
		reloadFailuresTotal.Inc()
		if signal.IsZero() {
			c.sentinelFailed = true
		}
		if c.snapshot == nil {
			c.snapshot = &Snapshot{Records: []domain.Pokemon{}}
			catalogRecords.Set(0)
		}
		c.logger.Error("failed to reload catalog, serving previous snapshot",
			"error", err,
			"records", len(c.snapshot.Records),
			"generation", c.snapshot.Generation,
		)
		return
	}

	for i := range records {
		records[i].ID = i + 1
	}

	c.snapshot = &Snapshot{
		Records:    records,
		Generation: uuid.NewString(),
		ModifiedAt: signal,
		LoadedAt:   c.now(),
	}
	c.signal = signal
	c.sentinelFailed = false

	reloadsTotal.Inc()
	catalogRecords.Set(float64(len(records)))
	c.logger.Info("catalog loaded",
		"records", len(records),
		"generation", c.snapshot.Generation,
		"modified_at", signal,
	)
}

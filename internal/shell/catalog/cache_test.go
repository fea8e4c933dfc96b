package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/artpar/pokedex/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

// stubProvider implements Provider for testing.
type stubProvider struct {
	mu        sync.Mutex
	records   []domain.Pokemon
	modified  time.Time
	listErr   error
	signalErr error
	lists     int
}

func (p *stubProvider) ListPokemon(ctx context.Context) ([]domain.Pokemon, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists++
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]domain.Pokemon, len(p.records))
	copy(out, p.records)
	return out, nil
}

func (p *stubProvider) LastModified(ctx context.Context) (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signalErr != nil {
		return time.Time{}, p.signalErr
	}
	return p.modified, nil
}

func (p *stubProvider) set(records []domain.Pokemon, modified time.Time, listErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
	p.modified = modified
	p.listErr = listErr
}

func (p *stubProvider) listCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lists
}

func roster(names ...string) []domain.Pokemon {
	records := make([]domain.Pokemon, 0, len(names))
	for i, name := range names {
		records = append(records, domain.Pokemon{Number: i + 1, Name: name, TypeOne: "Normal"})
	}
	return records
}

func names(records []domain.Pokemon) []string {
	out := make([]string, 0, len(records))
	for _, p := range records {
		out = append(out, p.Name)
	}
	return out
}

func newTestCache(p Provider) *Cache {
	return NewCache(p, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// =============================================================================
// Load Tests
// =============================================================================

func TestGetAll_InitialLoadAssignsIDs(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur", "Ivysaur", "Venusaur"), modified: t0}
	c := newTestCache(p)

	records := c.GetAll(context.Background())

	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.ID)
	}
	assert.Equal(t, 1, p.listCalls())
}

func TestGetAll_UnchangedSignalDoesNotReload(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur"), modified: t0}
	c := newTestCache(p)

	first := c.Snapshot(context.Background())
	second := c.Snapshot(context.Background())
	c.GetAll(context.Background())

	assert.Equal(t, 1, p.listCalls())
	assert.Equal(t, first.Generation, second.Generation)
	assert.NotEmpty(t, first.Generation)
	assert.Equal(t, t0, first.ModifiedAt)
}

func TestGetAll_ChangedSignalReloads(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur", "Ivysaur"), modified: t0}
	c := newTestCache(p)
	before := c.Snapshot(context.Background())

	p.set(roster("Mew", "Bulbasaur", "Ivysaur"), t0.Add(time.Second), nil)
	after := c.Snapshot(context.Background())

	assert.Equal(t, 2, p.listCalls())
	assert.NotEqual(t, before.Generation, after.Generation)
	assert.Equal(t, []string{"Mew", "Bulbasaur", "Ivysaur"}, names(after.Records))
	// Ids follow position in the new roster.
	assert.Equal(t, 2, after.Records[1].ID)
	assert.Equal(t, "Bulbasaur", after.Records[1].Name)
}

func TestGetAll_SignalMovingBackwardsAlsoReloads(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur"), modified: t0}
	c := newTestCache(p)
	c.GetAll(context.Background())

	p.set(roster("Pikachu"), t0.Add(-time.Hour), nil)

	assert.Equal(t, []string{"Pikachu"}, names(c.GetAll(context.Background())))
}

// =============================================================================
// Failure Tests
// =============================================================================

func TestGetAll_FailedReloadKeepsPreviousSnapshot(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur", "Ivysaur"), modified: t0}
	c := newTestCache(p)
	before := c.Snapshot(context.Background())

	p.set(nil, t0.Add(time.Second), errors.New("disk on fire"))
	after := c.Snapshot(context.Background())

	assert.Equal(t, before.Generation, after.Generation)
	assert.Equal(t, []string{"Bulbasaur", "Ivysaur"}, names(after.Records))
}

func TestGetAll_FailedReloadRetriesOnNextRead(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur"), modified: t0}
	c := newTestCache(p)
	c.GetAll(context.Background())

	p.set(nil, t0.Add(time.Second), errors.New("locked"))
	c.GetAll(context.Background())
	assert.Equal(t, 2, p.listCalls())

	p.set(roster("Bulbasaur", "Ivysaur"), t0.Add(time.Second), nil)
	records := c.GetAll(context.Background())

	assert.Equal(t, 3, p.listCalls())
	assert.Len(t, records, 2)
}

func TestGetAll_FirstLoadFailureIsEmpty(t *testing.T) {
	p := &stubProvider{modified: t0, listErr: errors.New("no such table")}
	c := newTestCache(p)

	snap := c.Snapshot(context.Background())

	assert.NotNil(t, snap.Records)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Generation)
}

func TestGetAll_UnavailableSignalDoesNotReloadEveryCall(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur"), signalErr: errors.New("stat failed")}
	c := newTestCache(p)

	for n := 0; n < 5; n++ {
		assert.Len(t, c.GetAll(context.Background()), 1)
	}
	assert.Equal(t, 1, p.listCalls())
}

func TestGetAll_UnreachableProviderAfterLoadDoesNotReloadEveryCall(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur", "Ivysaur"), modified: t0}
	c := newTestCache(p)
	first := c.Snapshot(context.Background())
	require.Equal(t, 1, p.listCalls())

	p.mu.Lock()
	p.signalErr = errors.New("stat failed")
	p.listErr = errors.New("database is locked")
	p.mu.Unlock()

	for n := 0; n < 10; n++ {
		snap := c.Snapshot(context.Background())
		assert.Equal(t, first.Generation, snap.Generation)
		assert.Len(t, snap.Records, 2)
	}
	assert.Equal(t, 2, p.listCalls())

	// A real signal from a recovered provider reloads again.
	p.mu.Lock()
	p.signalErr = nil
	p.listErr = nil
	p.records = roster("Bulbasaur", "Ivysaur", "Venusaur")
	p.modified = t0.Add(time.Minute)
	p.mu.Unlock()

	assert.Len(t, c.GetAll(context.Background()), 3)
	assert.Equal(t, 3, p.listCalls())
}

// =============================================================================
// Lookup / Concurrency Tests
// =============================================================================

func TestFindByID(t *testing.T) {
	p := &stubProvider{records: roster("Bulbasaur", "Ivysaur"), modified: t0}
	c := newTestCache(p)

	rec, ok := c.FindByID(context.Background(), 2)
	require.True(t, ok)
	assert.Equal(t, "Ivysaur", rec.Name)

	_, ok = c.FindByID(context.Background(), 3)
	assert.False(t, ok)
}

func TestGetAll_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	small := roster("A", "B")
	large := roster("A", "B", "C", "D", "E")
	p := &stubProvider{records: small, modified: t0}
	c := newTestCache(p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i == 0 && j%10 == 0 {
					if j%20 == 0 {
						p.set(large, t0.Add(time.Duration(j)*time.Second), nil)
					} else {
						p.set(small, t0.Add(time.Duration(j)*time.Second), nil)
					}
				}
				n := len(c.GetAll(context.Background()))
				assert.True(t, n == len(small) || n == len(large), "torn snapshot of %d records", n)
			}
		}(i)
	}
	wg.Wait()
}

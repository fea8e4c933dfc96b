package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/pokedex/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func setupFileStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "pokedex.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store, path
}

func testRoster() []domain.Pokemon {
	return []domain.Pokemon{
		{Number: 6, Name: "Charizard", TypeOne: "Fire", TypeTwo: domain.StringPtr("Flying"), Total: 534, HitPoints: 78, Attack: 84, Defense: 78, SpecialAttack: 109, SpecialDefense: 85, Speed: 100, Generation: 1},
		{Number: 1, Name: "Bulbasaur", TypeOne: "Grass", TypeTwo: domain.StringPtr("Poison"), Total: 318, Generation: 1},
		{Number: 150, Name: "Mewtwo", TypeOne: "Psychic", Total: 680, Generation: 1, Legendary: true},
	}
}

// =============================================================================
// Pokemon Tests
// =============================================================================

func TestListPokemon_Empty(t *testing.T) {
	store := setupTestStore(t)

	records, err := store.ListPokemon(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReplacePokemon_PreservesOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplacePokemon(ctx, testRoster()))

	records, err := store.ListPokemon(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Charizard", records[0].Name)
	assert.Equal(t, "Bulbasaur", records[1].Name)
	assert.Equal(t, "Mewtwo", records[2].Name)
}

func TestReplacePokemon_RoundTripsAttributes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplacePokemon(ctx, testRoster()))

	records, err := store.ListPokemon(ctx)
	require.NoError(t, err)

	charizard := records[0]
	assert.Equal(t, 6, charizard.Number)
	assert.Equal(t, "Fire", charizard.TypeOne)
	require.NotNil(t, charizard.TypeTwo)
	assert.Equal(t, "Flying", *charizard.TypeTwo)
	assert.Equal(t, 109, charizard.SpecialAttack)
	assert.Equal(t, 0, charizard.ID, "ids are assigned by the catalog, not the store")

	mewtwo := records[2]
	assert.Nil(t, mewtwo.TypeTwo)
	assert.Nil(t, mewtwo.ImageURL)
	assert.True(t, mewtwo.Legendary)
}

func TestReplacePokemon_ReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplacePokemon(ctx, testRoster()))
	require.NoError(t, store.ReplacePokemon(ctx, testRoster()[:1]))

	count, err := store.CountPokemon(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReplacePokemon_RollsBackOnInvalidRecord(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplacePokemon(ctx, testRoster()))

	bad := append(testRoster(), domain.Pokemon{Number: 999, Name: "  "})
	err := store.ReplacePokemon(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)

	count, err := store.CountPokemon(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "previous roster must survive a failed replace")
}

func TestWithTx_NestedRunsInSameTx(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx Store) error {
		return tx.WithTx(ctx, func(inner Store) error {
			return inner.ReplacePokemon(ctx, testRoster())
		})
	})
	require.NoError(t, err)

	count, err := store.CountPokemon(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

// =============================================================================
// LastModified Tests
// =============================================================================

func TestLastModified_InMemoryUnavailable(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LastModified(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestLastModified_FileChangesOnWrite(t *testing.T) {
	store, path := setupFileStore(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	before, err := store.LastModified(ctx)
	require.NoError(t, err)

	require.NoError(t, store.ReplacePokemon(ctx, testRoster()))

	after, err := store.LastModified(ctx)
	require.NoError(t, err)
	assert.True(t, after.After(before), "write should advance the change signal")
}

// =============================================================================
// DSN Helpers
// =============================================================================

func TestDatabasePath(t *testing.T) {
	tests := []struct {
		dsn      string
		expected string
	}{
		{":memory:", ""},
		{"file::memory:?cache=shared", ""},
		{"file:test.db?mode=memory", ""},
		{"./data/pokedex.db", "./data/pokedex.db"},
		{"file:/var/lib/pokedex.db?_busy_timeout=5000", "/var/lib/pokedex.db"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.expected, databasePath(tt.dsn))
		})
	}
}

func TestWithParam(t *testing.T) {
	assert.Equal(t, "a.db?x=1", withParam("a.db", "x=1"))
	assert.Equal(t, "a.db?y=2&x=1", withParam("a.db?y=2", "x=1"))
}

package store

import (
	"context"
	"time"

	"github.com/artpar/pokedex/internal/core/domain"
)

// =============================================================================
// Interfaces
// =============================================================================

// Provider is a read-only record source. ListPokemon returns records in load
// order; LastModified is the change signal the catalog cache polls.
type Provider interface {
	ListPokemon(ctx context.Context) ([]domain.Pokemon, error)
	LastModified(ctx context.Context) (time.Time, error)
}

// Store is a Provider whose records can be replaced.
type Store interface {
	Provider

	// ReplacePokemon swaps the whole roster, preserving the order of records.
	ReplacePokemon(ctx context.Context, records []domain.Pokemon) error

	// CountPokemon returns the number of stored records.
	CountPokemon(ctx context.Context) (int, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Close() error
}

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/artpar/pokedex/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sqlx.DB
	path string // database file, empty for in-memory databases
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	path := databasePath(dsn)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, NewStoreError("NewSQLiteStore", "", "", "failed to create database directory", ErrConnectionFailed)
		}
	}

	// Open database connection
	db, err := sqlx.Open("sqlite3", withParam(dsn, "_foreign_keys=on"))
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	// An in-memory database exists per connection.
	if path == "" {
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	// Run migrations
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Pokemon Operations
// =============================================================================

// pokemonRow represents a pokemon row in the database.
type pokemonRow struct {
	Position       int     `db:"position"`
	Number         int     `db:"number"`
	Name           string  `db:"name"`
	TypeOne        string  `db:"type_one"`
	TypeTwo        *string `db:"type_two"`
	Total          int     `db:"total"`
	HitPoints      int     `db:"hit_points"`
	Attack         int     `db:"attack"`
	Defense        int     `db:"defense"`
	SpecialAttack  int     `db:"special_attack"`
	SpecialDefense int     `db:"special_defense"`
	Speed          int     `db:"speed"`
	Generation     int     `db:"generation"`
	Legendary      bool    `db:"legendary"`
	ImageURL       *string `db:"image_url"`
}

func (s *SQLiteStore) ListPokemon(ctx context.Context) ([]domain.Pokemon, error) {
	return listPokemon(ctx, s.db)
}

func (s *SQLiteStore) ReplacePokemon(ctx context.Context, records []domain.Pokemon) error {
	return s.WithTx(ctx, func(tx Store) error {
		return tx.ReplacePokemon(ctx, records)
	})
}

func (s *SQLiteStore) CountPokemon(ctx context.Context) (int, error) {
	return countPokemon(ctx, s.db)
}

// LastModified returns the most recent modification time of the database
// file and its write-ahead log.
func (s *SQLiteStore) LastModified(ctx context.Context) (time.Time, error) {
	return fileModTime(s.path, s.path+"-wal")
}

// WithTx runs fn inside a transaction, committing only if fn succeeds.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx, path: s.path}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx   *sqlx.Tx
	path string
}

func (s *txSQLiteStore) ListPokemon(ctx context.Context) ([]domain.Pokemon, error) {
	return listPokemon(ctx, s.tx)
}

func (s *txSQLiteStore) ReplacePokemon(ctx context.Context, records []domain.Pokemon) error {
	return replacePokemon(ctx, s.tx, records)
}

func (s *txSQLiteStore) CountPokemon(ctx context.Context) (int, error) {
	return countPokemon(ctx, s.tx)
}

func (s *txSQLiteStore) LastModified(ctx context.Context) (time.Time, error) {
	return fileModTime(s.path, s.path+"-wal")
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func listPokemon(ctx context.Context, exec executor) ([]domain.Pokemon, error) {
	query := `SELECT * FROM pokemon ORDER BY position ASC`

	var rows []pokemonRow
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewStoreError("ListPokemon", "pokemon", "", err.Error(), err)
	}

	records := make([]domain.Pokemon, 0, len(rows))
	for i := range rows {
		records = append(records, rowToPokemon(&rows[i]))
	}
	return records, nil
}

func countPokemon(ctx context.Context, exec executor) (int, error) {
	var count int
	if err := exec.GetContext(ctx, &count, `SELECT COUNT(*) FROM pokemon`); err != nil {
		return 0, NewStoreError("CountPokemon", "pokemon", "", err.Error(), err)
	}
	return count, nil
}

func replacePokemon(ctx context.Context, exec executor, records []domain.Pokemon) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM pokemon`); err != nil {
		return NewStoreError("ReplacePokemon", "pokemon", "", err.Error(), err)
	}

	query := `
		INSERT INTO pokemon (
			position, number, name, type_one, type_two, total, hit_points,
			attack, defense, special_attack, special_defense, speed,
			generation, legendary, image_url
		) VALUES (
			:position, :number, :name, :type_one, :type_two, :total, :hit_points,
			:attack, :defense, :special_attack, :special_defense, :speed,
			:generation, :legendary, :image_url
		)`

	for i, p := range records {
		if strings.TrimSpace(p.Name) == "" {
			return NewStoreError("ReplacePokemon", "pokemon", fmt.Sprint(i+1), "name is required", ErrInvalidData)
		}
		row := pokemonToRow(i+1, p)
		if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
			return NewStoreError("ReplacePokemon", "pokemon", p.Name, err.Error(), err)
		}
	}
	return nil
}

func rowToPokemon(row *pokemonRow) domain.Pokemon {
	return domain.Pokemon{
		Number:         row.Number,
		Name:           row.Name,
		TypeOne:        row.TypeOne,
		TypeTwo:        emptyToNil(row.TypeTwo),
		Total:          row.Total,
		HitPoints:      row.HitPoints,
		Attack:         row.Attack,
		Defense:        row.Defense,
		SpecialAttack:  row.SpecialAttack,
		SpecialDefense: row.SpecialDefense,
		Speed:          row.Speed,
		Generation:     row.Generation,
		Legendary:      row.Legendary,
		ImageURL:       emptyToNil(row.ImageURL),
	}
}

func pokemonToRow(position int, p domain.Pokemon) pokemonRow {
	return pokemonRow{
		Position:       position,
		Number:         p.Number,
		Name:           p.Name,
		TypeOne:        p.TypeOne,
		TypeTwo:        emptyToNil(p.TypeTwo),
		Total:          p.Total,
		HitPoints:      p.HitPoints,
		Attack:         p.Attack,
		Defense:        p.Defense,
		SpecialAttack:  p.SpecialAttack,
		SpecialDefense: p.SpecialDefense,
		Speed:          p.Speed,
		Generation:     p.Generation,
		Legendary:      p.Legendary,
		ImageURL:       emptyToNil(p.ImageURL),
	}
}

// =============================================================================
// Helpers
// =============================================================================

// databasePath extracts the file path from a SQLite DSN. It returns an empty
// string for in-memory databases.
func databasePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if strings.Contains(path[i:], "mode=memory") {
			return ""
		}
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

func withParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// fileModTime returns the latest modification time among paths. The first
// path must exist; the others are optional.
func fileModTime(paths ...string) (time.Time, error) {
	if len(paths) == 0 || paths[0] == "" {
		return time.Time{}, NewStoreError("LastModified", "pokemon", "", "no backing file", ErrSourceUnavailable)
	}

	var latest time.Time
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if i == 0 {
				return time.Time{}, NewStoreError("LastModified", "pokemon", p, err.Error(), ErrSourceUnavailable)
			}
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

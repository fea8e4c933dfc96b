package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/artpar/pokedex/internal/shell/store"
)

// RunImport replaces the roster table in cfg.Database.DSN with the records
// in the YAML or JSON file at path. The replacement is a single transaction,
// so a malformed record leaves the previous roster in place. A running
// server picks up the new roster on its next request because the write
// changes the database file's modification time.
func RunImport(ctx context.Context, cfg *Config, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ServerError{Op: "RunImport", Err: err, ExitCode: ExitImportError}
	}

	records, err := store.DecodeRoster(data, path)
	if err != nil {
		return &ServerError{Op: "RunImport", Err: err, ExitCode: ExitImportError}
	}

	s, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		return &ServerError{Op: "RunImport", Err: err, ExitCode: ExitDatabaseError}
	}
	defer s.Close()

	if err := s.ReplacePokemon(ctx, records); err != nil {
		return &ServerError{Op: "RunImport", Err: err, ExitCode: ExitImportError}
	}

	count, err := s.CountPokemon(ctx)
	if err != nil {
		return &ServerError{Op: "RunImport", Err: err, ExitCode: ExitDatabaseError}
	}

	logger.Info("roster imported",
		"source", path,
		"dsn", cfg.Database.DSN,
		"records", count,
	)
	return nil
}

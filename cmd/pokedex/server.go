package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/pokedex/internal/shell/api"
	"github.com/artpar/pokedex/internal/shell/capture"
	"github.com/artpar/pokedex/internal/shell/catalog"
	"github.com/artpar/pokedex/internal/shell/store"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitHTTPServerError = 4
	ExitImportError     = 6
)

// =============================================================================
// Server
// =============================================================================

// Server represents the Pokedex application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store // nil when records come from a roster file
	cache      *catalog.Cache
	captures   *capture.Store
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	var (
		provider store.Provider
		s        store.Store
	)

	switch cfg.Catalog.Source {
	case SourceFile:
		provider = store.NewFileProvider(cfg.Catalog.File)
		logger.Info("serving roster file", "path", cfg.Catalog.File)
	default:
		sqliteStore, err := store.NewSQLiteStore(cfg.Database.DSN)
		if err != nil {
			return nil, &ServerError{
				Op:       "NewServer",
				Err:      err,
				ExitCode: ExitDatabaseError,
			}
		}
		provider, s = sqliteStore, sqliteStore
		logger.Info("serving roster database", "dsn", cfg.Database.DSN)
	}

	cache := catalog.NewCache(provider, logger)
	captures := capture.NewStore()

	handler := api.SetupAPI(api.APIConfig{
		Catalog:  cache,
		Captures: captures,
		Images:   cfg.Catalog.ImageTemplate(),
		Logger:   logger,
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		cache:      cache,
		captures:   captures,
		logger:     logger,
	}, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Load the first generation up front so the first request does not pay
	// for it. Failures are logged by the cache and retried lazily.
	snap := s.cache.Snapshot(ctx)
	s.logger.Info("catalog ready",
		"records", len(snap.Records),
		"generation", snap.Generation,
	)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.closeStore()
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.closeStore()

	s.logger.Info("shutdown complete", "captured", s.captures.Count())
	return nil
}

func (s *Server) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

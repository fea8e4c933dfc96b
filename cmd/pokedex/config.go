package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artpar/pokedex/internal/core/query"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Catalog sources.
const (
	SourceSQLite = "sqlite"
	SourceFile   = "file"
)

// CatalogConfig selects where records come from and how image URLs are built.
type CatalogConfig struct {
	// Source is "sqlite" (records in database.dsn) or "file" (records in File).
	Source string `mapstructure:"source"`

	// File is the YAML or JSON roster read when Source is "file".
	File string `mapstructure:"file"`

	ImageBaseURL string `mapstructure:"image_base_url"`
	ImageExt     string `mapstructure:"image_ext"`
}

// ImageTemplate returns the template used to derive missing image URLs.
func (c CatalogConfig) ImageTemplate() query.ImageTemplate {
	return query.ImageTemplate{
		BaseURL:   c.ImageBaseURL,
		Extension: c.ImageExt,
	}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("database.dsn", "data/pokedex.db")
	v.SetDefault("catalog.source", SourceSQLite)
	v.SetDefault("catalog.file", "")
	v.SetDefault("catalog.image_base_url", query.DefaultImageBaseURL)
	v.SetDefault("catalog.image_ext", query.DefaultImageExtension)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("POKEDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	switch c.Catalog.Source {
	case SourceSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when catalog.source is %q", SourceSQLite)
		}
	case SourceFile:
		if c.Catalog.File == "" {
			return fmt.Errorf("catalog.file is required when catalog.source is %q", SourceFile)
		}
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", SourceSQLite, SourceFile, c.Catalog.Source)
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

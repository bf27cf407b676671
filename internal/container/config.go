// Package container provides dependency injection and lifecycle management
// for the procurement service following Clean Architecture principles.
package container

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Server configuration
	Server ServerConfig

	// Approval chain configuration
	Approval ApprovalConfig

	// Worker configuration
	Worker WorkerConfig
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Driver selects the request store: sqlite or memory
	Driver string

	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string

	// Seed loads the sample requests and vendors into an empty store
	Seed bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string

	// RateLimit is a limiter rate such as "300-M". Empty disables it.
	RateLimit string

	Version string
}

// ApprovalConfig holds the approval chain given to new requests.
type ApprovalConfig struct {
	// Chain is used for every department. Empty falls back to the
	// per-department chain of the sample data.
	Chain []entity.ChainStage
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	// SnapshotInterval is how often request counts per status are published
	SnapshotInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Path:            "data/procurement.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
			Seed:            true,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit:      "300-M",
			Version:        "1.0.0",
		},
		Worker: WorkerConfig{
			SnapshotInterval: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverMemory, c.Database.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	for i, stage := range c.Approval.Chain {
		if strings.TrimSpace(stage.Role) == "" {
			return fmt.Errorf("approval.chain[%d].role is required", i)
		}
		if strings.TrimSpace(stage.Approver) == "" {
			return fmt.Errorf("approval.chain[%d].approver is required", i)
		}
	}

	if c.Worker.SnapshotInterval < 0 {
		return fmt.Errorf("worker.snapshot_interval must not be negative")
	}

	return nil
}

package config

import (
	"github.com/garyjia/procurement-hub/internal/container"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	chain := make([]entity.ChainStage, 0, len(c.Approval.Chain))
	for _, stage := range c.Approval.Chain {
		chain = append(chain, entity.ChainStage{Role: stage.Role, Approver: stage.Approver})
	}

	return &container.Config{
		Database: container.DatabaseConfig{
			Driver:          c.Database.Driver,
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
			Seed:            c.Database.Seed,
		},
		Server: container.ServerConfig{
			Host:           c.Server.Host,
			Port:           c.Server.Port,
			ReadTimeout:    c.Server.ReadTimeout,
			WriteTimeout:   c.Server.WriteTimeout,
			AllowedOrigins: c.Server.AllowedOrigins,
			RateLimit:      c.API.RateLimit,
			Version:        c.Server.Version,
		},
		Approval: container.ApprovalConfig{
			Chain: chain,
		},
		Worker: container.WorkerConfig{
			SnapshotInterval: c.Worker.SnapshotInterval,
		},
	}
}

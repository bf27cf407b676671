package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

const sampleYAML = `
server:
  host: 127.0.0.1
  port: 9090
  allowed_origins:
    - http://localhost:3000
database:
  driver: memory
logger:
  level: debug
  format: console
approval:
  chain:
    - role: Department Head
      approver: Jenny Wilson
    - role: Finance Director
      approver: Brooklyn Simmons
api:
  rate_limit: 50-S
worker:
  snapshot_interval: 5s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout, "default applies to keys missing from the file")
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "50-S", cfg.API.RateLimit)
	assert.Equal(t, 5*time.Second, cfg.Worker.SnapshotInterval)
	require.Len(t, cfg.Approval.Chain, 2)
	assert.Equal(t, StageConfig{Role: "Finance Director", Approver: "Brooklyn Simmons"}, cfg.Approval.Chain[1])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/procurement.db", cfg.Database.Path)
	assert.True(t, cfg.Database.Seed)
	assert.Equal(t, "300-M", cfg.API.RateLimit)
	assert.Empty(t, cfg.Approval.Chain)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PROCUREMENT_SERVER_PORT", "7070")
	t.Setenv("PROCUREMENT_DATABASE_DRIVER", "memory")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "database.driver")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", Path: "data/procurement.db"},
			Logger:   LoggerConfig{Format: "json"},
			Worker:   WorkerConfig{SnapshotInterval: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "sqlite needs path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "port range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "log format", mutate: func(c *Config) { c.Logger.Format = "xml" }, wantErr: "logger.format"},
		{name: "incomplete stage", mutate: func(c *Config) { c.Approval.Chain = []StageConfig{{Role: "Controller"}} }, wantErr: "approval.chain[0]"},
		{name: "snapshot interval", mutate: func(c *Config) { c.Worker.SnapshotInterval = 0 }, wantErr: "worker.snapshot_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestToContainerConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	cc := cfg.ToContainerConfig()
	require.NoError(t, cc.Validate())

	assert.Equal(t, "memory", cc.Database.Driver)
	assert.Equal(t, 9090, cc.Server.Port)
	assert.Equal(t, "50-S", cc.Server.RateLimit)
	assert.Equal(t, []entity.ChainStage{
		{Role: "Department Head", Approver: "Jenny Wilson"},
		{Role: "Finance Director", Approver: "Brooklyn Simmons"},
	}, cc.Approval.Chain)
	assert.Equal(t, 5*time.Second, cc.Worker.SnapshotInterval)
}

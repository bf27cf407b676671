package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/container"
)

func writeTestConfig(t *testing.T, driver string) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "procurement.db")
	content := fmt.Sprintf(`
database:
  driver: %s
  path: %s
  seed: false
logger:
  level: error
  output_path: stderr
  format: console
`, driver, dbPath)
	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateAndSeed(t *testing.T) {
	cfgPath, dbPath := writeTestConfig(t, "sqlite")

	out, err := execute(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 4 migration(s)")
	assert.FileExists(t, dbPath)

	out, err = execute(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 0 migration(s)")

	out, err = execute(t, "seed", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 10 request(s), 5 vendor(s), 2 negotiation(s) and 1 purchase order(s)")

	out, err = execute(t, "seed", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 request(s), 0 vendor(s), 0 negotiation(s) and 0 purchase order(s)")
}

func TestMigrate_RequiresSQLite(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "memory")

	_, err := execute(t, "migrate", "--config", cfgPath)
	assert.ErrorContains(t, err, "sqlite driver")
}

func TestExport(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "sqlite")
	_, err := execute(t, "seed", "--config", cfgPath)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "out", "pending.xlsx")
	out, err := execute(t, "export", "--config", cfgPath, "--status", "pending", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 request(s)")

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Requests")
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header plus three pending requests")
}

func TestRequestsCommands(t *testing.T) {
	cfg := container.DefaultConfig()
	cfg.Database.Driver = container.DriverMemory
	cfg.Server.RateLimit = ""
	c, err := container.NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	t.Cleanup(func() { _ = c.Close() })

	api := httptest.NewServer(c.Server().Router())
	t.Cleanup(api.Close)

	out, err := execute(t, "requests", "list", "--url", api.URL, "--status", "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "RFQ-2023-1285")
	assert.Contains(t, out, "1 total")

	out, err = execute(t, "requests", "submit", "RFQ-2023-1285", "--url", api.URL, "--actor", "Esther Howard")
	require.NoError(t, err)
	assert.Contains(t, out, "Request RFQ-2023-1285 is pending.")

	out, err = execute(t, "requests", "approve", "RFQ-2023-1285", "0", "--url", api.URL, "--comment", "ok")
	require.NoError(t, err)
	assert.Contains(t, out, "Step 0 of RFQ-2023-1285 decided, request is pending.")

	out, err = execute(t, "requests", "get", "RFQ-2023-1285", "--url", api.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted for approval")
	assert.True(t, strings.Contains(out, "Approved: ok"), out)

	out, err = execute(t, "requests", "complete", "RFQ-2023-1279", "--url", api.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Request RFQ-2023-1279 is completed.")

	_, err = execute(t, "requests", "get", "RFQ-2023-0001", "--url", api.URL)
	assert.Error(t, err)

	_, err = execute(t, "requests", "approve", "RFQ-2023-1285", "first", "--url", api.URL)
	assert.ErrorContains(t, err, "step must be a number")
}

func TestHealthyServeWiring(t *testing.T) {
	cfg := container.DefaultConfig()
	cfg.Database.Driver = container.DriverMemory
	c, err := container.NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	defer c.Close()

	rec := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

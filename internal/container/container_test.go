package container

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/service"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/domain/filter"
)

func memoryConfig() *Config {
	cfg := DefaultConfig()
	cfg.Database.Driver = DriverMemory
	cfg.Database.Path = ""
	cfg.Worker.SnapshotInterval = time.Hour
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "memory without path", mutate: func(c *Config) { c.Database.Driver = DriverMemory; c.Database.Path = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "database.driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{
			name:    "chain stage without approver",
			mutate:  func(c *Config) { c.Approval.Chain = []entity.ChainStage{{Role: "Finance Director"}} },
			wantErr: "approval.chain[0].approver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewContainer_RequiresConfigAndLogger(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(memoryConfig(), nil)
	assert.Error(t, err)

	bad := memoryConfig()
	bad.Database.Driver = "oracle"
	_, err = NewContainer(bad, zap.NewNop())
	assert.ErrorContains(t, err, "invalid config")
}

func TestContainer_StartAndClose_Memory(t *testing.T) {
	c, err := NewContainer(memoryConfig(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start must fail")

	page, err := c.Services().Requests.List(context.Background(), service.ListRequestsInput{Query: filter.Query{}})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Total)

	health := c.Health()
	assert.True(t, health.Overall)
	assert.Equal(t, "in-memory", health.Components["database"].Message)
	assert.True(t, health.Components["workers"].Healthy)

	rec := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `procurement_requests{status="pending"} 3`)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_StartAndClose_SQLite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "procurement.db")
	cfg.Worker.SnapshotInterval = time.Hour

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	got, err := c.Services().Requests.Get(ctx, "RFQ-2023-1287")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)

	vendors, err := c.Services().Dashboard.Vendors(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 5)

	health := c.Health()
	assert.True(t, health.Components["database"].Healthy)
}

func TestSeedStores_OnlyFillsEmptyStores(t *testing.T) {
	cfg := memoryConfig()
	stores, err := ProvideStores(&cfg.Database, zap.NewNop())
	require.NoError(t, err)

	first, err := SeedStores(context.Background(), stores, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Requests: 10, Vendors: 5, Negotiations: 2, PurchaseOrders: 1}, first)

	second, err := SeedStores(context.Background(), stores, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, second)
}

func TestProvideStores_UnknownDriver(t *testing.T) {
	_, err := ProvideStores(&DatabaseConfig{Driver: "bolt"}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideChainResolver(t *testing.T) {
	fallback := ProvideChainResolver(&ApprovalConfig{})
	stages := fallback("IT")
	require.Len(t, stages, 3)
	assert.Equal(t, "IT Department Head", stages[0].Role)

	configured := ProvideChainResolver(&ApprovalConfig{Chain: []entity.ChainStage{
		{Role: "Controller", Approver: "Leslie Alexander"},
	}})
	assert.Equal(t, []entity.ChainStage{{Role: "Controller", Approver: "Leslie Alexander"}}, configured("Marketing"))
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("id", "RFQ-2023-1287", 42, "skipped", "error", errors.New("boom"), "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "id", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
}

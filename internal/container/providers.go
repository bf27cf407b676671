package container

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/dispatcher"
	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/application/service"
	"github.com/garyjia/procurement-hub/internal/application/workflow"
	"github.com/garyjia/procurement-hub/internal/fixtures"
	"github.com/garyjia/procurement-hub/internal/infrastructure/metrics"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/memory"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/repository"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-hub/internal/infrastructure/worker"
	httpserver "github.com/garyjia/procurement-hub/internal/interfaces/http"
	"github.com/garyjia/procurement-hub/migrations"
	"github.com/garyjia/procurement-hub/pkg/database"
)

// StoreBundle holds the repositories and the transaction manager they share.
type StoreBundle struct {
	Requests    port.RequestRepository
	Vendors     port.VendorRepository
	Idempotency port.IdempotencyRepository
	TxManager   port.TransactionManager

	Negotiations   port.NegotiationRepository
	PurchaseOrders port.PurchaseOrderRepository

	// DB is nil for the memory driver
	DB *database.DB
}

// Close releases the database connection, if any
func (b *StoreBundle) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Requests  service.RequestService
	Dashboard service.DashboardService
	Export    service.ExportService
	Orders    service.OrderService
}

// OpenDatabase opens the SQLite database and applies pending migrations.
// It returns the number of migrations applied.
func OpenDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*database.DB, int, error) {
	if cfg == nil {
		return nil, 0, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, 0, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, 0, err
	}

	var fsys fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		fsys = os.DirFS(cfg.MigrationsDir)
	}

	applied, err := database.NewMigrator(db, logger).RunMigrations(fsys)
	if err != nil {
		db.Close()
		return nil, applied, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, applied, nil
}

// ProvideStores creates the repositories for the configured driver.
func ProvideStores(cfg *DatabaseConfig, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Driver {
	case DriverMemory:
		requests, err := memory.NewRequestStore(logger)
		if err != nil {
			return nil, err
		}
		return &StoreBundle{
			Requests:    requests,
			Vendors:     memory.NewVendorStore(),
			Idempotency: memory.NewIdempotencyStore(),
			TxManager:   memory.NewTxManager(),

			Negotiations:   memory.NewNegotiationStore(),
			PurchaseOrders: memory.NewPurchaseOrderStore(),
		}, nil

	case DriverSQLite, "":
		db, _, err := OpenDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		tx := sqlite.NewDB(db.DB, logger)
		return &StoreBundle{
			Requests:    repository.NewRequestRepository(tx, logger),
			Vendors:     repository.NewVendorRepository(tx, logger),
			Idempotency: repository.NewIdempotencyRepository(tx, logger),
			TxManager:   tx,
			DB:          db,

			Negotiations:   repository.NewNegotiationRepository(tx, logger),
			PurchaseOrders: repository.NewPurchaseOrderRepository(tx, logger),
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// SeedResult reports what SeedStores inserted
type SeedResult struct {
	Requests       int
	Vendors        int
	Negotiations   int
	PurchaseOrders int
}

// SeedStores loads the sample requests, vendors, negotiations and purchase
// orders. Each store is only
// seeded when it is empty, so running it twice changes nothing.
func SeedStores(ctx context.Context, stores *StoreBundle, logger *zap.Logger) (SeedResult, error) {
	var result SeedResult

	err := stores.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := stores.Requests.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}
		if len(existing) == 0 {
			for _, req := range fixtures.Requests() {
				if err := stores.Requests.Create(txCtx, req); err != nil {
					return fmt.Errorf("failed to seed request %s: %w", req.ID, err)
				}
				result.Requests++
			}
		}

		vendors, err := stores.Vendors.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list vendors: %w", err)
		}
		if len(vendors) == 0 {
			for _, v := range fixtures.Vendors() {
				if err := stores.Vendors.Create(txCtx, v); err != nil {
					return fmt.Errorf("failed to seed vendor %s: %w", v.ID, err)
				}
				result.Vendors++
			}
		}

		negotiations, err := stores.Negotiations.List(txCtx, "")
		if err != nil {
			return fmt.Errorf("failed to list negotiations: %w", err)
		}
		if len(negotiations) == 0 {
			for _, n := range fixtures.Negotiations() {
				if err := stores.Negotiations.Create(txCtx, n); err != nil {
					return fmt.Errorf("failed to seed negotiation %s: %w", n.ID, err)
				}
				result.Negotiations++
			}
		}

		orders, err := stores.PurchaseOrders.List(txCtx, "")
		if err != nil {
			return fmt.Errorf("failed to list purchase orders: %w", err)
		}
		if len(orders) == 0 {
			for _, po := range fixtures.PurchaseOrders() {
				if err := stores.PurchaseOrders.Create(txCtx, po); err != nil {
					return fmt.Errorf("failed to seed purchase order %s: %w", po.ID, err)
				}
				result.PurchaseOrders++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	logger.Info("Sample data loaded",
		zap.Int("requests", result.Requests),
		zap.Int("vendors", result.Vendors),
		zap.Int("negotiations", result.Negotiations),
		zap.Int("purchase_orders", result.PurchaseOrders))
	return result, nil
}

// ProvideDispatcher creates the event dispatcher with its subscribers:
// the metrics recorder and the audit log.
func ProvideDispatcher(m *metrics.Metrics, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	d := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}))
	if m != nil {
		m.Subscribe(d)
	}
	service.RegisterAuditLog(d, &zapLoggerAdapter{logger: logger.Named("audit")})
	return d, nil
}

// ProvideWorkflowEngine creates the request lifecycle engine.
func ProvideWorkflowEngine(stores *StoreBundle, d dispatcher.Dispatcher) (workflow.WorkflowEngine, error) {
	if stores == nil {
		return nil, fmt.Errorf("stores are required")
	}
	return workflow.NewEngine(stores.Requests, stores.TxManager, workflow.WithDispatcher(d)), nil
}

// ProvideChainResolver returns the configured chain, or the per-department
// sample chain when none is configured.
func ProvideChainResolver(cfg *ApprovalConfig) service.ChainResolver {
	if cfg != nil && len(cfg.Chain) > 0 {
		return service.StaticChain(cfg.Chain)
	}
	return fixtures.DefaultChain
}

// ProvideServices creates all application services.
func ProvideServices(stores *StoreBundle, engine workflow.WorkflowEngine, chain service.ChainResolver, logger *zap.Logger) (*ServiceBundle, error) {
	if stores == nil {
		return nil, fmt.Errorf("stores are required")
	}
	if engine == nil {
		return nil, fmt.Errorf("workflow engine is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	svcLogger := &zapLoggerAdapter{logger: logger.Named("service")}
	requests := service.NewRequestService(
		stores.Requests,
		stores.Idempotency,
		engine,
		stores.TxManager,
		chain,
		svcLogger,
		service.WithPurchaseOrders(stores.PurchaseOrders, stores.Negotiations),
	)

	return &ServiceBundle{
		Requests:  requests,
		Dashboard: service.NewDashboardService(stores.Requests, stores.Vendors),
		Export:    service.NewExportService(requests, svcLogger),
		Orders:    service.NewOrderService(stores.Negotiations, stores.PurchaseOrders),
	}, nil
}

// ProvideWorkers creates the background workers. They are not started.
func ProvideWorkers(cfg *WorkerConfig, stores *StoreBundle, m *metrics.Metrics, logger *zap.Logger) (*worker.Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("worker config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	manager := worker.NewManager(logger.Named("worker"))
	if m != nil {
		manager.Register(worker.NewStatusSnapshotWorker(
			worker.SnapshotWorkerConfig{Interval: cfg.SnapshotInterval},
			stores.Requests,
			m,
			logger.Named("snapshot"),
		))
	}
	return manager, nil
}

// ProvideServer creates the HTTP server. It is not started.
func ProvideServer(cfg *ServerConfig, services *ServiceBundle, m *metrics.Metrics, logger *zap.Logger) (*httpserver.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if services == nil {
		return nil, fmt.Errorf("services are required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics are required")
	}

	return httpserver.NewServer(
		httpserver.ServerConfig{
			Host:           cfg.Host,
			Port:           cfg.Port,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimit:      cfg.RateLimit,
			Version:        cfg.Version,
		},
		httpserver.Services{
			Requests:  services.Requests,
			Dashboard: services.Dashboard,
			Export:    services.Export,
			Orders:    services.Orders,
		},
		m,
		m.Handler(),
		&zapLoggerAdapter{logger: logger.Named("http")},
	)
}

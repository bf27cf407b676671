// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-hub/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	// RateLimit is a ulule/limiter rate such as "100-M". Empty disables limiting.
	RateLimit string
	Version   string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		AllowedOrigins: []string{"*"},
		RateLimit:      "300-M",
		Version:        "1.0.0",
	}
}

// Services bundles the application services the server exposes
type Services struct {
	Requests  service.RequestService
	Dashboard service.DashboardService
	Export    service.ExportService
	Orders    service.OrderService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	metrics    MetricsRecorder
	metricsH   http.Handler
	limit      gin.HandlerFunc
	logger     Logger
}

// NewServer creates a new HTTP server with the given services.
// metricsHandler serves /metrics and may be nil.
func NewServer(
	config ServerConfig,
	services Services,
	metrics MetricsRecorder,
	metricsHandler http.Handler,
	logger Logger,
) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		metrics:  metrics,
		metricsH: metricsHandler,
		logger:   logger,
	}

	if err := server.setupMiddleware(); err != nil {
		return nil, err
	}
	server.setupRoutes()

	return server, nil
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	if s.metrics != nil {
		s.router.Use(s.metricsMiddleware())
	}
	s.router.Use(s.corsMiddleware())

	if s.config.RateLimit != "" {
		limit, err := s.rateLimitMiddleware()
		if err != nil {
			return fmt.Errorf("invalid rate limit %q: %w", s.config.RateLimit, err)
		}
		s.limit = limit
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services.Requests, s.services.Dashboard, s.services.Export, s.services.Orders, s.logger, s.config.Version)

	s.router.GET("/health", handlers.HealthCheck)
	if s.metricsH != nil {
		s.router.GET("/metrics", gin.WrapH(s.metricsH))
	}

	api := s.router.Group("/api")
	if s.limit != nil {
		api.Use(s.limit)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/procurement", handlers.ProcurementStats)
		dashboard.GET("/vendors", handlers.TopVendors)
		dashboard.GET("/requests", handlers.RecentRequests)
		dashboard.GET("/summary", handlers.Summary)
	}

	requests := api.Group("/requests")
	{
		requests.GET("", handlers.ListRequests)
		requests.POST("", handlers.CreateRequest)
		requests.GET("/:id", handlers.GetRequest)
		requests.PUT("/:id", handlers.UpdateRequest)
		requests.DELETE("/:id", handlers.DeleteRequest)

		requests.POST("/:id/submit", handlers.Submit)
		requests.POST("/:id/reject", handlers.Reject)
		requests.POST("/:id/complete", handlers.Complete)
		requests.POST("/:id/return", handlers.Return)
		requests.POST("/:id/approvals/:step/approve", handlers.ApproveStep)
		requests.POST("/:id/approvals/:step/reject", handlers.RejectStep)

		requests.POST("/:id/items", handlers.AddItem)
		requests.DELETE("/:id/items/:index", handlers.RemoveItem)
		requests.POST("/:id/comments", handlers.AddComment)
	}

	api.GET("/exports/requests", handlers.ExportRequests)
	api.GET("/vendors", handlers.ListVendors)
	api.GET("/negotiations", handlers.ListNegotiations)
	api.GET("/purchase-orders", handlers.ListPurchaseOrders)
	api.GET("/purchase-orders/:id", handlers.GetPurchaseOrder)
}

// Start starts the HTTP server and blocks until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/container"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	a.logger.Info("Starting procurement service",
		zap.String("version", a.cfg.Server.Version),
		zap.Int("port", a.cfg.Server.Port),
		zap.String("driver", a.cfg.Database.Driver))

	c, err := container.NewContainer(a.cfg.ToContainerConfig(), a.logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return fmt.Errorf("failed to start container: %w", err)
	}

	serveErr := c.Server().Start(ctx)

	a.logger.Info("Shutting down server...")
	if err := c.Close(); err != nil {
		a.logger.Error("Shutdown finished with errors", zap.Error(err))
	}
	if serveErr != nil {
		return serveErr
	}

	a.logger.Info("Server exited successfully")
	return nil
}

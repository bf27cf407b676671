package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/container"
	"github.com/garyjia/procurement-hub/internal/domain/filter"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Database.Driver != container.DriverSQLite {
				return fmt.Errorf("migrate needs the sqlite driver, configured driver is %q", a.cfg.Database.Driver)
			}
			cc := a.cfg.ToContainerConfig()
			db, applied, err := container.OpenDatabase(&cc.Database, a.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) to %s\n", applied, db.Path())
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample requests, vendors and orders into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Database.Driver != container.DriverSQLite {
				return fmt.Errorf("seed needs the sqlite driver, configured driver is %q", a.cfg.Database.Driver)
			}
			cc := a.cfg.ToContainerConfig()
			stores, err := container.ProvideStores(&cc.Database, a.logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			result, err := container.SeedStores(cmd.Context(), stores, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d request(s), %d vendor(s), %d negotiation(s) and %d purchase order(s)\n",
				result.Requests, result.Vendors, result.Negotiations, result.PurchaseOrders)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		query  filter.Query
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered request list to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := a.cfg.ToContainerConfig()
			stores, err := container.ProvideStores(&cc.Database, a.logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			if cc.Database.Seed {
				if _, err := container.SeedStores(cmd.Context(), stores, a.logger); err != nil {
					return err
				}
			}

			engine, err := container.ProvideWorkflowEngine(stores, nil)
			if err != nil {
				return err
			}
			services, err := container.ProvideServices(stores, engine, container.ProvideChainResolver(&cc.Approval), a.logger)
			if err != nil {
				return err
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			w := bufio.NewWriter(file)

			n, err := services.Export.WriteRequests(cmd.Context(), query, w)
			if err == nil {
				err = w.Flush()
			}
			if cerr := file.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("failed to export requests: %w", err)
			}

			a.logger.Info("Requests exported", zap.String("path", output), zap.Int("rows", n))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d request(s) to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "requests.xlsx", "Workbook path")
	cmd.Flags().StringVar(&query.Status, "status", "", "Only requests with this status")
	cmd.Flags().StringVar(&query.Department, "department", "", "Only requests of this department")
	cmd.Flags().StringVar(&query.Text, "search", "", "Case-insensitive text search")
	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	"github.com/noah-isme/clinic-scheduler-api/pkg/storage"
)

// App holds the services the commands run against.
type App struct {
	Schedules *service.ScheduleService
	Analytics *service.AnalyticsService
	Exports   *service.ExportService
}

// Options are the persistent flags shared by every command.
type Options struct {
	SnapshotPath string
	ReportsDir   string
}

// Loader builds an App for one invocation.
type Loader func(ctx context.Context, opts Options) (*App, error)

// NewLoader returns a Loader that seeds an in-memory store from the snapshot file.
func NewLoader(cfg *config.Config, logger *zap.Logger) Loader {
	return func(ctx context.Context, opts Options) (*App, error) {
		if opts.SnapshotPath == "" {
			return nil, fmt.Errorf("--snapshot is required")
		}
		snapshot, err := repository.LoadSnapshotFile(opts.SnapshotPath, cfg.Scheduling.DefaultDuration)
		if err != nil {
			return nil, err
		}
		store := repository.NewClinicStore()
		if err := store.Seed(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
		reports, err := storage.NewLocalStorage(opts.ReportsDir)
		if err != nil {
			return nil, fmt.Errorf("init report storage: %w", err)
		}

		metrics := service.NewMetricsService()
		cache := service.NewCacheService(repository.NewMemoryCacheRepository(cfg.Cache.Capacity, cfg.Cache.TTL), metrics, cfg.Cache.TTL, logger, true)
		analytics := service.NewAnalyticsService(store, cache, metrics, cfg.Scheduling, logger)
		return &App{
			Schedules: service.NewScheduleService(store, nil, nil, metrics, cfg.Scheduling, nil, logger),
			Analytics: analytics,
			Exports:   service.NewExportService(analytics, store, reports, logger),
		}, nil
	}
}

// NewRootCmd creates the top-level "clinicctl" command.
func NewRootCmd(load Loader) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Offline workload, coverage and validation checks over a clinic snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.SnapshotPath, "snapshot", "", "Path to a clinic snapshot JSON file")
	root.PersistentFlags().StringVar(&opts.ReportsDir, "reports-dir", "./exports", "Directory receiving exported reports")

	app := func(cmd *cobra.Command) (*App, error) {
		return load(cmd.Context(), *opts)
	}

	root.AddCommand(
		newWorkloadCmd(app),
		newCoverageCmd(app),
		newValidateCmd(app),
		newExportCmd(app),
	)
	return root
}

type appFunc func(cmd *cobra.Command) (*App, error)

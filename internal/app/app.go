// Package app wires configuration, the vector cache, result stores,
// and the computation pipeline into the batch runner and the optional
// REST serving mode.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/skysolve/suntilt/internal/controllers/restserver"
	"github.com/skysolve/suntilt/internal/log"
	"github.com/skysolve/suntilt/internal/pipeline"
	"github.com/skysolve/suntilt/internal/report"
	"github.com/skysolve/suntilt/internal/storage"
	"github.com/skysolve/suntilt/internal/storage/postgres"
	"github.com/skysolve/suntilt/internal/storage/sqlite"
	"github.com/skysolve/suntilt/internal/vectorcache"
	"github.com/skysolve/suntilt/pkg/config"
	"github.com/skysolve/suntilt/pkg/ephemeris"
	"github.com/skysolve/suntilt/pkg/solar"
	"go.uber.org/zap"
)

const (
	defaultCacheDir  = ".suntilt-cache"
	defaultOutputDir = "reports"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run executes the batch computation for every configured site, or,
// with serve set, starts the REST server instead and blocks until
// shutdown.
func (a *App) Run(ctx context.Context, serve bool) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cacheDir := cfg.Simulation.CacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}
	cache, err := vectorcache.New(cacheDir)
	if err != nil {
		return fmt.Errorf("error initializing vector cache: %w", err)
	}

	stores, err := a.openStores(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range stores {
			if err := s.Close(); err != nil {
				a.logger.Warnf("error closing results store: %v", err)
			}
		}
	}()

	p := pipeline.New(cache, a.logger)

	// Signal handling covers both the batch phase and serving.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			log.Info("shutdown signal received, initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if !serve {
		return a.runBatch(ctx, cfg, p, stores)
	}

	restController, err := restserver.NewController(ctx, &wg, cfg, p, a.logger)
	if err != nil {
		return fmt.Errorf("error creating REST server: %w", err)
	}
	if err := restController.StartController(); err != nil {
		return err
	}
	log.Info("Application started successfully")

	<-ctx.Done()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// runBatch processes the configured sites one at a time. Sequential
// processing keeps memory bounded to a single site-year of vectors; the
// optimizer already parallelizes within each site.
func (a *App) runBatch(ctx context.Context, cfg *config.ConfigData, p *pipeline.Pipeline, stores []storage.RunStore) error {
	var custom *solar.PanelOrientation
	if cfg.Simulation.CustomEWTilt != nil {
		custom = &solar.PanelOrientation{
			EWTilt: *cfg.Simulation.CustomEWTilt,
			NSTilt: *cfg.Simulation.CustomNSTilt,
		}
	}

	outputDir := cfg.Simulation.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	writer, err := report.NewWriter(outputDir)
	if err != nil {
		return err
	}

	results := make([]*pipeline.Result, 0, len(cfg.Sites))
	for _, s := range cfg.Sites {
		site := ephemeris.Site{
			Name:      s.Name,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Altitude:  s.Altitude,
			Timezone:  s.Timezone,
		}

		a.logger.Infow("starting site run",
			"site", site.Name,
			"year", cfg.Simulation.Year)

		result, err := p.Run(ctx, pipeline.Options{
			Site:          site,
			Year:          cfg.Simulation.Year,
			EfficiencyPct: cfg.Simulation.EfficiencyPct,
			Custom:        custom,
		})
		if err != nil {
			return fmt.Errorf("site %q: %w", site.Name, err)
		}

		a.logger.Infow("site run complete",
			"site", site.Name,
			"best_ew_tilt", result.Best.EWTilt,
			"best_ns_tilt", result.Best.NSTilt,
			"tracking_wh", result.TrackingWh,
			"best_fixed_wh", result.BestFixedWh,
			"degenerate", result.Degenerate)

		if err := writer.WriteMonthly(result); err != nil {
			return err
		}

		run := storage.RunFromResult(result, cfg.Simulation.EfficiencyPct,
			cfg.Simulation.CustomEWTilt, cfg.Simulation.CustomNSTilt)
		for _, store := range stores {
			if err := store.SaveRun(ctx, run); err != nil {
				a.logger.Errorf("error persisting run for site %q: %v", site.Name, err)
			}
		}

		results = append(results, result)
	}

	if err := writer.WriteSummary(results); err != nil {
		return err
	}
	a.logger.Infof("batch complete: %d site(s), reports written to %s", len(results), outputDir)
	return nil
}

// openStores connects every configured results backend.
func (a *App) openStores(cfg *config.ConfigData) ([]storage.RunStore, error) {
	var stores []storage.RunStore

	if cfg.Storage.SQLite != nil && cfg.Storage.SQLite.Path != "" {
		s, err := sqlite.New(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("error opening SQLite results store: %w", err)
		}
		stores = append(stores, s)
	}

	if cfg.Storage.Postgres != nil && cfg.Storage.Postgres.ConnectionString != "" {
		s, err := postgres.New(cfg.Storage.Postgres.ConnectionString)
		if err != nil {
			for _, opened := range stores {
				opened.Close()
			}
			return nil, fmt.Errorf("error opening Postgres results store: %w", err)
		}
		stores = append(stores, s)
	}

	return stores, nil
}

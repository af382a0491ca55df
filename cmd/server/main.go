// Package main is the entry point for the Treasury Bill chart service.
// It caches FiscalData auction series in a local SQLite database with a
// 24-hour TTL and serves them as chart data over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/tbills/internal/clients/fiscaldata"
	"github.com/aristath/tbills/internal/config"
	"github.com/aristath/tbills/internal/database"
	"github.com/aristath/tbills/internal/modules/bills"
	"github.com/aristath/tbills/internal/modules/charts"
	"github.com/aristath/tbills/internal/scheduler"
	"github.com/aristath/tbills/internal/server"
	"github.com/aristath/tbills/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting tbills")

	// The store handle is acquired once per process and released on every
	// exit path.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "bills_cache.db"),
		Profile: database.ProfileCache,
		Name:    "bills_cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer func() {
		if err := cacheDB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close cache database")
		}
	}()

	log.Info().
		Str("db", cacheDB.Name()).
		Str("path", cacheDB.Path()).
		Msg("Cache database ready")

	store := bills.NewStore(cacheDB.Conn(), log)
	if err := store.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	fetcher := fiscaldata.NewClient(cfg.FiscalDataBaseURL, cfg.IssuedSince, log)
	manager := bills.NewManager(store, fetcher, log)
	chartService := charts.NewService(manager, log)

	sched := scheduler.New(log)
	refreshJob := bills.NewRefreshJob(manager, log)
	if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
	}

	// Warm the cache before serving; a failed warm-up is not fatal, the
	// first request will retry the fetch.
	if err := sched.RunNow(refreshJob); err != nil {
		log.Warn().Err(err).Msg("Initial cache warm-up failed")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:     log,
		CacheDB: cacheDB,
		Manager: manager,
		Charts:  chartService,
		DataDir: cfg.DataDir,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server stopped unexpectedly")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

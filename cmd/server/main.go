package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/cache"
	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/database"
	"github.com/stemsi/dm-report/internal/handler"
	"github.com/stemsi/dm-report/internal/logger"
	"github.com/stemsi/dm-report/internal/repository"
	"github.com/stemsi/dm-report/internal/router"
	"github.com/stemsi/dm-report/internal/seed"
	"github.com/stemsi/dm-report/internal/service"
	"github.com/stemsi/dm-report/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("info", "pretty")
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("db_driver", cfg.DBDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting DM Report")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Store (migrations applied first) ─────────────────────────
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}
	reportCache := cache.NewReportCache(rdb, cfg.ReportCacheTTL)

	// ─── Initialize Repositories ───────────────────────────────────────
	recordRepo := repository.NewCaseRecordRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ─── Seed From CSV ─────────────────────────────────────────────────
	// Runs once before traffic; a malformed file aborts startup.
	if _, err := seed.NewLoader(recordRepo, cfg.SeedCSVPath, reportCache, log).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	recordService := service.NewRecordService(recordRepo, reportCache, log)
	reportService := service.NewReportService(reportRepo, reportCache, log)
	exportService := service.NewExportService(recordRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Record: handler.NewRecordHandler(recordService, log),
		Report: handler.NewReportHandler(reportService, log),
		Export: handler.NewExportHandler(exportService, log),
		Health: handler.NewHealthHandler(db, healthCache(reportCache), log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// healthCache only reports on the cache when one is configured.
func healthCache(c *cache.ReportCache) handler.Pinger {
	if !c.Enabled() {
		return nil
	}
	return handler.PingerFunc(c.Ping)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

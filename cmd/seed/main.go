package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/dm-report/internal/cache"
	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/database"
	"github.com/stemsi/dm-report/internal/logger"
	"github.com/stemsi/dm-report/internal/repository"
	"github.com/stemsi/dm-report/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("info", "pretty")
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	var path string
	flag.StringVar(&path, "file", cfg.SeedCSVPath, "CSV file to load into an empty store")
	flag.Parse()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	recordRepo := repository.NewCaseRecordRepository(db)
	loader := seed.NewLoader(recordRepo, path, cache.NewReportCache(rdb, cfg.ReportCacheTTL), log)

	fmt.Printf("=== Seeding from %s ===\n", path)

	res, err := loader.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}
	if res.Skipped {
		fmt.Printf("Skipped: %s\n", res.Reason)
		return
	}

	total, err := recordRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count records")
	}
	fmt.Printf("Inserted %d records (%d total)\n", res.Inserted, total)
}

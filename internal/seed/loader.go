package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/repository"
)

// Invalidator drops derived data after the store changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Result describes what a Run did.
type Result struct {
	// Inserted is the number of rows written; zero when skipped.
	Inserted int
	// Skipped is set when the store already had rows or the file was absent.
	Skipped bool
	Reason  string
}

// Loader populates an empty store from a CSV file.
type Loader struct {
	repo  repository.CaseRecordRepository
	path  string
	cache Invalidator
	log   zerolog.Logger
}

// NewLoader creates a Loader reading path. cache may be nil.
func NewLoader(repo repository.CaseRecordRepository, path string, cache Invalidator, log zerolog.Logger) *Loader {
	return &Loader{
		repo:  repo,
		path:  path,
		cache: cache,
		log:   log.With().Str("component", "seed_loader").Logger(),
	}
}

// Run seeds the store once. A non-empty store or a missing file is a no-op; a
// malformed file fails without writing anything.
func (l *Loader) Run(ctx context.Context) (Result, error) {
	exists, err := l.repo.Exists(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("check existing records: %w", err)
	}
	if exists {
		l.log.Debug().Msg("Store already populated, skipping seed")
		return Result{Skipped: true, Reason: "store not empty"}, nil
	}

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Info().Str("path", l.path).Msg("Seed file not found, skipping seed")
		return Result{Skipped: true, Reason: "seed file not found"}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	l.log.Info().Str("path", l.path).Msg("Seeding database from CSV...")

	records, err := ParseCSV(f)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", l.path, err)
	}
	if err := l.repo.InsertBatch(ctx, records); err != nil {
		return Result{}, fmt.Errorf("insert seed records: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Invalidate(ctx); err != nil {
			l.log.Warn().Err(err).Msg("Report cache invalidation failed")
		}
	}

	l.log.Info().Int("records", len(records)).Msg("Database seeded successfully")
	return Result{Inserted: len(records)}, nil
}

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/database/migrations"
)

// NewMigrator builds a golang-migrate instance over the embedded migrations for the
// configured driver. It owns a dedicated connection; call Close when done.
func NewMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	var (
		sqlDB  *sql.DB
		driver migratedb.Driver
		err    error
	)

	switch cfg.DBDriver {
	case config.DriverSQLite:
		sqlDB, err = sql.Open("sqlite", sqliteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		driver, err = sqlitemigrate.WithInstance(sqlDB, &sqlitemigrate.Config{})
	case config.DriverPostgres:
		sqlDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres db: %w", err)
		}
		driver, err = pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, cfg.DBDriver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.DBDriver, driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration.
func Migrate(cfg *config.Config, log zerolog.Logger) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}
	log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Schema migrated")
	return nil
}

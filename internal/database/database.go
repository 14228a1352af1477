package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/config"
)

// Dialect identifies the SQL flavour behind a DB handle.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB is the store handle shared by every repository. Queries are written with
// '?' placeholders and passed through Rebind before execution.
type DB struct {
	*sql.DB
	Dialect Dialect

	onClose func()
}

// Open applies migrations and connects to the backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if err := Migrate(cfg, log); err != nil {
		return nil, err
	}

	if cfg.DBDriver == config.DriverPostgres {
		return OpenPostgres(ctx, cfg, log)
	}
	return OpenSQLite(ctx, cfg.SQLitePath, log)
}

// Close closes the sql handle and any pool underneath it.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	err := db.DB.Close()
	if db.onClose != nil {
		db.onClose()
	}
	return err
}

// Rebind rewrites '?' placeholders into the dialect's native form.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

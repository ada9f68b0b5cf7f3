// Package migration applies the embedded SQL schema with goose.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"

	"docstore/internal/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrations is the schema, one goose file per version.
var Migrations fs.FS = mustSub(embedded, "sql")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// NewProvider builds a goose provider over the embedded migrations.
// Extra options are appended after the defaults.
func NewProvider(db *sql.DB, opts ...goose.ProviderOption) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, Migrations, opts...)
}

// EnsureMigrated applies every pending migration. A Postgres advisory lock
// keeps concurrent API and worker startups from migrating twice.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	return migrate(ctx, db, log, goose.WithSessionLocker(locker))
}

func migrate(ctx context.Context, db *sql.DB, log *logger.Logger, opts ...goose.ProviderOption) error {
	log = log.Named("database")
	start := time.Now()

	log.Infow("db_migration_check", "status", "starting")

	provider, err := NewProvider(db, opts...)
	if err != nil {
		log.Errorw("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
		)
		return fmt.Errorf("migration setup: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		log.Infow("db_migration_step",
			"status", "success",
			"migration_version", r.Source.Version,
			"migration_file", r.Source.Path,
			"step_duration_ms", r.Duration.Milliseconds(),
		)
	}
	if err != nil {
		log.Errorw("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("migrate: %w", err)
	}

	if len(results) == 0 {
		log.Infow("db_migration_skip",
			"status", "success",
			"detail", "schema up to date",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Infow("db_migration_success",
		"status", "success",
		"steps_applied", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Status reports every known migration and whether it has been applied.
func Status(ctx context.Context, db *sql.DB) ([]*goose.MigrationStatus, error) {
	provider, err := NewProvider(db)
	if err != nil {
		return nil, fmt.Errorf("migration setup: %w", err)
	}
	return provider.Status(ctx)
}

// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
Package migration applies pending SQL schema migrations at startup.

It wraps golang-migrate with the pgx/v5 driver so the server converges the
schema to the current version before accepting traffic. Migrations are plain
SQL files under data/migrations, named NNNNNN_description.{up,down}.sql.
*/
package migration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

/*
Run applies all pending "up" migrations from the given directory.

Parameters:
  - databaseURL: PostgreSQL connection string (postgres://...)
  - migrationPath: Filesystem directory containing the SQL migration files
  - logger: Structured logger for progress reporting

Returns:
  - error: If migrations cannot be loaded or applied. A database already at
    the latest version is not an error.
*/
func Run(databaseURL, migrationPath string, logger *slog.Logger) error {

	sourceURL := "file://" + migrationPath

	migrator, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil {
			logger.Warn("migration_source_close_failed", slog.String("error", sourceErr.Error()))
		}
		if dbErr != nil {
			logger.Warn("migration_db_close_failed", slog.String("error", dbErr.Error()))
		}
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_no_change")
			return nil
		}
		return fmt.Errorf("migration: failed to apply: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("migration: failed to read version: %w", err)
	}

	logger.Info("migration_applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)

	return nil
}

package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending schema migration embedded in the
// binary.
func RunMigrations(db *sql.DB, logger zerolog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite3 driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	logger.Debug().Msg("Running database migrations")
	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug().Msg("Database is already up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		logger.Info().Msg("Database migrations applied successfully")
	}
	return nil
}

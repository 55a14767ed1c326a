// Package platform owns the pulsecheck schema: the projects registry,
// the append-only score_snapshots ledger, and the project_leases table
// the recompute orchestrator coordinates through.
package platform

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable keeps pulsecheck's migration bookkeeping out of the
// way of anything else sharing the database.
const migrationsTable = "pulsecheck_schema_migrations"

// AutoMigrate brings the pulsecheck schema up to date. Both pulsed
// startup and `pulse migrate` run it; applying no pending migrations is
// not an error.
func AutoMigrate(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply pulsecheck migrations: %w", err)
	}

	return nil
}

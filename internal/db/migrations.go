// internal/db/migrations.go
package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for the connected driver.
// The migrator is not closed: closing it would close the shared *sql.DB.
func (d *Database) Migrate() error {
	var (
		driver database.Driver
		dir    string
		err    error
	)

	switch d.DriverName() {
	case "postgres":
		dir = "migrations/postgres"
		driver, err = postgres.WithInstance(d.DB.DB, &postgres.Config{})
	case "sqlite3":
		dir = "migrations/sqlite"
		driver, err = sqlite3.WithInstance(d.DB.DB, &sqlite3.Config{})
	default:
		return fmt.Errorf("unsupported database driver: %s", d.DriverName())
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, d.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("initialize migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	logrus.Info("MIGRATIONS: database is up to date")
	return nil
}

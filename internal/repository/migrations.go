package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultMigrationsPath is relative to the working directory of the service
const DefaultMigrationsPath = "internal/repository/migrations"

// RunMigrations applies all pending migrations.
// A dirty database is forced back to the previous version and migrated again once.
func RunMigrations(databaseURL, migrationsPath string) error {
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if !errors.As(err, &dirtyErr) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil {
		return fmt.Errorf("get current migration version: %w", verr)
	}
	if !dirty {
		return fmt.Errorf("dirty migrations at version %d and could not auto-fix", dirtyErr.Version)
	}

	forceVersion := max(int(version)-1, 0)
	if ferr := m.Force(forceVersion); ferr != nil {
		return fmt.Errorf("force clean migration version %d: %w", forceVersion, ferr)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rerun migrations after dirty state: %w", err)
	}

	return nil
}

package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending migrations from source (e.g.
// "file://./db/migrations"). It reports whether anything was applied.
func Migrate(source, databaseURL string) (bool, error) {
	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return false, fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return true, nil
}

// MigrationVersion returns the current schema version
func MigrationVersion(source, databaseURL string) (uint, bool, error) {
	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return 0, false, fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

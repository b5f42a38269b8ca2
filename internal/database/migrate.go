package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// nilVersion is the version golang-migrate records for a database with no
// migrations applied.
const nilVersion = -1

func newSource() (source.Driver, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return src, nil
}

// newMigrator builds a migrate instance over the embedded SQL files.
func newMigrator(dbURL string) (*migrate.Migrate, source.Driver, error) {
	if dbURL == "" {
		return nil, nil, fmt.Errorf("database URL is empty")
	}

	src, err := newSource()
	if err != nil {
		return nil, nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, src, nil
}

// cleanVersion returns the version a database left dirty at version dirty must
// be forced to so that the failed migration runs again on the next Up: the
// migration preceding it, or nilVersion when it is the first one.
func cleanVersion(src source.Driver, dirty uint) (int, error) {
	r, _, err := src.ReadUp(dirty)
	if err != nil {
		return 0, fmt.Errorf("dirty version %d is not a known migration: %w", dirty, err)
	}
	r.Close()

	prev, err := src.Prev(dirty)
	if errors.Is(err, fs.ErrNotExist) {
		return nilVersion, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find migration before %d: %w", dirty, err)
	}
	return int(prev), nil
}

// RunMigrations applies all pending database migrations.
// A database left dirty by an interrupted run is rolled back to the last clean
// version, so the interrupted migration is applied again.
func RunMigrations(dbURL string) error {
	log := logrus.WithField("component", "migrations")

	m, src, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.WithError(err).Warn("could not read migration version")
	}

	if dirty {
		clean, err := cleanVersion(src, version)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"dirty_version": version,
			"forced_to":     clean,
		}).Warn("database in dirty state, retrying failed migration")
		if err := m.Force(clean); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			version, _, _ := m.Version()
			log.WithField("version", version).Info("database is up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ = m.Version()
	log.WithField("version", version).Info("migrations complete")
	return nil
}

// GetMigrationVersion returns the current migration version and dirty flag.
func GetMigrationVersion(dbURL string) (uint, bool, error) {
	m, _, err := newMigrator(dbURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	return m.Version()
}

// RollbackMigration rolls back the last applied migration.
func RollbackMigration(dbURL string) error {
	m, _, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	version, _, _ := m.Version()
	logrus.WithField("version", version).Info("rolled back migration")
	return nil
}

package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/bft-labs/shiplog/internal/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateUp applies every pending embedded migration.
func migrateUp(db *sql.DB, logger ports.Logger) error {
	m, err := newMigrate(db, logger)
	if err != nil {
		return err
	}
	// m is not closed: closing it would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// schemaVersion returns the applied migration version.
func schemaVersion(db *sql.DB, logger ports.Logger) (uint, bool, error) {
	m, err := newMigrate(db, logger)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrate(db *sql.DB, logger ports.Logger) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = migrateLogger{logger: logger}
	return m, nil
}

// migrateLogger routes migrate's output to the service logger.
type migrateLogger struct {
	logger ports.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug("migrate: " + fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool {
	return false
}

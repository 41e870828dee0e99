package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
)

// newMigrator builds migrate instance over file migrations in migrationsPath
func newMigrator(db *sql.DB, migrationsPath string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// version returns 0 for a database that never ran migrations
func version(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return v, dirty, nil
}

// RunMigrations applies pending news_items and theme_reports migrations
func RunMigrations(db *sql.DB, migrationsPath string) error {
	logger.Info("running database migrations",
		zap.String("path", migrationsPath),
	)

	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}

	current, dirty, err := version(m)
	if err != nil {
		return err
	}

	if dirty {
		logger.Warn("database is in dirty state, forcing version",
			zap.Uint("version", current),
		)
		if err := m.Force(int(current)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema is up to date", zap.Uint("version", current))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	applied, _, err := version(m)
	if err != nil {
		return err
	}

	logger.Info("migrations applied",
		zap.Uint("old_version", current),
		zap.Uint("new_version", applied),
	)

	return nil
}

// RollbackMigration rolls back the last applied migration
func RollbackMigration(db *sql.DB, migrationsPath string) error {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}

	current, _, err := version(m)
	if err != nil {
		return err
	}
	if current == 0 {
		logger.Info("nothing to roll back")
		return nil
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	logger.Info("migration rolled back",
		zap.Uint("from_version", current),
	)

	return nil
}

// GetMigrationVersion returns current schema version and dirty flag
func GetMigrationVersion(db *sql.DB, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	return version(m)
}

// Package migration manages the shared document schema with versioned SQL
// scripts embedded in the binary.
package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/shared/logger"
)

//go:embed scripts/*.sql
var scripts embed.FS

// GooseMigrator applies the embedded scripts. The scripts stay within the
// SQL subset shared by MySQL and SQLite.
type GooseMigrator struct {
	logger logger.Interface
}

func NewGooseMigrator(log logger.Interface) *GooseMigrator {
	return &GooseMigrator{logger: log}
}

func dialectFor(db *gorm.DB) (goose.Dialect, error) {
	switch name := db.Dialector.Name(); name {
	case "mysql":
		return goose.DialectMySQL, nil
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported migration dialect %q", name)
	}
}

func (m *GooseMigrator) provider(db *gorm.DB) (*goose.Provider, error) {
	dialect, err := dialectFor(db)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	fsys, err := fs.Sub(scripts, "scripts")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}

	p, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return p, nil
}

// Migrate brings the schema up to the latest script.
func (m *GooseMigrator) Migrate(ctx context.Context, db *gorm.DB) error {
	p, err := m.provider(db)
	if err != nil {
		return err
	}

	currentVersion, err := p.GetDBVersion(ctx)
	if err != nil {
		m.logger.Errorw("failed to get current version", "error", err)
		return fmt.Errorf("failed to get current version: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		m.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	if len(results) > 0 {
		m.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion,
			"applied", len(results))
	}
	return nil
}

// Version returns the applied schema version.
func (m *GooseMigrator) Version(ctx context.Context, db *gorm.DB) (int64, error) {
	p, err := m.provider(db)
	if err != nil {
		return 0, err
	}

	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

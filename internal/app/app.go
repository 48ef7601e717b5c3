// Package app wires the progress store and the backup guard shared by the binaries.
package app

import (
	"fmt"

	"github.com/BenWassa/vox/internal/backup"
	"github.com/BenWassa/vox/internal/clock"
	"github.com/BenWassa/vox/internal/config"
	"github.com/BenWassa/vox/internal/database"
	"github.com/BenWassa/vox/internal/snapshot"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Stores bundles the open database handle with the repositories built on it.
type Stores struct {
	DB       *sqlx.DB
	Progress *database.ProgressRepository
	Catalog  *database.CatalogRepository
	Guard    *backup.Guard
	Clock    clock.Clock
}

// Open connects to the configured database and prepares the backup guard.
// SQLite is backed up with VACUUM INTO; other drivers fall back to a JSON export.
func Open(cfg *config.Config, clk clock.Clock, logger *zap.Logger) (*Stores, error) {
	if clk == nil {
		clk = clock.System{}
	}

	db, err := database.Open(database.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return nil, err
	}

	progress := database.NewProgressRepository(db)

	var source backup.Snapshotter = progress
	if db.DriverName() != database.DriverSQLite {
		source = snapshot.NewFileSnapshotter(progress, clk)
	}

	guard, err := backup.NewGuard(cfg.Backup.Dir, source, clk, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare backups: %w", err)
	}

	logger.Info("store opened",
		zap.String("driver", db.DriverName()),
		zap.String("backup_dir", cfg.Backup.Dir),
		zap.String("backup_format", source.Extension()),
	)

	return &Stores{
		DB:       db,
		Progress: progress,
		Catalog:  database.NewCatalogRepository(db),
		Guard:    guard,
		Clock:    clk,
	}, nil
}

// Close releases the database handle.
func (s *Stores) Close() error {
	return s.DB.Close()
}

package database

import (
	"context"
	"fmt"
)

// Snapshot writes a consistent copy of the whole SQLite database to dst.
// dst must not exist yet.
func (r *ProgressRepository) Snapshot(ctx context.Context, dst string) error {
	if r.db.DriverName() != DriverSQLite {
		return fmt.Errorf("file snapshots need the %s driver, have %s", DriverSQLite, r.db.DriverName())
	}
	if _, err := r.db.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return storageErr("snapshot database", err)
	}
	return nil
}

// Extension is the file suffix of snapshots produced by Snapshot
func (r *ProgressRepository) Extension() string {
	return ".db"
}

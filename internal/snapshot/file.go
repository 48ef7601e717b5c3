package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/BenWassa/vox/internal/clock"
)

// FileSnapshotter writes the JSON payload to a file. It backs up stores that
// cannot copy themselves to a file, such as Postgres.
type FileSnapshotter struct {
	src   Source
	clock clock.Clock
}

// NewFileSnapshotter creates a snapshotter reading from src
func NewFileSnapshotter(src Source, clk clock.Clock) *FileSnapshotter {
	if clk == nil {
		clk = clock.System{}
	}
	return &FileSnapshotter{src: src, clock: clk}
}

// Snapshot writes the payload to dst, which must not exist
func (f *FileSnapshotter) Snapshot(ctx context.Context, dst string) error {
	data, err := Encode(ctx, f.src, f.clock.Now())
	if err != nil {
		return err
	}

	file, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %v", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write snapshot: %v", err)
	}
	// the payload must be on disk before the mutation it protects
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync snapshot: %v", err)
	}
	return file.Close()
}

// Extension implements backup.Snapshotter
func (f *FileSnapshotter) Extension() string {
	return ".json"
}

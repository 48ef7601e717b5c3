// Package backup takes a point-in-time copy of the progress store before every mutation.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BenWassa/vox/internal/clock"
	"github.com/BenWassa/vox/pkg/models"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Snapshotter writes a full copy of the store to a new file
type Snapshotter interface {
	Snapshot(ctx context.Context, dst string) error
	// Extension is the file suffix of the copies, e.g. ".db"
	Extension() string
}

// Guard runs mutations only after a successful snapshot.
// Snapshot and mutation form one critical section: two guarded operations never interleave.
type Guard struct {
	mu     sync.Mutex
	dir    string
	source Snapshotter
	clock  clock.Clock
	logger *zap.Logger
}

// NewGuard creates a guard that stores backups in dir
func NewGuard(dir string, source Snapshotter, clk clock.Clock, logger *zap.Logger) (*Guard, error) {
	if dir == "" {
		return nil, fmt.Errorf("backup directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create backup directory: %v", models.ErrStorage, err)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Guard{
		dir:    dir,
		source: source,
		clock:  clk,
		logger: logger.Named("backup"),
	}, nil
}

// Run snapshots the store, then calls fn. If the snapshot fails fn is never called
// and an ErrStorage error is returned. Errors from fn are returned unchanged.
func (g *Guard) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	info, err := g.snapshot(ctx, op)
	if err != nil {
		g.logger.Error("backup failed, operation aborted", zap.String("op", op), zap.Error(err))
		return err
	}
	g.logger.Debug("backup created", zap.String("op", op), zap.String("path", info.Path))

	return fn(ctx)
}

func (g *Guard) snapshot(ctx context.Context, op string) (models.BackupInfo, error) {
	now := g.clock.Now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.DefaultEntropy())
	if err != nil {
		return models.BackupInfo{}, fmt.Errorf("%w: failed to generate backup id: %v", models.ErrStorage, err)
	}

	op = sanitize(op)
	path := filepath.Join(g.dir, id.String()+"_"+op+g.source.Extension())

	if err := g.source.Snapshot(ctx, path); err != nil {
		os.Remove(path)
		return models.BackupInfo{}, fmt.Errorf("%w: failed to back up before %s: %v", models.ErrStorage, op, err)
	}

	// Backups are never modified after creation
	if err := os.Chmod(path, 0o444); err != nil {
		return models.BackupInfo{}, fmt.Errorf("%w: failed to seal backup: %v", models.ErrStorage, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return models.BackupInfo{}, fmt.Errorf("%w: failed to stat backup: %v", models.ErrStorage, err)
	}

	return models.BackupInfo{
		ID:        id.String(),
		Operation: op,
		CreatedAt: now.UTC(),
		Path:      path,
		Size:      fi.Size(),
	}, nil
}

// List returns the backup history, oldest first
func (g *Guard) List() ([]models.BackupInfo, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read backup directory: %v", models.ErrStorage, err)
	}

	backups := []models.BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
		}
		info.Path = filepath.Join(g.dir, entry.Name())
		backups = append(backups, info)
	}

	// ULIDs sort in creation order
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ID < backups[j].ID
	})
	return backups, nil
}

// parseName splits "<ulid>_<op><ext>"
func parseName(name string) (models.BackupInfo, bool) {
	if len(name) < ulid.EncodedSize+2 || name[ulid.EncodedSize] != '_' {
		return models.BackupInfo{}, false
	}
	id, err := ulid.ParseStrict(name[:ulid.EncodedSize])
	if err != nil {
		return models.BackupInfo{}, false
	}

	op := name[ulid.EncodedSize+1:]
	op = strings.TrimSuffix(op, filepath.Ext(op))

	return models.BackupInfo{
		ID:        id.String(),
		Operation: op,
		CreatedAt: ulid.Time(id.Time()).UTC(),
	}, true
}

func sanitize(op string) string {
	op = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, op)
	if op == "" {
		return "op"
	}
	return op
}

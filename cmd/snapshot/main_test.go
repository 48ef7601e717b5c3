package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BenWassa/vox/internal/app"
	"github.com/BenWassa/vox/internal/config"
	"github.com/BenWassa/vox/internal/database"
	"github.com/BenWassa/vox/internal/snapshot"
	"github.com/BenWassa/vox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: database.DriverSQLite, DSN: filepath.Join(dir, "vox.db")},
		Backup:   config.BackupConfig{Dir: filepath.Join(dir, "backups")},
	}

	stores, err := app.Open(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	_, err = stores.Catalog.SeedVocab(context.Background(), []models.VocabItem{
		{ID: "v001", Hanzi: "你", Pinyin: "nǐ", Gloss: "you"},
		{ID: "v002", Hanzi: "好", Pinyin: "hǎo", Gloss: "good"},
	}, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = stores.Catalog.SeedGrammar(context.Background(), []models.GrammarItem{
		{ID: "g001", Structure: "S + 很 + Adj", Pattern: "我很好", Explanation: "adjective predicate"},
	})
	require.NoError(t, err)

	return cfg
}

func TestRun_ExportImportBackups(t *testing.T) {
	cfg := seededConfig(t)
	ctx := context.Background()
	logger := zap.NewNop()

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, []string{"export"}, &out, logger))
	assert.Contains(t, out.String(), `"version": 1`)
	assert.Contains(t, out.String(), `"v002"`)

	file := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, run(ctx, cfg, []string{"export", "-o", file}, &out, logger))
	data, err := os.ReadFile(file)
	require.NoError(t, err)

	require.NoError(t, run(ctx, cfg, []string{"import", file}, &out, logger))

	out.Reset()
	require.NoError(t, run(ctx, cfg, []string{"backups"}, &out, logger))
	assert.Contains(t, out.String(), "OPERATION")
	assert.Contains(t, out.String(), "import")

	// import leaves the same payload behind
	out.Reset()
	require.NoError(t, run(ctx, cfg, []string{"export", "-o", file}, &out, logger))
	again, err := os.ReadFile(file)
	require.NoError(t, err)

	wantVocab, wantGrammar, err := snapshot.Decode(data)
	require.NoError(t, err)
	gotVocab, gotGrammar, err := snapshot.Decode(again)
	require.NoError(t, err)
	assert.Equal(t, wantVocab, gotVocab)
	assert.Equal(t, wantGrammar, gotGrammar)
}

func TestRun_Errors(t *testing.T) {
	cfg := seededConfig(t)
	ctx := context.Background()
	logger := zap.NewNop()
	var out bytes.Buffer

	assert.Error(t, run(ctx, cfg, []string{"restore"}, &out, logger))
	assert.Error(t, run(ctx, cfg, []string{"import"}, &out, logger))
	assert.Error(t, run(ctx, cfg, []string{"import", filepath.Join(t.TempDir(), "missing.json")}, &out, logger))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"vocab_progress": []}`), 0o644))
	err := run(ctx, cfg, []string{"import", bad}, &out, logger)
	assert.ErrorIs(t, err, models.ErrInvalidFormat)
}

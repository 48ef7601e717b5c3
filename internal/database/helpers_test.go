package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "vox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func vocabItems(n int) []models.VocabItem {
	items := make([]models.VocabItem, n)
	for i := range items {
		items[i] = models.VocabItem{
			ID:     fmt.Sprintf("v%03d", i+1),
			Hanzi:  fmt.Sprintf("字%d", i+1),
			Pinyin: fmt.Sprintf("zi%d", i+1),
			Gloss:  fmt.Sprintf("word %d", i+1),
		}
	}
	return items
}

func grammarItems(n int) []models.GrammarItem {
	items := make([]models.GrammarItem, n)
	for i := range items {
		items[i] = models.GrammarItem{
			ID:          fmt.Sprintf("g%03d", i+1),
			Structure:   "Subj + 是 + Noun",
			Pattern:     fmt.Sprintf("pattern %d", i+1),
			Explanation: "identity",
		}
	}
	return items
}

// seededRepos opens a database with nVocab vocab items and nGrammar grammar points due at t0
func seededRepos(t *testing.T, nVocab, nGrammar int) (*ProgressRepository, *CatalogRepository) {
	t.Helper()
	db := openTestDB(t)
	catalog := NewCatalogRepository(db)
	ctx := context.Background()

	_, err := catalog.SeedVocab(ctx, vocabItems(nVocab), t0)
	require.NoError(t, err)
	_, err = catalog.SeedGrammar(ctx, grammarItems(nGrammar))
	require.NoError(t, err)

	return NewProgressRepository(db), catalog
}

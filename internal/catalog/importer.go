// Package catalog loads vocab and grammar catalogs from JSON, CSV or Excel files
// and seeds them into the store.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BenWassa/vox/pkg/models"
)

// ImportConfig defines the import configuration.
// Column settings only apply to CSV and Excel files.
type ImportConfig struct {
	FilePath  string // Path to the JSON, CSV or Excel file
	SheetName string // Excel sheet; the first sheet when empty
	StartRow  int    // The row to start importing from (1-based index)

	IDColumn     string
	HanziColumn  string
	PinyinColumn string
	// EnglishColumn may hold several meanings separated by ";"
	EnglishColumn string

	StructureColumn   string
	PatternColumn     string
	ExplanationColumn string
}

// DefaultImportConfig returns the default import configuration for path
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:          path,
		StartRow:          2, // skip header
		IDColumn:          "A",
		HanziColumn:       "B",
		PinyinColumn:      "C",
		EnglishColumn:     "D",
		StructureColumn:   "B",
		PatternColumn:     "C",
		ExplanationColumn: "D",
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Loaded         int
	Created        int // items that got a fresh progress record
	Skipped        int
	Errors         []string

	rows []int // source row of each loaded record, for CSV and Excel
}

// rowNumber maps the i-th record back to its source row. JSON entries count from 1.
func (r *ImportResult) rowNumber(i int) int {
	if i < len(r.rows) {
		return r.rows[i]
	}
	return i + 1
}

func (r *ImportResult) skip(row int, format string, args ...interface{}) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", row, fmt.Sprintf(format, args...)))
}

// Seeder stores catalog items together with their initial progress
type Seeder interface {
	SeedVocab(ctx context.Context, items []models.VocabItem, now time.Time) (int, error)
	SeedGrammar(ctx context.Context, items []models.GrammarItem) (int, error)
}

// Guard takes a backup before seeding touches the progress tables
type Guard interface {
	Run(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

// ImportVocab loads vocab items from a file and seeds them behind the guard.
// Existing items keep their progress; missing progress rows are recreated.
func ImportVocab(ctx context.Context, seeder Seeder, guard Guard, config ImportConfig, now time.Time) (*ImportResult, error) {
	items, result, err := LoadVocab(config)
	if err != nil {
		return nil, err
	}
	err = guard.Run(ctx, "seed_vocab", func(ctx context.Context) error {
		created, err := seeder.SeedVocab(ctx, items, now)
		result.Created = created
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed vocab: %w", err)
	}
	return result, nil
}

// ImportGrammar loads grammar points from a file and seeds them behind the guard
func ImportGrammar(ctx context.Context, seeder Seeder, guard Guard, config ImportConfig) (*ImportResult, error) {
	items, result, err := LoadGrammar(config)
	if err != nil {
		return nil, err
	}
	err = guard.Run(ctx, "seed_grammar", func(ctx context.Context) error {
		created, err := seeder.SeedGrammar(ctx, items)
		result.Created = created
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed grammar: %w", err)
	}
	return result, nil
}

// LoadVocab reads vocab items. Bad rows are skipped and reported in the result.
func LoadVocab(config ImportConfig) ([]models.VocabItem, *ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}

	var items []models.VocabItem
	if isJSON(config.FilePath) {
		records, err := readVocabJSON(config.FilePath)
		if err != nil {
			return nil, nil, err
		}
		items = records
	} else {
		rows, err := readRows(config)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			items = append(items, models.VocabItem{
				ID:     cell(row.cells, config.IDColumn),
				Hanzi:  cell(row.cells, config.HanziColumn),
				Pinyin: cell(row.cells, config.PinyinColumn),
				Gloss:  joinGloss(strings.Split(cell(row.cells, config.EnglishColumn), ";")),
			})
			result.rows = append(result.rows, row.number)
		}
	}

	return validateVocab(items, result), result, nil
}

// LoadGrammar reads grammar points. Bad rows are skipped and reported in the result.
func LoadGrammar(config ImportConfig) ([]models.GrammarItem, *ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}

	var items []models.GrammarItem
	if isJSON(config.FilePath) {
		records, err := readGrammarJSON(config.FilePath)
		if err != nil {
			return nil, nil, err
		}
		items = records
	} else {
		rows, err := readRows(config)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			items = append(items, models.GrammarItem{
				ID:          cell(row.cells, config.IDColumn),
				Structure:   cell(row.cells, config.StructureColumn),
				Pattern:     cell(row.cells, config.PatternColumn),
				Explanation: cell(row.cells, config.ExplanationColumn),
			})
			result.rows = append(result.rows, row.number)
		}
	}

	return validateGrammar(items, result), result, nil
}

func validateVocab(items []models.VocabItem, result *ImportResult) []models.VocabItem {
	seen := make(map[string]bool, len(items))
	valid := make([]models.VocabItem, 0, len(items))

	for i, item := range items {
		row := result.rowNumber(i)
		result.TotalProcessed++

		switch {
		case item.ID == "":
			result.skip(row, "id cannot be empty")
		case item.Hanzi == "":
			result.skip(row, "hanzi cannot be empty")
		case seen[item.ID]:
			result.skip(row, "duplicate id %q", item.ID)
		default:
			seen[item.ID] = true
			valid = append(valid, item)
		}
	}

	result.Loaded = len(valid)
	return valid
}

func validateGrammar(items []models.GrammarItem, result *ImportResult) []models.GrammarItem {
	seen := make(map[string]bool, len(items))
	valid := make([]models.GrammarItem, 0, len(items))

	for i, item := range items {
		row := result.rowNumber(i)
		result.TotalProcessed++

		switch {
		case item.ID == "":
			result.skip(row, "id cannot be empty")
		case item.Structure == "":
			result.skip(row, "structure cannot be empty")
		case seen[item.ID]:
			result.skip(row, "duplicate id %q", item.ID)
		default:
			seen[item.ID] = true
			valid = append(valid, item)
		}
	}

	result.Loaded = len(valid)
	return valid
}

// joinGloss trims every meaning and joins the non-empty ones with ", "
func joinGloss(meanings []string) string {
	kept := make([]string, 0, len(meanings))
	for _, m := range meanings {
		if m = strings.TrimSpace(m); m != "" {
			kept = append(kept, m)
		}
	}
	return strings.Join(kept, ", ")
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

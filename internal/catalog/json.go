package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BenWassa/vox/pkg/models"
)

// vocabEntry is one element of a vocab JSON file such as vocab_a1.json
type vocabEntry struct {
	ID      string   `json:"id"`
	Hanzi   string   `json:"hanzi"`
	Pinyin  string   `json:"pinyin"`
	English meanings `json:"english"`
}

// meanings accepts either a list of strings or a single string
type meanings []string

func (m *meanings) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*m = list
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err != nil {
		return fmt.Errorf("english must be a string or a list of strings")
	}
	*m = []string{single}
	return nil
}

func readVocabJSON(path string) ([]models.VocabItem, error) {
	var entries []vocabEntry
	if err := readJSON(path, &entries); err != nil {
		return nil, err
	}

	items := make([]models.VocabItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.VocabItem{
			ID:     strings.TrimSpace(e.ID),
			Hanzi:  strings.TrimSpace(e.Hanzi),
			Pinyin: strings.TrimSpace(e.Pinyin),
			Gloss:  joinGloss(e.English),
		})
	}
	return items, nil
}

func readGrammarJSON(path string) ([]models.GrammarItem, error) {
	var items []models.GrammarItem
	if err := readJSON(path, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ID = strings.TrimSpace(items[i].ID)
		items[i].Structure = strings.TrimSpace(items[i].Structure)
	}
	return items, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return nil
}

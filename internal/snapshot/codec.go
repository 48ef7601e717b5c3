// Package snapshot converts the full progress state to and from the JSON interchange payload.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BenWassa/vox/internal/clock"
	"github.com/BenWassa/vox/pkg/models"
)

// Version is the only payload version this codec reads and writes
const Version = 1

// Source reads every progress record in identity order
type Source interface {
	AllVocab(ctx context.Context) ([]models.VocabProgress, error)
	AllGrammar(ctx context.Context) ([]models.GrammarProgress, error)
}

// Store is a Source that can also be overwritten in bulk
type Store interface {
	Source
	ReplaceAll(ctx context.Context, vocab []models.VocabProgress, grammar []models.GrammarProgress) error
}

// Guard wraps the destructive import with a backup
type Guard interface {
	Run(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

// Payload is the interchange document
type Payload struct {
	Version         int             `json:"version"`
	ExportDate      time.Time       `json:"export_date"`
	VocabProgress   []VocabRecord   `json:"vocab_progress"`
	GrammarProgress []GrammarRecord `json:"grammar_progress"`
}

// VocabRecord is one vocab progress entry of the payload
type VocabRecord struct {
	ID         string     `json:"id"`
	Box        int        `json:"box"`
	LastReview *time.Time `json:"last_review"`
	NextReview time.Time  `json:"next_review"`
}

// GrammarRecord is one grammar progress entry of the payload
type GrammarRecord struct {
	ID            string               `json:"id"`
	Status        models.GrammarStatus `json:"status"`
	PracticeCount int                  `json:"practice_count"`
}

// Codec exports and imports the progress store
type Codec struct {
	store Store
	guard Guard
	clock clock.Clock
}

// NewCodec creates a codec over store. Imports run under guard.
func NewCodec(store Store, guard Guard, clk clock.Clock) *Codec {
	if clk == nil {
		clk = clock.System{}
	}
	return &Codec{store: store, guard: guard, clock: clk}
}

// Export serializes every progress record
func (c *Codec) Export(ctx context.Context) ([]byte, error) {
	return Encode(ctx, c.store, c.clock.Now())
}

// Import validates data and, if it is a well-formed payload, replaces all progress with it.
// Progress of items missing from the payload is dropped. On any error the store is unchanged.
func (c *Codec) Import(ctx context.Context, data []byte) error {
	vocab, grammar, err := Decode(data)
	if err != nil {
		return err
	}

	err = c.guard.Run(ctx, "import", func(ctx context.Context) error {
		return c.store.ReplaceAll(ctx, vocab, grammar)
	})
	if errors.Is(err, models.ErrNotFound) {
		// the payload refers to items this catalog does not have
		return fmt.Errorf("%w: %w", models.ErrInvalidFormat, err)
	}
	return err
}

// Encode builds the payload from src. It is used both for exports and for JSON backups.
func Encode(ctx context.Context, src Source, now time.Time) ([]byte, error) {
	vocab, err := src.AllVocab(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocab progress: %w", err)
	}
	grammar, err := src.AllGrammar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar progress: %w", err)
	}

	p := Payload{
		Version:         Version,
		ExportDate:      now.UTC(),
		VocabProgress:   make([]VocabRecord, 0, len(vocab)),
		GrammarProgress: make([]GrammarRecord, 0, len(grammar)),
	}
	for _, v := range vocab {
		p.VocabProgress = append(p.VocabProgress, VocabRecord{
			ID:         v.VocabID,
			Box:        v.Box,
			LastReview: v.LastReview,
			NextReview: v.NextReview,
		})
	}
	for _, g := range grammar {
		p.GrammarProgress = append(p.GrammarProgress, GrammarRecord{
			ID:            g.GrammarID,
			Status:        g.Status,
			PracticeCount: g.PracticeCount,
		})
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// Package dashboard summarizes mastery across the whole catalog.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/BenWassa/vox/internal/clock"
	"github.com/BenWassa/vox/pkg/models"
)

// Counter is the read side of the progress store used for statistics
type Counter interface {
	CountByBox(ctx context.Context) (map[int]int, error)
	CountByStatus(ctx context.Context) (map[models.GrammarStatus]int, error)
	CountDue(ctx context.Context, at time.Time) (int, error)
}

// Aggregator computes dashboard summaries. It never writes.
type Aggregator struct {
	store Counter
	clock clock.Clock
}

// NewAggregator creates an aggregator over the given store
func NewAggregator(store Counter, clk clock.Clock) *Aggregator {
	if clk == nil {
		clk = clock.System{}
	}
	return &Aggregator{store: store, clock: clk}
}

// Summary reads every progress record and reports totals, mastered counts and
// the per-box and per-status distributions.
func (a *Aggregator) Summary(ctx context.Context) (models.Summary, error) {
	boxes, err := a.store.CountByBox(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("failed to count boxes: %w", err)
	}
	statuses, err := a.store.CountByStatus(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("failed to count statuses: %w", err)
	}
	due, err := a.store.CountDue(ctx, a.clock.Now())
	if err != nil {
		return models.Summary{}, fmt.Errorf("failed to count due cards: %w", err)
	}

	s := models.Summary{
		BoxCounts:    make(map[int]int, models.MasteredBox),
		StatusCounts: make(map[models.GrammarStatus]int, len(models.GrammarStatuses)),
		DueNow:       due,
	}
	for box := models.MinBox; box <= models.MasteredBox; box++ {
		s.BoxCounts[box] = boxes[box]
		s.VocabTotal += boxes[box]
	}
	for _, status := range models.GrammarStatuses {
		s.StatusCounts[status] = statuses[status]
		s.GrammarTotal += statuses[status]
	}

	s.VocabMastered = s.BoxCounts[models.MasteredBox]
	s.GrammarMastered = s.StatusCounts[models.StatusMastered]
	s.VocabMasteryPercent = models.Percent(s.VocabMastered, s.VocabTotal)
	s.GrammarMasteryPercent = models.Percent(s.GrammarMastered, s.GrammarTotal)

	return s, nil
}

package review

import (
	"context"
	"math/rand"
	"time"

	"github.com/BenWassa/vox/pkg/models"
)

// Picker chooses which due vocab item to present next
type Picker interface {
	Pick(ctx context.Context, at time.Time) (*models.VocabProgress, error)
}

// DueLister is the part of the progress store pickers read from
type DueLister interface {
	GetDue(ctx context.Context, at time.Time) (*models.VocabProgress, error)
	ListDue(ctx context.Context, at time.Time, limit int) ([]models.VocabProgress, error)
}

// EarliestDuePicker always returns the item that has been due the longest,
// ties broken by identity. Same store state, same answer.
type EarliestDuePicker struct {
	store DueLister
}

// NewEarliestDuePicker creates the default picker
func NewEarliestDuePicker(store DueLister) *EarliestDuePicker {
	return &EarliestDuePicker{store: store}
}

// Pick implements Picker
func (p *EarliestDuePicker) Pick(ctx context.Context, at time.Time) (*models.VocabProgress, error) {
	return p.store.GetDue(ctx, at)
}

// ShuffledPicker picks at random among the first window due items.
// The random source is seeded explicitly so a run can be replayed.
// It is not safe for concurrent use.
type ShuffledPicker struct {
	store  DueLister
	window int
	rnd    *rand.Rand
}

// NewShuffledPicker creates a picker drawing from the window earliest due items
func NewShuffledPicker(store DueLister, window int, seed int64) *ShuffledPicker {
	if window < 1 {
		window = 1
	}
	return &ShuffledPicker{
		store:  store,
		window: window,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Pick implements Picker
func (p *ShuffledPicker) Pick(ctx context.Context, at time.Time) (*models.VocabProgress, error) {
	due, err := p.store.ListDue(ctx, at, p.window)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}
	chosen := due[p.rnd.Intn(len(due))]
	return &chosen, nil
}

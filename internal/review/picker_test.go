package review

import (
	"context"
	"testing"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDue []models.VocabProgress

func (s staticDue) GetDue(ctx context.Context, at time.Time) (*models.VocabProgress, error) {
	due, _ := s.ListDue(ctx, at, 1)
	if len(due) == 0 {
		return nil, nil
	}
	return &due[0], nil
}

func (s staticDue) ListDue(_ context.Context, at time.Time, limit int) ([]models.VocabProgress, error) {
	var out []models.VocabProgress
	for _, p := range s {
		if !p.NextReview.After(at) && (limit == 0 || len(out) < limit) {
			out = append(out, p)
		}
	}
	return out, nil
}

func dueItems() staticDue {
	return staticDue{
		{VocabID: "v001", Box: 1, NextReview: t0.Add(-3 * time.Hour)},
		{VocabID: "v002", Box: 1, NextReview: t0.Add(-2 * time.Hour)},
		{VocabID: "v003", Box: 1, NextReview: t0.Add(-time.Hour)},
		{VocabID: "v004", Box: 1, NextReview: t0},
		{VocabID: "v005", Box: 1, NextReview: t0.Add(time.Hour)},
	}
}

func TestShuffledPickerIsReproducible(t *testing.T) {
	ctx := context.Background()
	a := NewShuffledPicker(dueItems(), 3, 42)
	b := NewShuffledPicker(dueItems(), 3, 42)

	for i := 0; i < 20; i++ {
		pa, err := a.Pick(ctx, t0)
		require.NoError(t, err)
		pb, err := b.Pick(ctx, t0)
		require.NoError(t, err)
		assert.Equal(t, pa.VocabID, pb.VocabID)
		assert.Contains(t, []string{"v001", "v002", "v003"}, pa.VocabID)
	}
}

func TestShuffledPickerNeverPicksFutureItems(t *testing.T) {
	ctx := context.Background()
	p := NewShuffledPicker(dueItems(), 10, 7)

	for i := 0; i < 50; i++ {
		picked, err := p.Pick(ctx, t0)
		require.NoError(t, err)
		assert.NotEqual(t, "v005", picked.VocabID)
	}

	picked, err := p.Pick(ctx, t0.Add(-4*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, picked)
}

func TestEarliestDuePicker(t *testing.T) {
	p := NewEarliestDuePicker(dueItems())
	picked, err := p.Pick(context.Background(), t0)
	require.NoError(t, err)
	assert.Equal(t, "v001", picked.VocabID)
}

func TestEngineWithShuffledPicker(t *testing.T) {
	f := newFixture(t, 5, 0)
	WithPicker(NewShuffledPicker(f.store, 5, 1))(f.engine)

	card, err := f.engine.NextCard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.True(t, card.Due(t0))
}

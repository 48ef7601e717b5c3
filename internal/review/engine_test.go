package review

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/BenWassa/vox/internal/backup"
	"github.com/BenWassa/vox/internal/clock"
	"github.com/BenWassa/vox/internal/database"
	"github.com/BenWassa/vox/internal/spaced_repetition"
	"github.com/BenWassa/vox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

type fixture struct {
	engine *Engine
	store  *database.ProgressRepository
	guard  *backup.Guard
	clock  *clock.Manual
}

func newFixture(t *testing.T, nVocab, nGrammar int, opts ...Option) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: filepath.Join(dir, "vox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	catalog := database.NewCatalogRepository(db)
	vocab := make([]models.VocabItem, nVocab)
	for i := range vocab {
		vocab[i] = models.VocabItem{ID: fmt.Sprintf("v%03d", i+1), Hanzi: "字", Pinyin: "zi", Gloss: "character"}
	}
	grammar := make([]models.GrammarItem, nGrammar)
	for i := range grammar {
		grammar[i] = models.GrammarItem{ID: fmt.Sprintf("g%03d", i+1), Structure: "A 是 B", Pattern: "是", Explanation: "to be"}
	}
	_, err = catalog.SeedVocab(ctx, vocab, t0)
	require.NoError(t, err)
	_, err = catalog.SeedGrammar(ctx, grammar)
	require.NoError(t, err)

	store := database.NewProgressRepository(db)
	clk := clock.NewManual(t0)
	guard, err := backup.NewGuard(filepath.Join(dir, "backups"), store, clk, nil)
	require.NoError(t, err)

	return &fixture{
		engine: NewEngine(store, catalog, guard, spaced_repetition.NewLeitner(), clk, opts...),
		store:  store,
		guard:  guard,
		clock:  clk,
	}
}

func (f *fixture) backups(t *testing.T) int {
	t.Helper()
	list, err := f.guard.List()
	require.NoError(t, err)
	return len(list)
}

func TestNextCardPresentsEarliestDue(t *testing.T) {
	f := newFixture(t, 3, 0)
	ctx := context.Background()

	card, err := f.engine.NextCard(ctx)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "v001", card.ID)

	state, current := f.engine.State()
	assert.Equal(t, Presented, state)
	assert.Equal(t, "v001", current)

	// asking again without an outcome yields the same card
	again, err := f.engine.NextCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v001", again.ID)
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t, 1, 0)
	ctx := context.Background()

	card, err := f.engine.NextCard(ctx)
	require.NoError(t, err)
	require.NotNil(t, card)

	_, err = f.engine.Reveal(ctx, card.ID)
	require.NoError(t, err)
	state, _ := f.engine.State()
	assert.Equal(t, Revealed, state)

	f.clock.Advance(time.Minute)
	progress, err := f.engine.SubmitOutcome(ctx, card.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Box)
	assert.True(t, t0.Add(time.Minute).AddDate(0, 0, 3).Equal(progress.NextReview))
	require.NotNil(t, progress.LastReview)
	assert.True(t, t0.Add(time.Minute).Equal(*progress.LastReview))

	state, current := f.engine.State()
	assert.Equal(t, Idle, state)
	assert.Empty(t, current)
	assert.Equal(t, 1, f.backups(t))

	card, err = f.engine.NextCard(ctx)
	require.NoError(t, err)
	assert.Nil(t, card)
	state, _ = f.engine.State()
	assert.Equal(t, NoneDue, state)

	f.clock.Advance(3 * 24 * time.Hour)
	card, err = f.engine.NextCard(ctx)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, 2, card.Box)
}

func TestSubmitOutcomeWithoutReveal(t *testing.T) {
	f := newFixture(t, 2, 0)

	progress, err := f.engine.SubmitOutcome(context.Background(), "v002", false)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Box)
	assert.True(t, t0.AddDate(0, 0, 1).Equal(progress.NextReview))
}

func TestSubmitOutcomeFromBoxThree(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		correct  bool
		wantBox  int
		wantDays int
	}{
		{"correct", true, 4, 14},
		{"miss", false, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1, 0)
			require.NoError(t, f.store.UpdateVocab(ctx, models.VocabProgress{VocabID: "v001", Box: 3, NextReview: t0}))

			progress, err := f.engine.SubmitOutcome(ctx, "v001", tt.correct)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBox, progress.Box)
			assert.True(t, t0.AddDate(0, 0, tt.wantDays).Equal(progress.NextReview))

			stored, err := f.store.GetVocab(ctx, "v001")
			require.NoError(t, err)
			assert.Equal(t, tt.wantBox, stored.Box)
		})
	}
}

func TestRepeatedSubmissionsAreAllApplied(t *testing.T) {
	f := newFixture(t, 1, 0)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := f.engine.SubmitOutcome(ctx, "v001", true)
		require.NoError(t, err)
	}

	stored, err := f.store.GetVocab(ctx, "v001")
	require.NoError(t, err)
	assert.Equal(t, models.MasteredBox, stored.Box)
	assert.Equal(t, 7, f.backups(t))
	assert.Equal(t, SessionStats{Correct: 7, Reviewed: 7, Accuracy: 100}, f.engine.Stats())
}

func TestSubmitOutcomeUnknownItem(t *testing.T) {
	f := newFixture(t, 1, 0)

	_, err := f.engine.SubmitOutcome(context.Background(), "v404", true)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, f.backups(t), "no backup for a rejected operation")
}

type brokenGuard struct{}

func (brokenGuard) Run(context.Context, string, func(context.Context) error) error {
	return fmt.Errorf("%w: disk full", models.ErrStorage)
}

func TestFailedBackupLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t, 1, 1)
	ctx := context.Background()
	f.engine.guard = brokenGuard{}

	_, err := f.engine.SubmitOutcome(ctx, "v001", true)
	assert.ErrorIs(t, err, models.ErrStorage)
	_, err = f.engine.SetStatus(ctx, "g001", models.StatusMastered)
	assert.ErrorIs(t, err, models.ErrStorage)

	stored, err := f.store.GetVocab(ctx, "v001")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Box)
	assert.Nil(t, stored.LastReview)

	grammar, err := f.store.GetGrammar(ctx, "g001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnseen, grammar.Status)
	assert.Zero(t, f.engine.Stats().Reviewed)
}

// stateGuard notes the engine state seen while the mutation runs
type stateGuard struct {
	inner  Guard
	engine *Engine
	seen   []State
}

func (g *stateGuard) Run(ctx context.Context, op string, fn func(context.Context) error) error {
	return g.inner.Run(ctx, op, func(ctx context.Context) error {
		state, _ := g.engine.State()
		g.seen = append(g.seen, state)
		return fn(ctx)
	})
}

func TestOutcomePassesThroughCommittedToIdle(t *testing.T) {
	f := newFixture(t, 1, 0)
	ctx := context.Background()
	spy := &stateGuard{inner: f.guard, engine: f.engine}
	f.engine.guard = spy

	_, err := f.engine.NextCard(ctx)
	require.NoError(t, err)
	_, err = f.engine.Reveal(ctx, "v001")
	require.NoError(t, err)

	_, err = f.engine.SubmitOutcome(ctx, "v001", true)
	require.NoError(t, err)
	assert.Equal(t, []State{Committed}, spy.seen)

	state, _ := f.engine.State()
	assert.Equal(t, Idle, state)
}

func TestFailedOutcomeRestoresState(t *testing.T) {
	f := newFixture(t, 1, 0)
	ctx := context.Background()

	_, err := f.engine.NextCard(ctx)
	require.NoError(t, err)
	_, err = f.engine.Reveal(ctx, "v001")
	require.NoError(t, err)

	f.engine.guard = brokenGuard{}
	_, err = f.engine.SubmitOutcome(ctx, "v001", false)
	assert.ErrorIs(t, err, models.ErrStorage)

	state, current := f.engine.State()
	assert.Equal(t, Revealed, state)
	assert.Equal(t, "v001", current)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, 0, 2)
	ctx := context.Background()

	progress, err := f.engine.SetStatus(ctx, "g001", models.StatusMastered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMastered, progress.Status)

	// any transition is allowed, and repeating one changes nothing
	for i := 0; i < 2; i++ {
		progress, err = f.engine.SetStatus(ctx, "g001", models.StatusSeen)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSeen, progress.Status)
		assert.Zero(t, progress.PracticeCount)
	}

	_, err = f.engine.SetStatus(ctx, "g001", "bogus")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
	_, err = f.engine.SetStatus(ctx, "g404", models.StatusSeen)
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := f.store.GetGrammar(ctx, "g001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSeen, stored.Status)
	assert.Equal(t, 3, f.backups(t))
}

func TestRecordPractice(t *testing.T) {
	f := newFixture(t, 0, 1)
	ctx := context.Background()

	progress, err := f.engine.RecordPractice(ctx, "g001")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.PracticeCount)
	assert.Equal(t, models.StatusPracticed, progress.Status)

	_, err = f.engine.SetStatus(ctx, "g001", models.StatusMastered)
	require.NoError(t, err)
	progress, err = f.engine.RecordPractice(ctx, "g001")
	require.NoError(t, err)
	assert.Equal(t, 2, progress.PracticeCount)
	assert.Equal(t, models.StatusMastered, progress.Status)

	_, err = f.engine.RecordPractice(ctx, "g404")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStatsAccuracy(t *testing.T) {
	f := newFixture(t, 2, 0)
	ctx := context.Background()

	assert.Equal(t, SessionStats{}, f.engine.Stats())

	for _, correct := range []bool{true, false, true, true} {
		_, err := f.engine.SubmitOutcome(ctx, "v001", correct)
		require.NoError(t, err)
	}

	stats := f.engine.Stats()
	assert.Equal(t, 3, stats.Correct)
	assert.Equal(t, 1, stats.Incorrect)
	assert.Equal(t, 4, stats.Reviewed)
	assert.InDelta(t, 75.0, stats.Accuracy, 1e-9)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "none_due", NoneDue.String())
	text, err := Revealed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "revealed", string(text))
}

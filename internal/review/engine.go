// Package review drives a review session: present a due card, reveal it, record the outcome.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/BenWassa/vox/internal/clock"
	"github.com/BenWassa/vox/internal/spaced_repetition"
	"github.com/BenWassa/vox/pkg/models"
	"go.uber.org/zap"
)

// State of the session. A card goes Idle, Presented, Revealed, Committed and back
// to Idle. Committed only lasts while SubmitOutcome writes the outcome; a failed
// write restores the previous state.
type State int

const (
	Idle State = iota
	Presented
	Revealed
	Committed
	// NoneDue means the last request for a card found nothing to review
	NoneDue
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Presented:
		return "presented"
	case Revealed:
		return "revealed"
	case Committed:
		return "committed"
	case NoneDue:
		return "none_due"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText lets State travel as a string in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Store is the progress store as seen by the engine
type Store interface {
	DueLister
	GetVocab(ctx context.Context, id string) (*models.VocabProgress, error)
	UpdateVocab(ctx context.Context, p models.VocabProgress) error
	GetGrammar(ctx context.Context, id string) (*models.GrammarProgress, error)
	UpdateGrammar(ctx context.Context, p models.GrammarProgress) error
}

// Catalog looks up the presentation view of a vocab item
type Catalog interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
}

// Guard wraps every mutation with a backup
type Guard interface {
	Run(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

// SessionStats is the tally of outcomes recorded by this engine
type SessionStats struct {
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Reviewed  int     `json:"reviewed"`
	Accuracy  float64 `json:"accuracy"`
}

// Engine runs one learner's review session.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	store   Store
	catalog Catalog
	guard   Guard
	policy  *spaced_repetition.Leitner
	clock   clock.Clock
	picker  Picker
	logger  *zap.Logger

	state   State
	current string
	stats   SessionStats
}

// Option configures an Engine
type Option func(*Engine)

// WithPicker replaces the default earliest-due picker
func WithPicker(p Picker) Option {
	return func(e *Engine) {
		e.picker = p
	}
}

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a session engine
func NewEngine(store Store, catalog Catalog, guard Guard, policy *spaced_repetition.Leitner, clk clock.Clock, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		catalog: catalog,
		guard:   guard,
		policy:  policy,
		clock:   clk,
		logger:  zap.NewNop(),
		state:   Idle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.picker == nil {
		e.picker = NewEarliestDuePicker(store)
	}
	if e.policy == nil {
		e.policy = spaced_repetition.NewLeitner()
	}
	if e.clock == nil {
		e.clock = clock.System{}
	}
	e.logger = e.logger.Named("review")
	return e
}

// NextCard presents the next due card. It returns a nil card and moves to NoneDue
// when nothing is due at the current instant.
func (e *Engine) NextCard(ctx context.Context) (*models.Card, error) {
	now := e.clock.Now()

	due, err := e.picker.Pick(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to pick next card: %w", err)
	}
	if due == nil {
		e.state = NoneDue
		e.current = ""
		return nil, nil
	}

	card, err := e.catalog.GetCard(ctx, due.VocabID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %s: %w", due.VocabID, err)
	}

	e.state = Presented
	e.current = card.ID
	return card, nil
}

// Reveal shows the answer side of a card. It does not gate SubmitOutcome:
// an outcome may be recorded for a card that was never revealed.
func (e *Engine) Reveal(ctx context.Context, id string) (*models.Card, error) {
	card, err := e.catalog.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.current == id && e.state == Presented {
		e.state = Revealed
	}
	return card, nil
}

// SubmitOutcome records a correct or missed answer for a vocab item and
// returns the stored state. The session is Idle afterwards.
// Every call is applied, repeated submissions included.
func (e *Engine) SubmitOutcome(ctx context.Context, id string, correct bool) (models.VocabProgress, error) {
	if _, err := e.store.GetVocab(ctx, id); err != nil {
		return models.VocabProgress{}, err
	}

	now := e.clock.Now()
	prev := e.state
	e.state = Committed
	var updated models.VocabProgress
	err := e.guard.Run(ctx, "record_outcome", func(ctx context.Context) error {
		current, err := e.store.GetVocab(ctx, id)
		if err != nil {
			return err
		}
		updated = e.policy.Apply(*current, correct, now)
		return e.store.UpdateVocab(ctx, updated)
	})
	if err != nil {
		e.state = prev
		return models.VocabProgress{}, err
	}

	e.record(correct)
	e.state = Idle
	if e.current == id {
		e.current = ""
	}

	e.logger.Debug("outcome recorded",
		zap.String("vocab_id", id),
		zap.Bool("correct", correct),
		zap.Int("box", updated.Box),
		zap.Time("next_review", updated.NextReview),
	)
	return updated, nil
}

// SetStatus labels a grammar point. Setting the status it already has is a no-op
// apart from the backup. The practice count is not touched.
func (e *Engine) SetStatus(ctx context.Context, id string, status models.GrammarStatus) (models.GrammarProgress, error) {
	if !status.Valid() {
		return models.GrammarProgress{}, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	if _, err := e.store.GetGrammar(ctx, id); err != nil {
		return models.GrammarProgress{}, err
	}

	var updated models.GrammarProgress
	err := e.guard.Run(ctx, "set_status", func(ctx context.Context) error {
		current, err := e.store.GetGrammar(ctx, id)
		if err != nil {
			return err
		}
		updated = *current
		updated.Status = status
		return e.store.UpdateGrammar(ctx, updated)
	})
	if err != nil {
		return models.GrammarProgress{}, err
	}
	return updated, nil
}

// RecordPractice counts one practice round of a grammar point.
// Unseen and seen points become practiced; practiced and mastered keep their status.
func (e *Engine) RecordPractice(ctx context.Context, id string) (models.GrammarProgress, error) {
	if _, err := e.store.GetGrammar(ctx, id); err != nil {
		return models.GrammarProgress{}, err
	}

	var updated models.GrammarProgress
	err := e.guard.Run(ctx, "record_practice", func(ctx context.Context) error {
		current, err := e.store.GetGrammar(ctx, id)
		if err != nil {
			return err
		}
		updated = *current
		updated.PracticeCount++
		if updated.Status == models.StatusUnseen || updated.Status == models.StatusSeen {
			updated.Status = models.StatusPracticed
		}
		return e.store.UpdateGrammar(ctx, updated)
	})
	if err != nil {
		return models.GrammarProgress{}, err
	}
	return updated, nil
}

func (e *Engine) record(correct bool) {
	if correct {
		e.stats.Correct++
	} else {
		e.stats.Incorrect++
	}
	e.stats.Reviewed = e.stats.Correct + e.stats.Incorrect
	e.stats.Accuracy = models.Percent(e.stats.Correct, e.stats.Reviewed)
}

// Stats returns the outcomes recorded since the engine was created
func (e *Engine) Stats() SessionStats {
	return e.stats
}

// State returns the session state and the identity of the presented card, if any
func (e *Engine) State() (State, string) {
	return e.state, e.current
}

// Now is the engine's notion of the current instant
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

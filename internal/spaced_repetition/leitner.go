package spaced_repetition

import (
	"fmt"
	"strings"
	"time"

	"github.com/BenWassa/vox/pkg/models"
)

// MissPolicy decides where a card goes after a wrong answer
type MissPolicy int

const (
	// ResetOnMiss sends the card back to box 1
	ResetOnMiss MissPolicy = iota
	// StepBackOnMiss moves the card down a single box
	StepBackOnMiss
)

// ParseMissPolicy maps a config value ("reset", "step_back") to a MissPolicy
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset":
		return ResetOnMiss, nil
	case "step_back", "stepback":
		return StepBackOnMiss, nil
	}
	return ResetOnMiss, fmt.Errorf("unknown miss policy %q", s)
}

// String returns the config spelling of the policy.
func (p MissPolicy) String() string {
	if p == StepBackOnMiss {
		return "step_back"
	}
	return "reset"
}

// Leitner implements the box ladder used to schedule vocab reviews
type Leitner struct {
	// Review intervals in days for boxes 1..5
	IntervalDays []int
	// Interval for mastered cards (box 6). Mastered cards stay in rotation, just rarely.
	MasteredIntervalDays int
	// What happens on a wrong answer
	OnMiss MissPolicy
}

// NewLeitner creates a ladder with the default intervals
func NewLeitner() *Leitner {
	return &Leitner{
		IntervalDays:         []int{1, 3, 7, 14, 30},
		MasteredIntervalDays: 365 * 5,
		OnMiss:               ResetOnMiss,
	}
}

// Interval returns the number of days a card waits in the given box.
func (l *Leitner) Interval(box int) int {
	checkBox(box)
	if box <= len(l.IntervalDays) && box < models.MasteredBox {
		return l.IntervalDays[box-1]
	}
	return l.MasteredIntervalDays
}

// Advance moves a card one step through the ladder.
// A correct answer promotes the card (capped at the mastered box), a miss applies OnMiss.
// The card is due again Interval(newBox) days after now.
// Boxes outside 1..6 are a programming error and panic.
func (l *Leitner) Advance(box int, correct bool, now time.Time) (int, time.Time) {
	checkBox(box)

	newBox := box
	if correct {
		newBox = min(box+1, models.MasteredBox)
	} else {
		switch l.OnMiss {
		case StepBackOnMiss:
			newBox = max(box-1, models.MinBox)
		default:
			newBox = models.MinBox
		}
	}

	return newBox, now.AddDate(0, 0, l.Interval(newBox))
}

// Apply runs Advance on a stored progress record and returns the updated copy
func (l *Leitner) Apply(p models.VocabProgress, correct bool, now time.Time) models.VocabProgress {
	p.Box, p.NextReview = l.Advance(p.Box, correct, now)
	reviewed := now
	p.LastReview = &reviewed
	return p
}

func checkBox(box int) {
	if box < models.MinBox || box > models.MasteredBox {
		panic(fmt.Sprintf("spaced_repetition: box %d out of range [%d, %d]", box, models.MinBox, models.MasteredBox))
	}
}

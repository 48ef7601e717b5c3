package spaced_repetition

import (
	"testing"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestAdvance(t *testing.T) {
	l := NewLeitner()

	for box := 1; box <= 6; box++ {
		got, _ := l.Advance(box, true, now)
		assert.Equal(t, min(box+1, 6), got, "correct from box %d", box)

		got, _ = l.Advance(box, false, now)
		assert.Equal(t, 1, got, "miss from box %d", box)
	}
}

func TestAdvanceDueDates(t *testing.T) {
	l := NewLeitner()

	tests := []struct {
		name    string
		box     int
		correct bool
		wantBox int
		wantDue time.Time
	}{
		{"box 3 correct", 3, true, 4, now.AddDate(0, 0, 14)},
		{"box 3 miss", 3, false, 1, now.AddDate(0, 0, 1)},
		{"box 1 correct", 1, true, 2, now.AddDate(0, 0, 3)},
		{"box 5 correct reaches mastered", 5, true, 6, now.AddDate(0, 0, 365*5)},
		{"mastered stays mastered", 6, true, 6, now.AddDate(0, 0, 365*5)},
		{"mastered miss", 6, false, 1, now.AddDate(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, due := l.Advance(tt.box, tt.correct, now)
			assert.Equal(t, tt.wantBox, box)
			assert.True(t, tt.wantDue.Equal(due), "due %v, want %v", due, tt.wantDue)
		})
	}
}

func TestIntervalsIncrease(t *testing.T) {
	l := NewLeitner()

	for box := 2; box <= 5; box++ {
		assert.Greater(t, l.Interval(box), l.Interval(box-1))
	}
	for box := 1; box <= 5; box++ {
		assert.Greater(t, l.Interval(6), l.Interval(box))
	}
}

func TestStepBackOnMiss(t *testing.T) {
	l := NewLeitner()
	l.OnMiss = StepBackOnMiss

	box, due := l.Advance(4, false, now)
	assert.Equal(t, 3, box)
	assert.True(t, now.AddDate(0, 0, 7).Equal(due))

	box, _ = l.Advance(1, false, now)
	assert.Equal(t, 1, box)
}

func TestAdvanceOutOfRangePanics(t *testing.T) {
	l := NewLeitner()
	assert.Panics(t, func() { l.Advance(0, true, now) })
	assert.Panics(t, func() { l.Advance(7, false, now) })
}

func TestParseMissPolicy(t *testing.T) {
	p, err := ParseMissPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ResetOnMiss, p)

	p, err = ParseMissPolicy("Step_Back")
	require.NoError(t, err)
	assert.Equal(t, StepBackOnMiss, p)
	assert.Equal(t, "step_back", p.String())

	_, err = ParseMissPolicy("halve")
	assert.Error(t, err)
}

func TestApplySetsLastReview(t *testing.T) {
	l := NewLeitner()
	p := l.Apply(newProgress(2), true, now)

	require.NotNil(t, p.LastReview)
	assert.True(t, now.Equal(*p.LastReview))
	assert.Equal(t, 3, p.Box)
	assert.True(t, now.AddDate(0, 0, 7).Equal(p.NextReview))
}

func newProgress(box int) models.VocabProgress {
	return models.VocabProgress{VocabID: "v001", Box: box, NextReview: now}
}

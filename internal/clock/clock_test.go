package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_ReturnsUTC(t *testing.T) {
	now := System{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

func TestManual(t *testing.T) {
	start := time.Date(2024, 5, 20, 10, 0, 0, 0, time.FixedZone("CST", 8*3600))
	m := NewManual(start)
	assert.Equal(t, time.UTC, m.Now().Location())
	assert.True(t, m.Now().Equal(start))

	m.Advance(36 * time.Hour)
	assert.True(t, m.Now().Equal(start.Add(36*time.Hour)))

	later := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Set(later)
	assert.Equal(t, later, m.Now())
}

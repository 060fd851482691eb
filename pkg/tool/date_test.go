package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 3, 15, 23, 45, 12, 999, time.FixedZone("EST", -5*3600))
	got := DateOnly(in)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestSameDate(t *testing.T) {
	a := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, c))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 15, 2026", FormatDate(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
}

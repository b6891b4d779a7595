package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	in := time.Date(2025, 3, 10, 2, 30, 0, 0, loc) // 2025-03-09 19:30 UTC

	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), StartOfDay(in))
	assert.Equal(t, time.Date(2025, 3, 9, 23, 59, 59, 999_000_000, time.UTC), EndOfDay(in))
}

func TestManual_Advance(t *testing.T) {
	m := NewManual(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	m.Advance(90 * time.Minute)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC), m.Now())

	m.Set(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, int(m.Now().Month()))
}

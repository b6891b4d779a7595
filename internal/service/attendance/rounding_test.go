package attendance

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		interval int
		strategy attendance.RoundingStrategy
		want     float64
	}{
		{"nearest down", 487, 15, attendance.RoundNearest, 480},
		{"nearest up", 488, 15, attendance.RoundNearest, 495},
		{"nearest half", 7.5, 15, attendance.RoundNearest, 15},
		{"ceiling", 481, 15, attendance.RoundCeiling, 495},
		{"floor", 494.9, 15, attendance.RoundFloor, 480},
		{"exact multiple", 480, 15, attendance.RoundCeiling, 480},
		{"fractional minutes", 29.5, 30, attendance.RoundFloor, 0},
		{"zero interval", 487.25, 0, attendance.RoundNearest, 487.25},
		{"negative interval", 487, -5, attendance.RoundFloor, 487},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundMinutes(tt.value, tt.interval, tt.strategy)
			assert.Equal(t, tt.want, got)

			// rounding is a fixed point
			assert.Equal(t, got, RoundMinutes(got, tt.interval, tt.strategy))
		})
	}
}

func TestParseRoundingStrategy(t *testing.T) {
	assert.Equal(t, attendance.RoundNearest, ParseRoundingStrategy("nearest"))
	assert.Equal(t, attendance.RoundCeiling, ParseRoundingStrategy(" CEILING "))
	assert.Equal(t, attendance.RoundFloor, ParseRoundingStrategy("FLOOR"))
	assert.Equal(t, attendance.RoundFloor, ParseRoundingStrategy("banker"))
	assert.Equal(t, attendance.RoundFloor, ParseRoundingStrategy(""))
}

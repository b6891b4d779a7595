package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// ParseRoundingStrategy maps a strategy name; anything unrecognised is FLOOR.
func ParseRoundingStrategy(s string) attendance.RoundingStrategy {
	switch attendance.RoundingStrategy(strings.ToUpper(strings.TrimSpace(s))) {
	case attendance.RoundNearest:
		return attendance.RoundNearest
	case attendance.RoundCeiling:
		return attendance.RoundCeiling
	default:
		return attendance.RoundFloor
	}
}

// RoundMinutes rounds value to a multiple of intervalMinutes. A
// non-positive interval returns value unchanged. NEAREST rounds half away
// from zero. The result is a fixed point: rounding it again with the same
// arguments returns it unchanged.
func RoundMinutes(value float64, intervalMinutes int, strategy attendance.RoundingStrategy) float64 {
	if intervalMinutes <= 0 {
		return value
	}

	step := decimal.NewFromInt(int64(intervalMinutes))
	q := decimal.NewFromFloat(value).Div(step)

	switch strategy {
	case attendance.RoundNearest:
		q = q.Round(0)
	case attendance.RoundCeiling:
		q = q.Ceil()
	default:
		q = q.Floor()
	}

	return q.Mul(step).InexactFloat64()
}

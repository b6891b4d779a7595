package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// EnforcePunchPolicy validates punches against a named policy. FIRST_LAST
// allows at most two punches; every policy requires alternating types.
func EnforcePunchPolicy(policy attendance.PunchPolicy, punches []attendance.Punch) error {
	if policy == attendance.PunchPolicyFirstLast && len(punches) > 2 {
		return fmt.Errorf("%w: %s allows at most 2 punches, got %d", attendance.ErrPolicyViolation, policy, len(punches))
	}

	for i := 1; i < len(punches); i++ {
		if punches[i].Type == punches[i-1].Type {
			return fmt.Errorf("%w: punch %d repeats %s", attendance.ErrPolicyViolation, i, punches[i].Type)
		}
	}
	return nil
}

// EnforceShiftPunchPolicy checks every punch's UTC time of day against
// [ShiftStart - AllowEarly, ShiftEnd + AllowLate]. A shift whose end is
// earlier than its start is treated as crossing midnight.
func EnforceShiftPunchPolicy(window attendance.ShiftWindow, punches []attendance.Punch) error {
	start, ok := validator.ClockToMinutes(window.ShiftStart)
	if !ok {
		return fmt.Errorf("%w: shift start %q", attendance.ErrInvalidShiftTime, window.ShiftStart)
	}
	end, ok := validator.ClockToMinutes(window.ShiftEnd)
	if !ok {
		return fmt.Errorf("%w: shift end %q", attendance.ErrInvalidShiftTime, window.ShiftEnd)
	}

	overnight := end < start
	if overnight {
		end += 24 * 60
	}
	lower := start - window.AllowEarlyMinutes
	upper := end + window.AllowLateMinutes

	for i, p := range punches {
		t := p.Time.UTC()
		m := t.Hour()*60 + t.Minute()
		if overnight && m < lower {
			m += 24 * 60
		}
		if m < lower || m > upper {
			return fmt.Errorf("%w: punch %d at %s is outside %s-%s (early %d, late %d)",
				attendance.ErrOutsideShiftWindow, i, t.Format("15:04"),
				window.ShiftStart, window.ShiftEnd, window.AllowEarlyMinutes, window.AllowLateMinutes)
		}
	}
	return nil
}

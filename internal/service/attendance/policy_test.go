package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func seq(types ...attendance.PunchType) []attendance.Punch {
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	punches := make([]attendance.Punch, len(types))
	for i, pt := range types {
		punches[i] = attendance.Punch{Type: pt, Time: base.Add(time.Duration(i) * time.Hour)}
	}
	return punches
}

const (
	in  = attendance.PunchIn
	out = attendance.PunchOut
)

func TestEnforcePunchPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  attendance.PunchPolicy
		punches []attendance.Punch
		wantErr bool
	}{
		{"first_last pair", attendance.PunchPolicyFirstLast, seq(in, out), false},
		{"first_last single", attendance.PunchPolicyFirstLast, seq(in), false},
		{"first_last too many", attendance.PunchPolicyFirstLast, seq(in, out, in), true},
		{"multiple alternating", attendance.PunchPolicyMultiple, seq(in, out, in, out), false},
		{"multiple repeated in", attendance.PunchPolicyMultiple, seq(in, in, out), true},
		{"any alternating", attendance.PunchPolicyAny, seq(in, out, in), false},
		{"any repeated out", attendance.PunchPolicyAny, seq(in, out, out), true},
		{"empty", attendance.PunchPolicyAny, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnforcePunchPolicy(tt.policy, tt.punches)
			if tt.wantErr {
				assert.ErrorIs(t, err, attendance.ErrPolicyViolation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func at(hh, mm int) attendance.Punch {
	return attendance.Punch{Type: in, Time: time.Date(2024, 3, 4, hh, mm, 0, 0, time.UTC)}
}

func TestEnforceShiftPunchPolicy(t *testing.T) {
	day := attendance.ShiftWindow{ShiftStart: "09:00", ShiftEnd: "17:00", AllowEarlyMinutes: 15, AllowLateMinutes: 30}
	night := attendance.ShiftWindow{ShiftStart: "22:00", ShiftEnd: "06:00", AllowEarlyMinutes: 10, AllowLateMinutes: 10}

	tests := []struct {
		name    string
		window  attendance.ShiftWindow
		punch   attendance.Punch
		wantErr error
	}{
		{"at early bound", day, at(8, 45), nil},
		{"before early bound", day, at(8, 44), attendance.ErrOutsideShiftWindow},
		{"at late bound", day, at(17, 30), nil},
		{"after late bound", day, at(17, 31), attendance.ErrOutsideShiftWindow},
		{"overnight before midnight", night, at(21, 55), nil},
		{"overnight after midnight", night, at(5, 30), nil},
		{"overnight late bound", night, at(6, 10), nil},
		{"overnight outside", night, at(12, 0), attendance.ErrOutsideShiftWindow},
		{"bad shift time", attendance.ShiftWindow{ShiftStart: "9am", ShiftEnd: "17:00"}, at(9, 0), attendance.ErrInvalidShiftTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnforceShiftPunchPolicy(tt.window, []attendance.Punch{tt.punch})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestComputeWorkMinutes(t *testing.T) {
	base := time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC)

	punches := []attendance.Punch{
		{Type: in, Time: base},
		{Type: out, Time: base.Add(8*time.Hour + 5*time.Minute)},
	}
	assert.Equal(t, 485.0, ComputeWorkMinutes(punches))

	// trailing IN is not counted
	punches = append(punches, attendance.Punch{Type: in, Time: base.Add(9 * time.Hour)})
	assert.Equal(t, 485.0, ComputeWorkMinutes(punches))

	// sub-minute precision is kept
	assert.Equal(t, 0.5, ComputeWorkMinutes([]attendance.Punch{
		{Type: in, Time: base},
		{Type: out, Time: base.Add(30 * time.Second)},
	}))

	assert.Equal(t, 0.0, ComputeWorkMinutes(nil))
}

func TestHasMissedPunch(t *testing.T) {
	assert.False(t, HasMissedPunch(nil))
	assert.False(t, HasMissedPunch(seq(in, out)))
	assert.False(t, HasMissedPunch(seq(in, out, in, out)))
	assert.True(t, HasMissedPunch(seq(in)))
	assert.True(t, HasMissedPunch(seq(in, out, in)))
	assert.True(t, HasMissedPunch(seq(out, in)))
	assert.True(t, HasMissedPunch(seq(in, in)))
}

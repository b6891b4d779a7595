package fixtures

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// ==========================================
// DEFAULT SHIFTS
// ==========================================

// StandardOfficeShift returns the 09:00-17:00 day shift
func StandardOfficeShift() schedule.Shift {
	return schedule.Shift{
		ID:                "shift-standard",
		Name:              "Standard Office Hours",
		StartTime:         "09:00",
		EndTime:           "17:00",
		AllowEarlyMinutes: 15,
		AllowLateMinutes:  30,
	}
}

// AfternoonShift returns the 14:00-22:00 second shift
func AfternoonShift() schedule.Shift {
	return schedule.Shift{
		ID:                "shift-afternoon",
		Name:              "Afternoon Shift",
		StartTime:         "14:00",
		EndTime:           "22:00",
		AllowEarlyMinutes: 15,
		AllowLateMinutes:  15,
		PunchPolicy:       string(attendance.PunchPolicyFirstLast),
	}
}

// NightShift returns the overnight 22:00-06:00 shift
func NightShift() schedule.Shift {
	return schedule.Shift{
		ID:                "shift-night",
		Name:              "Night Shift",
		StartTime:         "22:00",
		EndTime:           "06:00",
		AllowEarlyMinutes: 15,
		AllowLateMinutes:  15,
	}
}

// ==========================================
// ASSIGNMENTS
// ==========================================

// ApprovedAssignment assigns shift to employeeID for [start, end], with end
// running to the last millisecond of its day.
func ApprovedAssignment(employeeID string, shift schedule.Shift, start, end time.Time) schedule.ShiftAssignment {
	return schedule.ShiftAssignment{
		EmployeeID: employeeID,
		Shift:      shift,
		StartDate:  time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC),
		Status:     schedule.AssignmentApproved,
	}
}

package attendance

import "errors"

// Attendance domain errors
var (
	// Punch ledger errors
	ErrNoAttendanceFound = errors.New("no attendance records found for employee")
	ErrNoActiveClockIn   = errors.New("no active clock-in found")
	ErrRecordFinalised   = errors.New("attendance record is finalised for payroll")

	// Policy errors
	ErrPolicyViolation    = errors.New("punch policy violation")
	ErrOutsideShiftWindow = errors.New("punch outside shift window")
	ErrInvalidShiftTime   = errors.New("invalid shift time, use HH:MM")

	// General errors
	ErrAttendanceNotFound     = errors.New("attendance record not found")
	ErrConcurrentModification = errors.New("attendance record was modified concurrently")
)

package schedule

import "errors"

var (
	ErrShiftAssignmentNotFound = errors.New("shift assignment not found")
	ErrInvalidDaysBeforeExpiry = errors.New("days before expiry must not be negative")
)

package exception

import "errors"

var (
	ErrExceptionNotFound = errors.New("time exception not found")
	ErrInvalidTransition = errors.New("time exception status does not allow this transition")
	ErrInvalidType       = errors.New("invalid time exception type")
	ErrNoMissedPunch     = errors.New("attendance record has no missed punch")
	ErrRecordMismatch    = errors.New("attendance record does not belong to employee")
	ErrInvalidThreshold  = errors.New("lateness threshold must be at least 1")
)

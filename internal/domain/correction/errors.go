package correction

import "errors"

var (
	ErrCorrectionNotFound = errors.New("correction request not found")
	ErrInvalidTransition  = errors.New("correction request status does not allow this transition")
	ErrRecordMismatch     = errors.New("attendance record does not belong to employee")
)

package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, exception.ErrExceptionNotFound):
		NotFound(w, "Time exception not found")
	case errors.Is(err, correction.ErrCorrectionNotFound):
		NotFound(w, "Correction request not found")
	case errors.Is(err, schedule.ErrShiftAssignmentNotFound):
		NotFound(w, "Shift assignment not found")

	// Bad request
	case errors.Is(err, attendance.ErrPolicyViolation),
		errors.Is(err, attendance.ErrOutsideShiftWindow),
		errors.Is(err, attendance.ErrInvalidShiftTime),
		errors.Is(err, report.ErrInvalidReportType),
		errors.Is(err, report.ErrInvalidFormat),
		errors.Is(err, exception.ErrRecordMismatch),
		errors.Is(err, correction.ErrRecordMismatch),
		errors.Is(err, exception.ErrInvalidThreshold),
		errors.Is(err, schedule.ErrInvalidDaysBeforeExpiry):
		BadRequest(w, err.Error(), nil)

	// Conflict
	case errors.Is(err, attendance.ErrNoActiveClockIn),
		errors.Is(err, attendance.ErrNoAttendanceFound),
		errors.Is(err, attendance.ErrRecordFinalised),
		errors.Is(err, attendance.ErrConcurrentModification),
		errors.Is(err, exception.ErrInvalidTransition),
		errors.Is(err, exception.ErrNoMissedPunch),
		errors.Is(err, correction.ErrInvalidTransition),
		errors.Is(err, lock.ErrNotObtained):
		Conflict(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

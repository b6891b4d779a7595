package schedule

import (
	"context"
	"time"
)

// ShiftAssignmentRepository is read-only access to the roster.
type ShiftAssignmentRepository interface {
	GetByID(ctx context.Context, id string) (ShiftAssignment, error)

	// ListByStatusEndingBetween returns assignments with the given status
	// whose end date lies in [from, to], inclusive.
	ListByStatusEndingBetween(ctx context.Context, status AssignmentStatus, from, to time.Time) ([]ShiftAssignment, error)

	// GetActiveForEmployee returns the approved assignment covering at, or
	// ErrShiftAssignmentNotFound.
	GetActiveForEmployee(ctx context.Context, employeeID string, at time.Time) (ShiftAssignment, error)
}

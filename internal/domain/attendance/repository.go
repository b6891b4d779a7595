package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new record and returns it with ID, timestamps and Version set.
	Create(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// GetByID returns ErrAttendanceNotFound when the id does not resolve.
	GetByID(ctx context.Context, id string) (AttendanceRecord, error)

	// GetByIDs is the read-side join used by reports. Missing ids are omitted.
	GetByIDs(ctx context.Context, ids []string) (map[string]AttendanceRecord, error)

	// ListByEmployee returns the employee's records newest-first.
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]AttendanceRecord, error)

	// ListByEmployeeAndPeriod returns records created within [from, to], oldest-first.
	ListByEmployeeAndPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)

	// ListOpenCreatedBefore returns unfinalised records that still end in an
	// IN punch and were created before cutoff, oldest-first.
	ListOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]AttendanceRecord, error)

	// Update persists record if its Version still matches the stored one and
	// returns the stored copy with Version incremented. A mismatch yields
	// ErrConcurrentModification.
	Update(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
}

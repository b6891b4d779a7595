package schedule

import "context"

type ShiftExpiryScanner interface {
	CheckExpiringShiftAssignments(ctx context.Context, daysBeforeExpiry int, actorID string) ([]ExpiringAssignment, error)
}

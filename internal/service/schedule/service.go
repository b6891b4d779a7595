package schedule

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

type shiftExpiryScannerImpl struct {
	assignmentRepo schedule.ShiftAssignmentRepository
	auditSink      audit.Sink
	clock          clock.Clock
}

func NewShiftExpiryScanner(
	assignmentRepo schedule.ShiftAssignmentRepository,
	auditSink audit.Sink,
	clk clock.Clock,
) schedule.ShiftExpiryScanner {
	return &shiftExpiryScannerImpl{
		assignmentRepo: assignmentRepo,
		auditSink:      auditSink,
		clock:          clk,
	}
}

// CheckExpiringShiftAssignments implements schedule.ShiftExpiryScanner.
// The window runs from the start of today to the end of the day
// daysBeforeExpiry days ahead, both in UTC and inclusive.
func (s *shiftExpiryScannerImpl) CheckExpiringShiftAssignments(ctx context.Context, daysBeforeExpiry int, actorID string) ([]schedule.ExpiringAssignment, error) {
	if daysBeforeExpiry < 0 {
		return nil, schedule.ErrInvalidDaysBeforeExpiry
	}

	now := s.clock.Now()
	from := clock.StartOfDay(now)
	to := clock.EndOfDay(now.AddDate(0, 0, daysBeforeExpiry))

	assignments, err := s.assignmentRepo.ListByStatusEndingBetween(ctx, schedule.AssignmentApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring shift assignments: %w", err)
	}

	result := make([]schedule.ExpiringAssignment, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, schedule.ExpiringAssignment{
			AssignmentID: a.ID,
			EmployeeID:   a.EmployeeID,
			ShiftID:      a.Shift.ID,
			ShiftName:    a.Shift.Name,
			EndDate:      a.EndDate,
		})
	}

	err = s.auditSink.Append(ctx, audit.Entry{
		Entity: audit.EntityShiftAssignmentScan,
		Action: "SCAN",
		ChangeSet: map[string]any{
			"days_before_expiry": daysBeforeExpiry,
			"window_start":       from,
			"window_end":         to,
			"count":              len(result),
		},
		ActorID:   actorID,
		Timestamp: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	return result, nil
}

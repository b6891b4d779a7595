package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftExpiryScanner_Window(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC))
	repo := memory.NewShiftAssignmentRepository()
	log := memory.NewAuditLog()
	scanner := NewShiftExpiryScanner(repo, log, clk)

	put := func(id string, status schedule.AssignmentStatus, end time.Time) {
		repo.Put(schedule.ShiftAssignment{
			ID:         id,
			EmployeeID: "emp-" + id,
			Shift:      schedule.Shift{ID: "shift-" + id, Name: "Morning", StartTime: "09:00", EndTime: "17:00"},
			StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    end,
			Status:     status,
		})
	}
	put("today-start", schedule.AssignmentApproved, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	put("last-ms", schedule.AssignmentApproved, time.Date(2024, 3, 11, 23, 59, 59, int(999*time.Millisecond), time.UTC))
	put("mid", schedule.AssignmentApproved, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))
	put("yesterday", schedule.AssignmentApproved, time.Date(2024, 3, 3, 23, 59, 59, 0, time.UTC))
	put("too-late", schedule.AssignmentApproved, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	put("pending", schedule.AssignmentPending, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	put("cancelled", schedule.AssignmentCancelled, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))

	result, err := scanner.CheckExpiringShiftAssignments(ctx, 7, "system")

	require.NoError(t, err)
	ids := make([]string, 0, len(result))
	for _, r := range result {
		ids = append(ids, r.AssignmentID)
	}
	assert.Equal(t, []string{"today-start", "mid", "last-ms"}, ids)
	assert.Equal(t, "shift-mid", result[1].ShiftID)
	assert.Equal(t, "emp-mid", result[1].EmployeeID)

	entries, err := log.List(ctx, audit.Filter{Entity: audit.EntityShiftAssignmentScan})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].ChangeSet["count"])
}

func TestShiftExpiryScanner_ZeroDaysAndNegative(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC))
	repo := memory.NewShiftAssignmentRepository()
	scanner := NewShiftExpiryScanner(repo, memory.NewAuditLog(), clk)
	repo.Put(schedule.ShiftAssignment{
		EmployeeID: "emp-1",
		EndDate:    time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC),
		Status:     schedule.AssignmentApproved,
	})

	result, err := scanner.CheckExpiringShiftAssignments(ctx, 0, "system")
	require.NoError(t, err)
	assert.Len(t, result, 1)

	_, err = scanner.CheckExpiringShiftAssignments(ctx, -1, "system")
	assert.ErrorIs(t, err, schedule.ErrInvalidDaysBeforeExpiry)
}

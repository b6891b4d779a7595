package lateness

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLate(t *testing.T, repo exception.ExceptionRepository, employeeID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := repo.Create(context.Background(), exception.TimeException{
			EmployeeID:         employeeID,
			AttendanceRecordID: "rec",
			Type:               exception.TypeLate,
			Status:             exception.StatusApproved,
		})
		require.NoError(t, err)
	}
}

func newMonitor(t *testing.T) (exception.ExceptionRepository, *memory.AuditLog, exception.LatenessMonitor) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	repo := memory.NewExceptionRepository(clk)
	log := memory.NewAuditLog()
	return repo, log, NewLatenessMonitor(repo, log, lock.NewKeyedMutex(), clk)
}

func TestLatenessMonitor_ThresholdReached(t *testing.T) {
	repo, log, monitor := newMonitor(t)
	ctx := context.Background()
	seedLate(t, repo, "emp-1", 3)

	result, err := monitor.MonitorRepeatedLateness(ctx, "emp-1", 3, "system")

	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 3, result.Threshold)
	assert.True(t, result.Exceeded)

	entries, err := log.List(ctx, audit.Filter{Entity: audit.EntityLatenessDisciplinary})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionAutoEscalation, entries[0].Action)
	assert.Equal(t, "emp-1", entries[0].EntityID)
	assert.Equal(t, "system", entries[0].ActorID)
}

func TestLatenessMonitor_BelowThreshold(t *testing.T) {
	repo, log, monitor := newMonitor(t)
	ctx := context.Background()
	seedLate(t, repo, "emp-1", 2)
	seedLate(t, repo, "emp-2", 5)
	_, err := repo.Create(ctx, exception.TimeException{EmployeeID: "emp-1", Type: exception.TypeEarlyLeave, Status: exception.StatusOpen})
	require.NoError(t, err)

	result, err := monitor.MonitorRepeatedLateness(ctx, "emp-1", 3, "system")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.False(t, result.Exceeded)

	entries, err := log.List(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLatenessMonitor_InvalidThreshold(t *testing.T) {
	_, _, monitor := newMonitor(t)

	_, err := monitor.MonitorRepeatedLateness(context.Background(), "emp-1", 0, "system")

	assert.ErrorIs(t, err, exception.ErrInvalidThreshold)
}

func TestLatenessMonitor_TriggerOnlyAudits(t *testing.T) {
	repo, log, monitor := newMonitor(t)
	ctx := context.Background()
	seedLate(t, repo, "emp-1", 1)

	err := monitor.TriggerLatenessDisciplinary(ctx, "emp-1", "WRITTEN_WARNING", "hr-1")

	require.NoError(t, err)
	entries, err := log.List(ctx, audit.Filter{ActorID: "hr-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WRITTEN_WARNING", entries[0].Action)

	items, err := repo.List(ctx, exception.Filter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, exception.StatusApproved, items[0].Status)
}

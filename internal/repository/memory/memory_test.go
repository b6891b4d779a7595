package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/fixtures"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepository_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(clock.NewManual(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)))

	rec, err := repo.Create(ctx, attendance.AttendanceRecord{
		EmployeeID: "emp-1",
		Punches:    []attendance.Punch{{Type: attendance.PunchIn, Time: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)

	// mutating a returned copy must not leak into the store
	rec.Punches[0].Type = attendance.PunchOut
	stored, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.PunchIn, stored.Punches[0].Type)

	stored.TotalWorkMinutes = 60
	updated, err := repo.Update(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	_, err = repo.Update(ctx, stored)
	assert.ErrorIs(t, err, attendance.ErrConcurrentModification)

	stored.ID = "missing"
	_, err = repo.Update(ctx, stored)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_ListOpenCreatedBefore(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	repo := NewAttendanceRepository(clk)
	in := attendance.Punch{Type: attendance.PunchIn, Time: clk.Now()}
	out := attendance.Punch{Type: attendance.PunchOut, Time: clk.Now().Add(time.Hour)}

	open, err := repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1", Punches: []attendance.Punch{in}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-2", Punches: []attendance.Punch{in, out}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-3", Punches: []attendance.Punch{in}, FinalisedForPayroll: true})
	require.NoError(t, err)
	clk.Advance(48 * time.Hour)
	_, err = repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-4", Punches: []attendance.Punch{in}})
	require.NoError(t, err)

	got, err := repo.ListOpenCreatedBefore(ctx, clk.Now().Add(-24*time.Hour))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestAttendanceRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(clock.NewManual(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)))

	first, err := repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, attendance.AttendanceRecord{EmployeeID: "emp-2"})
	require.NoError(t, err)

	newest, err := repo.ListByEmployee(ctx, "emp-1", 0)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, second.ID, newest[0].ID)

	period, err := repo.ListByEmployeeAndPeriod(ctx, "emp-1",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, period, 2)
	assert.Equal(t, first.ID, period[0].ID)
}

func TestExceptionRepository_ConditionalTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewExceptionRepository(clock.NewManual(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)))

	ex, err := repo.Create(ctx, exception.TimeException{EmployeeID: "emp-1", Type: exception.TypeLate, Status: exception.StatusOpen})
	require.NoError(t, err)

	escalated, err := repo.Transition(ctx, exception.Transition{ID: ex.ID, From: exception.Unresolved, To: exception.StatusEscalated, ActorID: "system"})
	require.NoError(t, err)
	assert.Equal(t, exception.StatusEscalated, escalated.Status)
	assert.Equal(t, "system", escalated.UpdatedBy)

	_, err = repo.Transition(ctx, exception.Transition{ID: ex.ID, From: exception.Unresolved, To: exception.StatusEscalated})
	assert.ErrorIs(t, err, exception.ErrInvalidTransition)

	_, err = repo.Transition(ctx, exception.Transition{ID: "missing", From: exception.Unresolved, To: exception.StatusEscalated})
	assert.ErrorIs(t, err, exception.ErrExceptionNotFound)

	count, err := repo.CountByEmployeeAndType(ctx, "emp-1", exception.TypeLate)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestShiftAssignmentRepository_GetActiveForEmployee(t *testing.T) {
	ctx := context.Background()
	repo := NewShiftAssignmentRepository()

	march := repo.Put(fixtures.ApprovedAssignment("emp-1", fixtures.StandardOfficeShift(),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	week := repo.Put(fixtures.ApprovedAssignment("emp-1", fixtures.NightShift(),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	pending := fixtures.ApprovedAssignment("emp-1", fixtures.AfternoonShift(),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	pending.Status = schedule.AssignmentPending
	repo.Put(pending)

	// latest approved start wins
	active, err := repo.GetActiveForEmployee(ctx, "emp-1", time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, week.ID, active.ID)

	active, err = repo.GetActiveForEmployee(ctx, "emp-1", time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, march.ID, active.ID)

	_, err = repo.GetActiveForEmployee(ctx, "emp-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, schedule.ErrShiftAssignmentNotFound)
}

func TestAuditLog_ListLimitKeepsNewest(t *testing.T) {
	ctx := context.Background()
	log := NewAuditLog()

	for _, action := range []string{"A", "B", "C"} {
		require.NoError(t, log.Append(ctx, audit.Entry{Entity: "X", Action: action, ChangeSet: map[string]any{"a": action}}))
	}

	entries, err := log.List(ctx, audit.Filter{Entity: "X", Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "B", entries[0].Action)
	assert.Equal(t, "C", entries[1].Action)
	assert.Equal(t, int64(3), entries[1].Seq)

	entries[0].ChangeSet["a"] = "mutated"
	again, err := log.List(ctx, audit.Filter{Entity: "X"})
	require.NoError(t, err)
	assert.Equal(t, "B", again[1].ChangeSet["a"])
}

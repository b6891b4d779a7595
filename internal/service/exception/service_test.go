package exception

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exceptionFixture struct {
	attendance attendance.AttendanceRepository
	audit      *memory.AuditLog
	service    exception.ExceptionService
}

func newExceptionFixture(t *testing.T) *exceptionFixture {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	f := &exceptionFixture{
		attendance: memory.NewAttendanceRepository(clk),
		audit:      memory.NewAuditLog(),
	}
	f.service = NewExceptionService(memory.NewExceptionRepository(clk), f.attendance, f.audit, clk)
	return f
}

func (f *exceptionFixture) record(t *testing.T, employeeID string, types ...attendance.PunchType) attendance.AttendanceRecord {
	t.Helper()
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rec := attendance.AttendanceRecord{EmployeeID: employeeID, CreatedBy: employeeID, UpdatedBy: employeeID}
	for i, pt := range types {
		rec.Punches = append(rec.Punches, attendance.Punch{Type: pt, Time: base.Add(time.Duration(i) * time.Hour)})
	}
	rec.HasMissedPunch = len(types)%2 == 1
	created, err := f.attendance.Create(context.Background(), rec)
	require.NoError(t, err)
	return created
}

func (f *exceptionFixture) open(t *testing.T, exType exception.Type) exception.TimeException {
	t.Helper()
	rec := f.record(t, "emp-1", attendance.PunchIn, attendance.PunchOut)
	ex, err := f.service.Create(context.Background(), exception.CreateRequest{
		Type:               string(exType),
		EmployeeID:         "emp-1",
		AttendanceRecordID: rec.ID,
		Reason:             "arrived 09:20",
	}, "emp-1")
	require.NoError(t, err)
	return ex
}

func TestExceptionService_Create_Success(t *testing.T) {
	f := newExceptionFixture(t)

	ex := f.open(t, exception.TypeLate)

	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, exception.StatusOpen, ex.Status)
	assert.Equal(t, "emp-1", ex.CreatedBy)

	entries, err := f.audit.List(context.Background(), audit.Filter{Entity: audit.EntityTimeException, EntityID: ex.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CREATE", entries[0].Action)
}

func TestExceptionService_Create_Invalid(t *testing.T) {
	f := newExceptionFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, exception.CreateRequest{Type: "NAP"}, "emp-1")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "type")

	_, err = f.service.Create(ctx, exception.CreateRequest{
		Type: string(exception.TypeLate), EmployeeID: "emp-1", AttendanceRecordID: "missing",
	}, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	other := f.record(t, "emp-2", attendance.PunchIn)
	_, err = f.service.Create(ctx, exception.CreateRequest{
		Type: string(exception.TypeLate), EmployeeID: "emp-1", AttendanceRecordID: other.ID,
	}, "emp-1")
	assert.ErrorIs(t, err, exception.ErrRecordMismatch)

	entries, err := f.audit.List(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExceptionService_Lifecycle(t *testing.T) {
	f := newExceptionFixture(t)
	ctx := context.Background()
	ex := f.open(t, exception.TypeLate)

	reviewer := "mgr-1"
	pending, err := f.service.MarkPending(ctx, ex.ID, &reviewer, "hr-1")
	require.NoError(t, err)
	assert.Equal(t, exception.StatusPending, pending.Status)
	assert.Equal(t, &reviewer, pending.AssignedTo)

	escalated, err := f.service.Escalate(ctx, ex.ID, "system")
	require.NoError(t, err)
	assert.Equal(t, exception.StatusEscalated, escalated.Status)

	// escalated items remain actionable
	approved, err := f.service.Approve(ctx, ex.ID, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, exception.StatusApproved, approved.Status)
	assert.Equal(t, "mgr-1", approved.UpdatedBy)

	resolved, err := f.service.Resolve(ctx, ex.ID, "hr-1")
	require.NoError(t, err)
	assert.Equal(t, exception.StatusResolved, resolved.Status)

	_, err = f.service.Reject(ctx, ex.ID, "mgr-1")
	assert.ErrorIs(t, err, exception.ErrInvalidTransition)
	_, err = f.service.Escalate(ctx, ex.ID, "mgr-1")
	assert.ErrorIs(t, err, exception.ErrInvalidTransition)

	entries, err := f.audit.List(ctx, audit.Filter{EntityID: ex.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestExceptionService_Transitions_Table(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *exceptionFixture, id string)
		act     func(f *exceptionFixture, id string) (exception.TimeException, error)
		want    exception.Status
		wantErr error
	}{
		{
			name: "approve from open",
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.Approve(context.Background(), id, "mgr")
			},
			want: exception.StatusApproved,
		},
		{
			name: "reject from open",
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.Reject(context.Background(), id, "mgr")
			},
			want: exception.StatusRejected,
		},
		{
			name: "resolve from open is illegal",
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.Resolve(context.Background(), id, "mgr")
			},
			wantErr: exception.ErrInvalidTransition,
		},
		{
			name: "mark pending twice is illegal",
			prepare: func(f *exceptionFixture, id string) {
				_, _ = f.service.MarkPending(context.Background(), id, nil, "mgr")
			},
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.MarkPending(context.Background(), id, nil, "mgr")
			},
			wantErr: exception.ErrInvalidTransition,
		},
		{
			name: "escalate from approved",
			prepare: func(f *exceptionFixture, id string) {
				_, _ = f.service.Approve(context.Background(), id, "mgr")
			},
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.Escalate(context.Background(), id, "mgr")
			},
			want: exception.StatusEscalated,
		},
		{
			name: "escalate from rejected",
			prepare: func(f *exceptionFixture, id string) {
				_, _ = f.service.Reject(context.Background(), id, "mgr")
			},
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.Escalate(context.Background(), id, "mgr")
			},
			want: exception.StatusEscalated,
		},
		{
			name: "escalate from resolved is illegal",
			prepare: func(f *exceptionFixture, id string) {
				_, _ = f.service.Approve(context.Background(), id, "mgr")
				_, _ = f.service.Resolve(context.Background(), id, "mgr")
			},
			act: func(f *exceptionFixture, id string) (exception.TimeException, error) {
				return f.service.Escalate(context.Background(), id, "mgr")
			},
			wantErr: exception.ErrInvalidTransition,
		},
		{
			name: "unknown id",
			act: func(f *exceptionFixture, _ string) (exception.TimeException, error) {
				return f.service.Approve(context.Background(), "missing", "mgr")
			},
			wantErr: exception.ErrExceptionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExceptionFixture(t)
			ex := f.open(t, exception.TypeEarlyLeave)
			if tt.prepare != nil {
				tt.prepare(f, ex.ID)
			}

			got, err := tt.act(f, ex.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestExceptionService_List(t *testing.T) {
	f := newExceptionFixture(t)
	ctx := context.Background()
	a := f.open(t, exception.TypeLate)
	f.open(t, exception.TypeShortTime)
	_, err := f.service.Approve(ctx, a.ID, "mgr")
	require.NoError(t, err)

	all, err := f.service.List(ctx, exception.ListRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := f.service.List(ctx, exception.ListRequest{EmployeeID: "emp-1", Status: "OPEN"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, exception.TypeShortTime, open[0].Type)

	_, err = f.service.List(ctx, exception.ListRequest{EmployeeID: "emp-1", Status: "LOST"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestExceptionService_DetectMissedPunch(t *testing.T) {
	f := newExceptionFixture(t)
	ctx := context.Background()

	complete := f.record(t, "emp-1", attendance.PunchIn, attendance.PunchOut)
	_, err := f.service.DetectMissedPunch(ctx, complete.ID, "system")
	assert.ErrorIs(t, err, exception.ErrNoMissedPunch)

	missed := f.record(t, "emp-1", attendance.PunchIn, attendance.PunchOut, attendance.PunchIn)
	ex, err := f.service.DetectMissedPunch(ctx, missed.ID, "system")
	require.NoError(t, err)
	assert.Equal(t, exception.TypeMissedPunch, ex.Type)
	assert.Equal(t, missed.ID, ex.AttendanceRecordID)

	again, err := f.service.DetectMissedPunch(ctx, missed.ID, "system")
	require.NoError(t, err)
	assert.Equal(t, ex.ID, again.ID)

	_, err = f.service.DetectMissedPunch(ctx, "missing", "system")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

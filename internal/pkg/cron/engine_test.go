package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/escalation"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEscalation struct {
	cutoffs []time.Time
	actors  []string
	err     error
}

func (s *stubEscalation) EscalateUnresolvedRequestsBeforePayrollCutoff(_ context.Context, cutoff time.Time, actorID string) (escalation.Result, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	s.actors = append(s.actors, actorID)
	return escalation.Result{Cutoff: cutoff, Triggered: true, Items: []escalation.Item{}}, s.err
}

type stubScanner struct {
	days []int
}

func (s *stubScanner) CheckExpiringShiftAssignments(_ context.Context, daysBeforeExpiry int, _ string) ([]schedule.ExpiringAssignment, error) {
	s.days = append(s.days, daysBeforeExpiry)
	return []schedule.ExpiringAssignment{{AssignmentID: "a-1"}}, nil
}

type stubFlagger struct {
	ages    []time.Duration
	records []attendance.AttendanceRecord
}

func (s *stubFlagger) FlagStaleOpenRecords(_ context.Context, maxAge time.Duration, _ string) ([]attendance.AttendanceRecord, error) {
	s.ages = append(s.ages, maxAge)
	return s.records, nil
}

type stubDetector struct {
	recordIDs []string
	failFor   string
}

func (s *stubDetector) DetectMissedPunch(_ context.Context, recordID, _ string) (exception.TimeException, error) {
	s.recordIDs = append(s.recordIDs, recordID)
	if recordID == s.failFor {
		return exception.TimeException{}, errors.New("storage down")
	}
	return exception.TimeException{AttendanceRecordID: recordID, Type: exception.TypeMissedPunch}, nil
}

func testJobsConfig() EngineJobsConfig {
	return EngineJobsConfig{
		PayrollCutoffDay:    25,
		ShiftExpiryDays:     7,
		EscalationInterval:  time.Hour,
		ShiftExpiryInterval: 24 * time.Hour,
		StaleOpenAge:        24 * time.Hour,
		StaleOpenInterval:   time.Hour,
		SystemActorID:       "system",
	}
}

func TestPayrollCutoff(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		day  int
		want time.Time
	}{
		{"mid month", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), 25, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)},
		{"clamped to february", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 31, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"first day", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(PayrollCutoff(tt.now, tt.day)))
		})
	}
}

func TestEngineJobs_RegisteredJobsRun(t *testing.T) {
	esc := &stubEscalation{}
	scan := &stubScanner{}
	flagger := &stubFlagger{}
	clk := clock.NewManual(time.Date(2024, 3, 26, 9, 0, 0, 0, time.UTC))
	jobs := NewEngineJobs(esc, scan, flagger, &stubDetector{}, clk, testJobsConfig())
	scheduler := NewScheduler(clk, time.Minute)
	jobs.RegisterJobs(scheduler)

	// Act
	registered := scheduler.Jobs()
	for _, job := range registered {
		require.NoError(t, scheduler.Run(context.Background(), job))
	}

	// Assert
	require.Len(t, registered, 3)
	require.Len(t, esc.cutoffs, 1)
	assert.True(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC).Equal(esc.cutoffs[0]))
	assert.Equal(t, []string{"system"}, esc.actors)
	assert.Equal(t, []int{7}, scan.days)
	assert.Equal(t, []time.Duration{24 * time.Hour}, flagger.ages)
}

func TestEngineJobs_FlagStaleOpenRecords(t *testing.T) {
	flagger := &stubFlagger{records: []attendance.AttendanceRecord{{ID: "rec-1"}, {ID: "rec-2"}, {ID: "rec-3"}}}
	detector := &stubDetector{failFor: "rec-2"}
	jobs := NewEngineJobs(&stubEscalation{}, &stubScanner{}, flagger, detector, clock.NewManual(time.Now()), testJobsConfig())

	err := jobs.FlagStaleOpenRecords(context.Background())

	// one failure does not stop the rest
	assert.Equal(t, []string{"rec-1", "rec-2", "rec-3"}, detector.recordIDs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rec-2")
}

func TestEngineJobs_EscalationErrorIsWrapped(t *testing.T) {
	boom := errors.New("storage down")
	jobs := NewEngineJobs(&stubEscalation{err: boom}, &stubScanner{}, &stubFlagger{}, &stubDetector{}, clock.NewManual(time.Now()), testJobsConfig())

	err := jobs.EscalateBeforePayrollCutoff(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestScheduler_Run_TimeoutBoundsJob(t *testing.T) {
	scheduler := NewScheduler(clock.System(), 20*time.Millisecond)
	job := Job{Name: "hung", Interval: time.Hour, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	err := scheduler.Run(context.Background(), job)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_Run_RecoversPanic(t *testing.T) {
	scheduler := NewScheduler(clock.System(), time.Second)
	job := Job{Name: "broken", Interval: time.Hour, Fn: func(context.Context) error {
		panic("nil map")
	}}

	err := scheduler.Run(context.Background(), job)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler(clock.System(), time.Second)
	ran := make(chan struct{}, 1)
	scheduler.AddJob("heartbeat", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()

	scheduler.AddJob("late", time.Hour, func(context.Context) error { return nil })
	assert.Len(t, scheduler.Jobs(), 1)
}

package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/escalation"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

// EngineJobsConfig controls when the periodic scans run and who they act as.
type EngineJobsConfig struct {
	PayrollCutoffDay    int
	ShiftExpiryDays     int
	EscalationInterval  time.Duration
	ShiftExpiryInterval time.Duration
	StaleOpenAge        time.Duration
	StaleOpenInterval   time.Duration
	SystemActorID       string
}

// StaleRecordFlagger is the part of the punch ledger the stale-session job needs.
type StaleRecordFlagger interface {
	FlagStaleOpenRecords(ctx context.Context, maxAge time.Duration, actorID string) ([]attendance.AttendanceRecord, error)
}

// MissedPunchDetector raises MISSED_PUNCH exceptions for flagged records.
type MissedPunchDetector interface {
	DetectMissedPunch(ctx context.Context, recordID, actorID string) (exception.TimeException, error)
}

type EngineJobs struct {
	escalationSvc escalation.EscalationService
	expiryScanner schedule.ShiftExpiryScanner
	staleFlagger  StaleRecordFlagger
	missedPunches MissedPunchDetector
	clock         clock.Clock
	cfg           EngineJobsConfig
}

func NewEngineJobs(
	escalationSvc escalation.EscalationService,
	expiryScanner schedule.ShiftExpiryScanner,
	staleFlagger StaleRecordFlagger,
	missedPunches MissedPunchDetector,
	clk clock.Clock,
	cfg EngineJobsConfig,
) *EngineJobs {
	return &EngineJobs{
		escalationSvc: escalationSvc,
		expiryScanner: expiryScanner,
		staleFlagger:  staleFlagger,
		missedPunches: missedPunches,
		clock:         clk,
		cfg:           cfg,
	}
}

func (j *EngineJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("payroll_cutoff_escalation", j.cfg.EscalationInterval, j.EscalateBeforePayrollCutoff)
	scheduler.AddJob("expiring_shift_assignments", j.cfg.ShiftExpiryInterval, j.ScanExpiringShiftAssignments)
	scheduler.AddJob("stale_open_records", j.cfg.StaleOpenInterval, j.FlagStaleOpenRecords)
}

// PayrollCutoff returns the cutoff instant for the month containing now:
// the start of the configured day, clamped to the last day of the month.
func PayrollCutoff(now time.Time, cutoffDay int) time.Time {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	day := cutoffDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
}

// EscalateBeforePayrollCutoff runs the escalation sweep against this month's cutoff.
// Before the cutoff the sweep is a no-op.
func (j *EngineJobs) EscalateBeforePayrollCutoff(ctx context.Context) error {
	cutoff := PayrollCutoff(j.clock.Now(), j.cfg.PayrollCutoffDay)

	result, err := j.escalationSvc.EscalateUnresolvedRequestsBeforePayrollCutoff(ctx, cutoff, j.cfg.SystemActorID)
	if err != nil {
		return fmt.Errorf("payroll cutoff escalation: %w", err)
	}

	if result.Triggered {
		slog.Info("Cron: Payroll cutoff escalation completed",
			"cutoff", result.Cutoff,
			"escalated_count", result.Count,
		)
	}
	return nil
}

func (j *EngineJobs) ScanExpiringShiftAssignments(ctx context.Context) error {
	expiring, err := j.expiryScanner.CheckExpiringShiftAssignments(ctx, j.cfg.ShiftExpiryDays, j.cfg.SystemActorID)
	if err != nil {
		return fmt.Errorf("scan expiring shift assignments: %w", err)
	}

	slog.Info("Cron: Expiring shift assignment scan completed",
		"days_before_expiry", j.cfg.ShiftExpiryDays,
		"expiring_count", len(expiring),
	)
	return nil
}

// FlagStaleOpenRecords flags sessions that were clocked in but never clocked
// out and raises a MISSED_PUNCH exception for each. Raising is idempotent,
// so a record whose exception failed last run is retried.
func (j *EngineJobs) FlagStaleOpenRecords(ctx context.Context) error {
	stale, err := j.staleFlagger.FlagStaleOpenRecords(ctx, j.cfg.StaleOpenAge, j.cfg.SystemActorID)
	if err != nil {
		return fmt.Errorf("flag stale open records: %w", err)
	}

	var errs []error
	for _, rec := range stale {
		if _, err := j.missedPunches.DetectMissedPunch(ctx, rec.ID, j.cfg.SystemActorID); err != nil {
			errs = append(errs, fmt.Errorf("raise missed punch for record %s: %w", rec.ID, err))
		}
	}

	slog.Info("Cron: Stale open record scan completed",
		"max_age", j.cfg.StaleOpenAge,
		"stale_count", len(stale),
		"failed_count", len(errs),
	)
	return errors.Join(errs...)
}

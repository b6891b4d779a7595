package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	assignments schedule.ShiftAssignmentRepository
	auditSink   audit.Sink
	locker      lock.Locker
	clock       clock.Clock
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	assignmentRepo schedule.ShiftAssignmentRepository,
	auditSink audit.Sink,
	locker lock.Locker,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		assignments:          assignmentRepo,
		auditSink:            auditSink,
		locker:               locker,
		clock:                clk,
	}
}

func punchKey(employeeID string) string {
	return lock.EmployeeKey("punch", employeeID)
}

func (a *AttendanceServiceImpl) record(ctx context.Context, rec attendance.AttendanceRecord, action string, changes map[string]any) error {
	err := a.auditSink.Append(ctx, audit.Entry{
		Entity:    audit.EntityAttendanceRecord,
		EntityID:  rec.ID,
		Action:    action,
		ChangeSet: changes,
		ActorID:   rec.UpdatedBy,
		Timestamp: a.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, employeeID, actorID string) (attendance.AttendanceRecord, error) {
	now := a.clock.Now()

	// An open session is not a missed punch yet; clock-out settles the flag.
	rec := attendance.AttendanceRecord{
		EmployeeID: employeeID,
		Punches:    []attendance.Punch{{Type: attendance.PunchIn, Time: now}},
		CreatedBy:  actorID,
		UpdatedBy:  actorID,
	}

	created, err := a.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	if err := a.record(ctx, created, "CLOCK_IN", map[string]any{
		"employee_id": employeeID,
		"punch":       attendance.Punch{Type: attendance.PunchIn, Time: now},
	}); err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return created, nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, employeeID, actorID string) (attendance.AttendanceRecord, error) {
	var result attendance.AttendanceRecord

	err := lock.WithLock(ctx, a.locker, punchKey(employeeID), func(ctx context.Context) error {
		records, err := a.AttendanceRepository.ListByEmployee(ctx, employeeID, 0)
		if err != nil {
			return fmt.Errorf("failed to list attendance records: %w", err)
		}
		if len(records) == 0 {
			return attendance.ErrNoAttendanceFound
		}

		var open *attendance.AttendanceRecord
		for i := range records {
			if records[i].IsOpen() {
				open = &records[i]
				break
			}
		}
		if open == nil {
			return attendance.ErrNoActiveClockIn
		}
		if open.FinalisedForPayroll {
			return attendance.ErrRecordFinalised
		}

		now := a.clock.Now()
		punches := append(append([]attendance.Punch{}, open.Punches...), attendance.Punch{Type: attendance.PunchOut, Time: now})
		applyPunches(open, punches)
		open.UpdatedBy = actorID

		updated, err := a.AttendanceRepository.Update(ctx, *open)
		if err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		if err := a.record(ctx, updated, "CLOCK_OUT", map[string]any{
			"employee_id":        employeeID,
			"punch":              attendance.Punch{Type: attendance.PunchOut, Time: now},
			"total_work_minutes": updated.TotalWorkMinutes,
		}); err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return result, nil
}

// RecordPunchWithMetadata implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordPunchWithMetadata(ctx context.Context, req attendance.RecordPunchRequest, actorID string) (attendance.AttendanceRecord, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceRecord{}, err
	}
	punches := req.ParsedPunches()

	if req.Policy != nil {
		if err := EnforcePunchPolicy(attendance.PunchPolicy(*req.Policy), punches); err != nil {
			return attendance.AttendanceRecord{}, err
		}
	}

	if req.EnforceShiftWindow {
		assignment, err := a.assignments.GetActiveForEmployee(ctx, req.EmployeeID, punches[0].Time)
		if err != nil {
			if errors.Is(err, schedule.ErrShiftAssignmentNotFound) {
				return attendance.AttendanceRecord{}, fmt.Errorf("%w: no approved shift covers the punches", attendance.ErrOutsideShiftWindow)
			}
			return attendance.AttendanceRecord{}, fmt.Errorf("failed to get active shift assignment: %w", err)
		}

		if req.Policy == nil && assignment.Shift.PunchPolicy != "" {
			if err := EnforcePunchPolicy(attendance.PunchPolicy(assignment.Shift.PunchPolicy), punches); err != nil {
				return attendance.AttendanceRecord{}, err
			}
		}

		window := attendance.ShiftWindow{
			ShiftStart:        assignment.Shift.StartTime,
			ShiftEnd:          assignment.Shift.EndTime,
			AllowEarlyMinutes: assignment.Shift.AllowEarlyMinutes,
			AllowLateMinutes:  assignment.Shift.AllowLateMinutes,
		}
		if err := EnforceShiftPunchPolicy(window, punches); err != nil {
			return attendance.AttendanceRecord{}, err
		}
	}

	rec := attendance.AttendanceRecord{
		EmployeeID: req.EmployeeID,
		DeviceID:   req.DeviceID,
		Location:   req.Location,
		Source:     req.Source,
		CreatedBy:  actorID,
		UpdatedBy:  actorID,
	}
	applyPunches(&rec, punches)

	created, err := a.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	if err := a.record(ctx, created, "RECORD_PUNCHES", map[string]any{
		"employee_id":        req.EmployeeID,
		"punch_count":        len(punches),
		"has_missed_punch":   created.HasMissedPunch,
		"total_work_minutes": created.TotalWorkMinutes,
		"device_id":          req.DeviceID,
		"location":           req.Location,
		"source":             req.Source,
	}); err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return created, nil
}

// RoundRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RoundRecord(ctx context.Context, req attendance.RoundRecordRequest, actorID string) (attendance.AttendanceRecord, error) {
	rec, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	var result attendance.AttendanceRecord
	err = lock.WithLock(ctx, a.locker, punchKey(rec.EmployeeID), func(ctx context.Context) error {
		// re-read under the lock
		rec, err := a.AttendanceRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if rec.FinalisedForPayroll {
			return attendance.ErrRecordFinalised
		}

		strategy := ParseRoundingStrategy(req.Strategy)
		before := rec.TotalWorkMinutes
		rounded := RoundMinutes(before, req.IntervalMinutes, strategy)
		if rounded == before {
			result = rec
			return nil
		}

		rec.TotalWorkMinutes = rounded
		rec.UpdatedBy = actorID
		updated, err := a.AttendanceRepository.Update(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		if err := a.record(ctx, updated, "ROUND_MINUTES", map[string]any{
			"interval_minutes": req.IntervalMinutes,
			"strategy":         string(strategy),
			"from":             before,
			"to":               rounded,
		}); err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return result, nil
}

// ReplacePunches implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ReplacePunches(ctx context.Context, recordID string, punches []attendance.Punch, actorID string) (attendance.AttendanceRecord, error) {
	rec, err := a.AttendanceRepository.GetByID(ctx, recordID)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	var result attendance.AttendanceRecord
	err = lock.WithLock(ctx, a.locker, punchKey(rec.EmployeeID), func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.FinalisedForPayroll {
			return attendance.ErrRecordFinalised
		}

		before := rec.TotalWorkMinutes
		applyPunches(&rec, append([]attendance.Punch{}, punches...))
		rec.UpdatedBy = actorID

		updated, err := a.AttendanceRepository.Update(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		if err := a.record(ctx, updated, "REPLACE_PUNCHES", map[string]any{
			"punch_count":      len(punches),
			"from_minutes":     before,
			"to_minutes":       updated.TotalWorkMinutes,
			"has_missed_punch": updated.HasMissedPunch,
		}); err != nil {
			return err
		}

		result = updated
		return nil
	})
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return result, nil
}

// FinaliseForPayroll implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) FinaliseForPayroll(ctx context.Context, ids []string, actorID string) ([]attendance.AttendanceRecord, error) {
	finalised := make([]attendance.AttendanceRecord, 0, len(ids))

	for _, id := range ids {
		rec, err := a.AttendanceRepository.GetByID(ctx, id)
		if err != nil {
			return finalised, err
		}

		err = lock.WithLock(ctx, a.locker, punchKey(rec.EmployeeID), func(ctx context.Context) error {
			rec, err := a.AttendanceRepository.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if rec.FinalisedForPayroll {
				return nil
			}

			rec.FinalisedForPayroll = true
			if rec.IsOpen() {
				rec.HasMissedPunch = true
			}
			rec.UpdatedBy = actorID
			updated, err := a.AttendanceRepository.Update(ctx, rec)
			if err != nil {
				return fmt.Errorf("failed to finalise attendance record: %w", err)
			}

			if err := a.record(ctx, updated, "FINALISE_FOR_PAYROLL", map[string]any{
				"total_work_minutes": updated.TotalWorkMinutes,
				"has_missed_punch":   updated.HasMissedPunch,
			}); err != nil {
				return err
			}

			finalised = append(finalised, updated)
			return nil
		})
		if err != nil {
			return finalised, err
		}
	}

	return finalised, nil
}

// FlagStaleOpenRecords implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) FlagStaleOpenRecords(ctx context.Context, maxAge time.Duration, actorID string) ([]attendance.AttendanceRecord, error) {
	cutoff := a.clock.Now().Add(-maxAge)

	candidates, err := a.AttendanceRepository.ListOpenCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}

	stale := make([]attendance.AttendanceRecord, 0, len(candidates))
	for _, candidate := range candidates {
		err := lock.WithLock(ctx, a.locker, punchKey(candidate.EmployeeID), func(ctx context.Context) error {
			rec, err := a.AttendanceRepository.GetByID(ctx, candidate.ID)
			if err != nil {
				return err
			}
			// closed or finalised since the listing
			if !rec.IsOpen() || rec.FinalisedForPayroll {
				return nil
			}
			if rec.HasMissedPunch {
				stale = append(stale, rec)
				return nil
			}

			rec.HasMissedPunch = true
			rec.UpdatedBy = actorID
			updated, err := a.AttendanceRepository.Update(ctx, rec)
			if err != nil {
				return fmt.Errorf("failed to flag attendance record: %w", err)
			}

			if err := a.record(ctx, updated, "FLAG_STALE_OPEN", map[string]any{
				"employee_id": updated.EmployeeID,
				"opened_at":   updated.CreatedAt,
				"cutoff":      cutoff,
			}); err != nil {
				return err
			}

			stale = append(stale, updated)
			return nil
		})
		if err != nil {
			return stale, err
		}
	}

	return stale, nil
}

// GetRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRecord(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	rec, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// ListRecords implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	records, err := a.AttendanceRepository.ListByEmployeeAndPeriod(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}

// PeriodSummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PeriodSummary(ctx context.Context, employeeID string, from, to time.Time) (attendance.PeriodSummary, error) {
	records, err := a.ListRecords(ctx, employeeID, from, to)
	if err != nil {
		return attendance.PeriodSummary{}, err
	}

	summary := attendance.PeriodSummary{
		EmployeeID:  employeeID,
		StartDate:   from,
		EndDate:     to,
		RecordCount: len(records),
	}
	for _, rec := range records {
		summary.TotalWorkMinutes += rec.TotalWorkMinutes
		if rec.HasMissedPunch {
			summary.MissedPunchCount++
		}
		if rec.FinalisedForPayroll {
			summary.FinalisedCount++
		}
		if rec.IsOpen() {
			summary.OpenRecordCount++
		}
	}
	return summary, nil
}

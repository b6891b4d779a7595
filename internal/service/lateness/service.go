package lateness

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
)

// ActionAutoEscalation is the disciplinary action raised when the LATE
// count reaches the threshold.
const ActionAutoEscalation = "AUTO_ESCALATION"

type LatenessMonitorImpl struct {
	exception.ExceptionRepository
	auditSink audit.Sink
	locker    lock.Locker
	clock     clock.Clock
}

func NewLatenessMonitor(
	exceptionRepo exception.ExceptionRepository,
	auditSink audit.Sink,
	locker lock.Locker,
	clk clock.Clock,
) exception.LatenessMonitor {
	return &LatenessMonitorImpl{
		ExceptionRepository: exceptionRepo,
		auditSink:           auditSink,
		locker:              locker,
		clock:               clk,
	}
}

// MonitorRepeatedLateness implements exception.LatenessMonitor. The count
// covers every LATE exception the employee has ever had.
func (l *LatenessMonitorImpl) MonitorRepeatedLateness(ctx context.Context, employeeID string, threshold int, actorID string) (exception.LatenessResult, error) {
	if threshold < 1 {
		return exception.LatenessResult{}, exception.ErrInvalidThreshold
	}

	result := exception.LatenessResult{EmployeeID: employeeID, Threshold: threshold}
	err := lock.WithLock(ctx, l.locker, lock.EmployeeKey("lateness", employeeID), func(ctx context.Context) error {
		count, err := l.ExceptionRepository.CountByEmployeeAndType(ctx, employeeID, exception.TypeLate)
		if err != nil {
			return fmt.Errorf("failed to count late exceptions: %w", err)
		}
		result.Count = count
		result.Exceeded = count >= threshold

		if !result.Exceeded {
			return nil
		}
		return l.trigger(ctx, employeeID, ActionAutoEscalation, actorID, map[string]any{
			"count":     count,
			"threshold": threshold,
		})
	})
	if err != nil {
		return exception.LatenessResult{}, err
	}

	return result, nil
}

// TriggerLatenessDisciplinary implements exception.LatenessMonitor. It only
// records the action; nothing else changes state.
func (l *LatenessMonitorImpl) TriggerLatenessDisciplinary(ctx context.Context, employeeID, action, actorID string) error {
	return l.trigger(ctx, employeeID, action, actorID, nil)
}

func (l *LatenessMonitorImpl) trigger(ctx context.Context, employeeID, action, actorID string, extra map[string]any) error {
	changes := map[string]any{
		"employee_id": employeeID,
		"action":      action,
	}
	for k, v := range extra {
		changes[k] = v
	}

	err := l.auditSink.Append(ctx, audit.Entry{
		Entity:    audit.EntityLatenessDisciplinary,
		EntityID:  employeeID,
		Action:    action,
		ChangeSet: changes,
		ActorID:   actorID,
		Timestamp: l.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

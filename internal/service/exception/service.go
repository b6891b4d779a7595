package exception

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

type ExceptionServiceImpl struct {
	exception.ExceptionRepository
	attendanceRepo attendance.AttendanceRepository
	auditSink      audit.Sink
	clock          clock.Clock
}

func NewExceptionService(
	exceptionRepo exception.ExceptionRepository,
	attendanceRepo attendance.AttendanceRepository,
	auditSink audit.Sink,
	clk clock.Clock,
) exception.ExceptionService {
	return &ExceptionServiceImpl{
		ExceptionRepository: exceptionRepo,
		attendanceRepo:      attendanceRepo,
		auditSink:           auditSink,
		clock:               clk,
	}
}

func (s *ExceptionServiceImpl) audit(ctx context.Context, ex exception.TimeException, action string, changes map[string]any) error {
	err := s.auditSink.Append(ctx, audit.Entry{
		Entity:    audit.EntityTimeException,
		EntityID:  ex.ID,
		Action:    action,
		ChangeSet: changes,
		ActorID:   ex.UpdatedBy,
		Timestamp: s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Create implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Create(ctx context.Context, req exception.CreateRequest, actorID string) (exception.TimeException, error) {
	if err := req.Validate(); err != nil {
		return exception.TimeException{}, err
	}

	rec, err := s.attendanceRepo.GetByID(ctx, req.AttendanceRecordID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return exception.TimeException{}, attendance.ErrAttendanceNotFound
		}
		return exception.TimeException{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec.EmployeeID != req.EmployeeID {
		return exception.TimeException{}, exception.ErrRecordMismatch
	}

	return s.create(ctx, exception.TimeException{
		EmployeeID:         req.EmployeeID,
		AttendanceRecordID: req.AttendanceRecordID,
		Type:               exception.Type(req.Type),
		Status:             exception.StatusOpen,
		Reason:             req.Reason,
		CreatedBy:          actorID,
		UpdatedBy:          actorID,
	})
}

func (s *ExceptionServiceImpl) create(ctx context.Context, ex exception.TimeException) (exception.TimeException, error) {
	created, err := s.ExceptionRepository.Create(ctx, ex)
	if err != nil {
		return exception.TimeException{}, fmt.Errorf("failed to create time exception: %w", err)
	}

	if err := s.audit(ctx, created, "CREATE", map[string]any{
		"employee_id":          created.EmployeeID,
		"attendance_record_id": created.AttendanceRecordID,
		"type":                 string(created.Type),
		"status":               string(created.Status),
		"reason":               created.Reason,
	}); err != nil {
		return exception.TimeException{}, err
	}

	return created, nil
}

// Get implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Get(ctx context.Context, id string) (exception.TimeException, error) {
	ex, err := s.ExceptionRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, exception.ErrExceptionNotFound) {
			return exception.TimeException{}, exception.ErrExceptionNotFound
		}
		return exception.TimeException{}, fmt.Errorf("failed to get time exception: %w", err)
	}
	return ex, nil
}

// List implements exception.ExceptionService.
func (s *ExceptionServiceImpl) List(ctx context.Context, req exception.ListRequest) ([]exception.TimeException, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := exception.Filter{EmployeeID: req.EmployeeID}
	if req.Status != "" {
		filter.Statuses = []exception.Status{exception.Status(req.Status)}
	}

	items, err := s.ExceptionRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list time exceptions: %w", err)
	}
	return items, nil
}

func (s *ExceptionServiceImpl) transition(ctx context.Context, t exception.Transition, action string) (exception.TimeException, error) {
	ex, err := s.ExceptionRepository.Transition(ctx, t)
	if err != nil {
		if errors.Is(err, exception.ErrExceptionNotFound) || errors.Is(err, exception.ErrInvalidTransition) {
			return exception.TimeException{}, err
		}
		return exception.TimeException{}, fmt.Errorf("failed to transition time exception: %w", err)
	}

	changes := map[string]any{"status": string(ex.Status)}
	if t.AssignedTo != nil {
		changes["assigned_to"] = *t.AssignedTo
	}
	if err := s.audit(ctx, ex, action, changes); err != nil {
		return exception.TimeException{}, err
	}
	return ex, nil
}

// MarkPending implements exception.ExceptionService.
func (s *ExceptionServiceImpl) MarkPending(ctx context.Context, id string, assignedTo *string, actorID string) (exception.TimeException, error) {
	return s.transition(ctx, exception.Transition{
		ID:         id,
		From:       exception.FromForPending,
		To:         exception.StatusPending,
		ActorID:    actorID,
		AssignedTo: assignedTo,
	}, "MARK_PENDING")
}

// Approve implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Approve(ctx context.Context, id, actorID string) (exception.TimeException, error) {
	return s.transition(ctx, exception.Transition{
		ID:      id,
		From:    exception.FromForDecision,
		To:      exception.StatusApproved,
		ActorID: actorID,
	}, "APPROVE")
}

// Reject implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Reject(ctx context.Context, id, actorID string) (exception.TimeException, error) {
	return s.transition(ctx, exception.Transition{
		ID:      id,
		From:    exception.FromForDecision,
		To:      exception.StatusRejected,
		ActorID: actorID,
	}, "REJECT")
}

// Escalate implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Escalate(ctx context.Context, id, actorID string) (exception.TimeException, error) {
	return s.transition(ctx, exception.Transition{
		ID:      id,
		From:    exception.FromForEscalate,
		To:      exception.StatusEscalated,
		ActorID: actorID,
	}, "ESCALATE")
}

// Resolve implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Resolve(ctx context.Context, id, actorID string) (exception.TimeException, error) {
	return s.transition(ctx, exception.Transition{
		ID:      id,
		From:    exception.FromForResolve,
		To:      exception.StatusResolved,
		ActorID: actorID,
	}, "RESOLVE")
}

// DetectMissedPunch implements exception.ExceptionService. A record already
// carrying a MISSED_PUNCH exception gets that exception back.
func (s *ExceptionServiceImpl) DetectMissedPunch(ctx context.Context, recordID, actorID string) (exception.TimeException, error) {
	rec, err := s.attendanceRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return exception.TimeException{}, attendance.ErrAttendanceNotFound
		}
		return exception.TimeException{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if !rec.HasMissedPunch {
		return exception.TimeException{}, exception.ErrNoMissedPunch
	}

	missed := exception.TypeMissedPunch
	existing, err := s.ExceptionRepository.List(ctx, exception.Filter{EmployeeID: rec.EmployeeID, Type: &missed})
	if err != nil {
		return exception.TimeException{}, fmt.Errorf("failed to list time exceptions: %w", err)
	}
	for _, ex := range existing {
		if ex.AttendanceRecordID == rec.ID {
			return ex, nil
		}
	}

	return s.create(ctx, exception.TimeException{
		EmployeeID:         rec.EmployeeID,
		AttendanceRecordID: rec.ID,
		Type:               exception.TypeMissedPunch,
		Status:             exception.StatusOpen,
		Reason:             fmt.Sprintf("record has %d punches with an unmatched or out-of-order punch", len(rec.Punches)),
		CreatedBy:          actorID,
		UpdatedBy:          actorID,
	})
}

package correction

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
)

type CorrectionServiceImpl struct {
	correction.CorrectionRepository
	ledger     attendance.AttendanceService
	transactor database.Transactor
	locker     lock.Locker
	auditSink  audit.Sink
	clock      clock.Clock
}

func NewCorrectionService(
	correctionRepo correction.CorrectionRepository,
	ledger attendance.AttendanceService,
	transactor database.Transactor,
	locker lock.Locker,
	auditSink audit.Sink,
	clk clock.Clock,
) correction.CorrectionService {
	return &CorrectionServiceImpl{
		CorrectionRepository: correctionRepo,
		ledger:               ledger,
		transactor:           transactor,
		locker:               locker,
		auditSink:            auditSink,
		clock:                clk,
	}
}

func (s *CorrectionServiceImpl) audit(ctx context.Context, c correction.CorrectionRequest, action string, changes map[string]any) error {
	err := s.auditSink.Append(ctx, audit.Entry{
		Entity:    audit.EntityCorrectionRequest,
		EntityID:  c.ID,
		Action:    action,
		ChangeSet: changes,
		ActorID:   c.UpdatedBy,
		Timestamp: s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Submit implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Submit(ctx context.Context, req correction.SubmitRequest, actorID string) (correction.CorrectionRequest, error) {
	if err := req.Validate(); err != nil {
		return correction.CorrectionRequest{}, err
	}

	rec, err := s.ledger.GetRecord(ctx, req.AttendanceRecordID)
	if err != nil {
		return correction.CorrectionRequest{}, err
	}
	if rec.EmployeeID != req.EmployeeID {
		return correction.CorrectionRequest{}, correction.ErrRecordMismatch
	}

	created, err := s.CorrectionRepository.Create(ctx, correction.CorrectionRequest{
		EmployeeID:         req.EmployeeID,
		AttendanceRecordID: req.AttendanceRecordID,
		Reason:             req.Reason,
		ProposedPunches:    req.ParsedPunches(),
		Status:             correction.StatusSubmitted,
		CreatedBy:          actorID,
		UpdatedBy:          actorID,
	})
	if err != nil {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	if err := s.audit(ctx, created, "SUBMIT", map[string]any{
		"employee_id":          created.EmployeeID,
		"attendance_record_id": created.AttendanceRecordID,
		"reason":               created.Reason,
		"proposed_punches":     len(created.ProposedPunches),
	}); err != nil {
		return correction.CorrectionRequest{}, err
	}

	return created, nil
}

// Get implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Get(ctx context.Context, id string) (correction.CorrectionRequest, error) {
	c, err := s.CorrectionRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) {
			return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	return c, nil
}

// List implements correction.CorrectionService.
func (s *CorrectionServiceImpl) List(ctx context.Context, req correction.ListRequest) ([]correction.CorrectionRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := correction.Filter{EmployeeID: req.EmployeeID}
	if req.Status != "" {
		filter.Statuses = []correction.Status{correction.Status(req.Status)}
	}

	items, err := s.CorrectionRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	return items, nil
}

func decisionKey(id string) string {
	return lock.Key("correction", id)
}

// decide runs a reviewer decision on one request under its lock, so an
// approval's punch replacement and a competing decision never interleave.
func (s *CorrectionServiceImpl) decide(ctx context.Context, t correction.Transition, action string) (correction.CorrectionRequest, error) {
	var result correction.CorrectionRequest
	err := lock.WithLock(ctx, s.locker, decisionKey(t.ID), func(ctx context.Context) error {
		var err error
		result, err = s.transition(ctx, t, action)
		return err
	})
	if err != nil {
		return correction.CorrectionRequest{}, err
	}
	return result, nil
}

func (s *CorrectionServiceImpl) transition(ctx context.Context, t correction.Transition, action string) (correction.CorrectionRequest, error) {
	c, err := s.CorrectionRepository.Transition(ctx, t)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) || errors.Is(err, correction.ErrInvalidTransition) {
			return correction.CorrectionRequest{}, err
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to transition correction request: %w", err)
	}

	changes := map[string]any{"status": string(c.Status)}
	if t.Reason != nil {
		changes["reason"] = *t.Reason
	}
	if err := s.audit(ctx, c, action, changes); err != nil {
		return correction.CorrectionRequest{}, err
	}
	return c, nil
}

// StartReview implements correction.CorrectionService.
func (s *CorrectionServiceImpl) StartReview(ctx context.Context, id, actorID string) (correction.CorrectionRequest, error) {
	return s.decide(ctx, correction.Transition{
		ID:      id,
		From:    correction.FromForReview,
		To:      correction.StatusInReview,
		ActorID: actorID,
	}, "START_REVIEW")
}

// Approve implements correction.CorrectionService. Proposed punches are
// written to the attendance record in the same unit of work as the status
// change. The request lock keeps a concurrent decision from landing between
// the status check and the transition, which matters where the transactor
// cannot roll back.
func (s *CorrectionServiceImpl) Approve(ctx context.Context, id string, req correction.DecisionRequest, actorID string) (correction.CorrectionRequest, error) {
	var result correction.CorrectionRequest

	err := lock.WithLock(ctx, s.locker, decisionKey(id), func(ctx context.Context) error {
		return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.approve(ctx, id, req, actorID, &result)
		})
	})
	if err != nil {
		return correction.CorrectionRequest{}, err
	}

	return result, nil
}

func (s *CorrectionServiceImpl) approve(ctx context.Context, id string, req correction.DecisionRequest, actorID string, result *correction.CorrectionRequest) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !slices.Contains(correction.FromForDecision, current.Status) {
		return correction.ErrInvalidTransition
	}

	if len(current.ProposedPunches) > 0 {
		if _, err := s.ledger.ReplacePunches(ctx, current.AttendanceRecordID, current.ProposedPunches, actorID); err != nil {
			return err
		}
	}

	*result, err = s.transition(ctx, correction.Transition{
		ID:      id,
		From:    correction.FromForDecision,
		To:      correction.StatusApproved,
		ActorID: actorID,
		Reason:  req.Reason,
	}, "APPROVE")
	return err
}

// Reject implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Reject(ctx context.Context, id string, req correction.DecisionRequest, actorID string) (correction.CorrectionRequest, error) {
	return s.decide(ctx, correction.Transition{
		ID:      id,
		From:    correction.FromForDecision,
		To:      correction.StatusRejected,
		ActorID: actorID,
		Reason:  req.Reason,
	}, "REJECT")
}

// Escalate implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Escalate(ctx context.Context, id, actorID string) (correction.CorrectionRequest, error) {
	return s.decide(ctx, correction.Transition{
		ID:      id,
		From:    correction.FromForEscalate,
		To:      correction.StatusEscalated,
		ActorID: actorID,
	}, "ESCALATE")
}

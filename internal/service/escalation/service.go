package escalation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/escalation"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
)

const actionAutoEscalate = "AUTO_ESCALATE"

type escalationServiceImpl struct {
	correctionRepo correction.CorrectionRepository
	exceptionRepo  exception.ExceptionRepository
	auditSink      audit.Sink
	clock          clock.Clock
}

func NewEscalationService(
	correctionRepo correction.CorrectionRepository,
	exceptionRepo exception.ExceptionRepository,
	auditSink audit.Sink,
	clk clock.Clock,
) escalation.EscalationService {
	return &escalationServiceImpl{
		correctionRepo: correctionRepo,
		exceptionRepo:  exceptionRepo,
		auditSink:      auditSink,
		clock:          clk,
	}
}

// EscalateUnresolvedRequestsBeforePayrollCutoff implements
// escalation.EscalationService. Each item is moved with a conditional
// transition, so an item another actor decided in the meantime is skipped
// and repeated sweeps never double-escalate.
func (s *escalationServiceImpl) EscalateUnresolvedRequestsBeforePayrollCutoff(ctx context.Context, cutoff time.Time, actorID string) (escalation.Result, error) {
	now := s.clock.Now()
	result := escalation.Result{Cutoff: cutoff, Items: []escalation.Item{}}
	if now.Before(cutoff) {
		return result, nil
	}
	result.Triggered = true

	corrections, err := s.correctionRepo.List(ctx, correction.Filter{Statuses: correction.Unresolved})
	if err != nil {
		return escalation.Result{}, fmt.Errorf("failed to list unresolved correction requests: %w", err)
	}
	for _, c := range corrections {
		updated, from, err := s.escalateCorrection(ctx, c, actorID)
		if err != nil {
			return escalation.Result{}, err
		}
		if updated == nil {
			continue
		}
		if err := s.audit(ctx, audit.EntityCorrectionRequest, updated.ID, string(from), actorID, now); err != nil {
			return escalation.Result{}, err
		}
		result.Items = append(result.Items, escalation.Item{Type: audit.EntityCorrectionRequest, ID: updated.ID})
	}

	exceptions, err := s.exceptionRepo.List(ctx, exception.Filter{Statuses: exception.Unresolved})
	if err != nil {
		return escalation.Result{}, fmt.Errorf("failed to list unresolved time exceptions: %w", err)
	}
	for _, ex := range exceptions {
		updated, from, err := s.escalateException(ctx, ex, actorID)
		if err != nil {
			return escalation.Result{}, err
		}
		if updated == nil {
			continue
		}
		if err := s.audit(ctx, audit.EntityTimeException, updated.ID, string(from), actorID, now); err != nil {
			return escalation.Result{}, err
		}
		result.Items = append(result.Items, escalation.Item{Type: audit.EntityTimeException, ID: updated.ID})
	}

	result.Count = len(result.Items)

	err = s.auditSink.Append(ctx, audit.Entry{
		Entity: audit.EntityPayrollCutoffEscalate,
		Action: "SWEEP",
		ChangeSet: map[string]any{
			"cutoff": cutoff,
			"count":  result.Count,
		},
		ActorID:   actorID,
		Timestamp: now,
	})
	if err != nil {
		return escalation.Result{}, fmt.Errorf("failed to write audit entry: %w", err)
	}

	return result, nil
}

// escalateCorrection moves c to ESCALATED only from the status it was last
// seen in, so the returned from status is the one actually replaced. When
// the status moved since the listing it is re-read and retried while still
// unresolved. A nil request means the item no longer needs escalating.
func (s *escalationServiceImpl) escalateCorrection(ctx context.Context, c correction.CorrectionRequest, actorID string) (*correction.CorrectionRequest, correction.Status, error) {
	from := c.Status
	for attempt := 0; attempt <= len(correction.Unresolved); attempt++ {
		if !slices.Contains(correction.Unresolved, from) {
			return nil, "", nil
		}
		updated, err := s.correctionRepo.Transition(ctx, correction.Transition{
			ID:      c.ID,
			From:    []correction.Status{from},
			To:      correction.StatusEscalated,
			ActorID: actorID,
		})
		switch {
		case err == nil:
			return &updated, from, nil
		case errors.Is(err, correction.ErrCorrectionNotFound):
			return nil, "", nil
		case !errors.Is(err, correction.ErrInvalidTransition):
			return nil, "", fmt.Errorf("failed to escalate correction request %s: %w", c.ID, err)
		}

		current, err := s.correctionRepo.GetByID(ctx, c.ID)
		if err != nil {
			if errors.Is(err, correction.ErrCorrectionNotFound) {
				return nil, "", nil
			}
			return nil, "", fmt.Errorf("failed to reload correction request %s: %w", c.ID, err)
		}
		from = current.Status
	}
	return nil, "", nil
}

// escalateException is escalateCorrection for time exceptions.
func (s *escalationServiceImpl) escalateException(ctx context.Context, ex exception.TimeException, actorID string) (*exception.TimeException, exception.Status, error) {
	from := ex.Status
	for attempt := 0; attempt <= len(exception.Unresolved); attempt++ {
		if !slices.Contains(exception.Unresolved, from) {
			return nil, "", nil
		}
		updated, err := s.exceptionRepo.Transition(ctx, exception.Transition{
			ID:      ex.ID,
			From:    []exception.Status{from},
			To:      exception.StatusEscalated,
			ActorID: actorID,
		})
		switch {
		case err == nil:
			return &updated, from, nil
		case errors.Is(err, exception.ErrExceptionNotFound):
			return nil, "", nil
		case !errors.Is(err, exception.ErrInvalidTransition):
			return nil, "", fmt.Errorf("failed to escalate time exception %s: %w", ex.ID, err)
		}

		current, err := s.exceptionRepo.GetByID(ctx, ex.ID)
		if err != nil {
			if errors.Is(err, exception.ErrExceptionNotFound) {
				return nil, "", nil
			}
			return nil, "", fmt.Errorf("failed to reload time exception %s: %w", ex.ID, err)
		}
		from = current.Status
	}
	return nil, "", nil
}

func (s *escalationServiceImpl) audit(ctx context.Context, entity, id, from, actorID string, at time.Time) error {
	err := s.auditSink.Append(ctx, audit.Entry{
		Entity:   entity,
		EntityID: id,
		Action:   actionAutoEscalate,
		ChangeSet: map[string]any{
			"from":   from,
			"status": "ESCALATED",
		},
		ActorID:   actorID,
		Timestamp: at,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

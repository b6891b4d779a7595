package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type correctionRepository struct {
	mu          sync.RWMutex
	clock       clock.Clock
	corrections map[string]correction.CorrectionRequest
	order       []string
}

func NewCorrectionRepository(c clock.Clock) correction.CorrectionRepository {
	return &correctionRepository{
		clock:       c,
		corrections: make(map[string]correction.CorrectionRequest),
	}
}

func cloneCorrection(c correction.CorrectionRequest) correction.CorrectionRequest {
	c.ProposedPunches = copyPunches(c.ProposedPunches)
	return c
}

// Create implements correction.CorrectionRepository.
func (r *correctionRepository) Create(_ context.Context, req correction.CorrectionRequest) (correction.CorrectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := nowFrom(r.clock)
	req = cloneCorrection(req)
	req.ID = uuid.NewString()
	req.CreatedAt = now
	req.UpdatedAt = now

	r.corrections[req.ID] = req
	r.order = append(r.order, req.ID)
	return cloneCorrection(req), nil
}

// GetByID implements correction.CorrectionRepository.
func (r *correctionRepository) GetByID(_ context.Context, id string) (correction.CorrectionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.corrections[id]
	if !ok {
		return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
	}
	return cloneCorrection(c), nil
}

// List implements correction.CorrectionRepository. Results are oldest-first.
func (r *correctionRepository) List(_ context.Context, filter correction.Filter) ([]correction.CorrectionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []correction.CorrectionRequest
	for _, id := range r.order {
		c := r.corrections[id]
		if filter.EmployeeID != "" && c.EmployeeID != filter.EmployeeID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, c.Status) {
			continue
		}
		result = append(result, cloneCorrection(c))
	}
	return result, nil
}

// Transition implements correction.CorrectionRepository.
func (r *correctionRepository) Transition(_ context.Context, t correction.Transition) (correction.CorrectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.corrections[t.ID]
	if !ok {
		return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
	}
	if !slices.Contains(t.From, c.Status) {
		return correction.CorrectionRequest{}, correction.ErrInvalidTransition
	}

	c.Status = t.To
	c.UpdatedBy = t.ActorID
	c.UpdatedAt = nowFrom(r.clock)
	if t.Reason != nil {
		c.Reason = *t.Reason
	}

	r.corrections[c.ID] = c
	return cloneCorrection(c), nil
}

package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type exceptionRepository struct {
	mu         sync.RWMutex
	clock      clock.Clock
	exceptions map[string]exception.TimeException
	order      []string
}

func NewExceptionRepository(c clock.Clock) exception.ExceptionRepository {
	return &exceptionRepository{
		clock:      c,
		exceptions: make(map[string]exception.TimeException),
	}
}

func cloneException(ex exception.TimeException) exception.TimeException {
	ex.AssignedTo = copyString(ex.AssignedTo)
	return ex
}

// Create implements exception.ExceptionRepository.
func (e *exceptionRepository) Create(_ context.Context, ex exception.TimeException) (exception.TimeException, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := nowFrom(e.clock)
	ex = cloneException(ex)
	ex.ID = uuid.NewString()
	ex.CreatedAt = now
	ex.UpdatedAt = now

	e.exceptions[ex.ID] = ex
	e.order = append(e.order, ex.ID)
	return cloneException(ex), nil
}

// GetByID implements exception.ExceptionRepository.
func (e *exceptionRepository) GetByID(_ context.Context, id string) (exception.TimeException, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ex, ok := e.exceptions[id]
	if !ok {
		return exception.TimeException{}, exception.ErrExceptionNotFound
	}
	return cloneException(ex), nil
}

func matchException(ex exception.TimeException, f exception.Filter) bool {
	if f.EmployeeID != "" && ex.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Type != nil && ex.Type != *f.Type {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, ex.Status) {
		return false
	}
	return inRange(ex.CreatedAt, f.From, f.To)
}

// List implements exception.ExceptionRepository. Results are oldest-first.
func (e *exceptionRepository) List(_ context.Context, filter exception.Filter) ([]exception.TimeException, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var result []exception.TimeException
	for _, id := range e.order {
		ex := e.exceptions[id]
		if matchException(ex, filter) {
			result = append(result, cloneException(ex))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CountByEmployeeAndType implements exception.ExceptionRepository.
func (e *exceptionRepository) CountByEmployeeAndType(_ context.Context, employeeID string, t exception.Type) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	count := 0
	for _, ex := range e.exceptions {
		if ex.EmployeeID == employeeID && ex.Type == t {
			count++
		}
	}
	return count, nil
}

// Transition implements exception.ExceptionRepository.
func (e *exceptionRepository) Transition(_ context.Context, t exception.Transition) (exception.TimeException, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex, ok := e.exceptions[t.ID]
	if !ok {
		return exception.TimeException{}, exception.ErrExceptionNotFound
	}
	if !slices.Contains(t.From, ex.Status) {
		return exception.TimeException{}, exception.ErrInvalidTransition
	}

	ex.Status = t.To
	ex.UpdatedBy = t.ActorID
	ex.UpdatedAt = nowFrom(e.clock)
	if t.Reason != nil {
		ex.Reason = *t.Reason
	}
	if t.AssignedTo != nil {
		ex.AssignedTo = copyString(t.AssignedTo)
	}

	e.exceptions[ex.ID] = ex
	return cloneException(ex), nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/google/uuid"
)

// ShiftAssignmentRepository is the memory roster. Unlike the postgres
// repository it is writable so tests and the memory driver can seed it.
type ShiftAssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[string]schedule.ShiftAssignment
}

func NewShiftAssignmentRepository() *ShiftAssignmentRepository {
	return &ShiftAssignmentRepository{
		assignments: make(map[string]schedule.ShiftAssignment),
	}
}

// Put stores a, assigning an ID when it has none.
func (s *ShiftAssignmentRepository) Put(a schedule.ShiftAssignment) schedule.ShiftAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Shift.ID == "" {
		a.Shift.ID = uuid.NewString()
	}
	s.assignments[a.ID] = a
	return a
}

// GetByID implements schedule.ShiftAssignmentRepository.
func (s *ShiftAssignmentRepository) GetByID(_ context.Context, id string) (schedule.ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[id]
	if !ok {
		return schedule.ShiftAssignment{}, schedule.ErrShiftAssignmentNotFound
	}
	return a, nil
}

// ListByStatusEndingBetween implements schedule.ShiftAssignmentRepository.
func (s *ShiftAssignmentRepository) ListByStatusEndingBetween(_ context.Context, status schedule.AssignmentStatus, from, to time.Time) ([]schedule.ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []schedule.ShiftAssignment
	for _, a := range s.assignments {
		if a.Status != status || !inRange(a.EndDate, &from, &to) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EndDate.Equal(result[j].EndDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].EndDate.Before(result[j].EndDate)
	})
	return result, nil
}

// GetActiveForEmployee implements schedule.ShiftAssignmentRepository.
func (s *ShiftAssignmentRepository) GetActiveForEmployee(_ context.Context, employeeID string, at time.Time) (schedule.ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found schedule.ShiftAssignment
		ok    bool
	)
	for _, a := range s.assignments {
		if a.EmployeeID != employeeID || a.Status != schedule.AssignmentApproved {
			continue
		}
		if at.Before(a.StartDate) || at.After(a.EndDate) {
			continue
		}
		// latest start wins when assignments overlap
		if !ok || a.StartDate.After(found.StartDate) {
			found, ok = a, true
		}
	}
	if !ok {
		return schedule.ShiftAssignment{}, schedule.ErrShiftAssignmentNotFound
	}
	return found, nil
}

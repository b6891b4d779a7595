package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records map[string]attendance.AttendanceRecord
	order   []string
}

func NewAttendanceRepository(c clock.Clock) attendance.AttendanceRepository {
	return &attendanceRepository{
		clock:   c,
		records: make(map[string]attendance.AttendanceRecord),
	}
}

func cloneRecord(r attendance.AttendanceRecord) attendance.AttendanceRecord {
	r.Punches = copyPunches(r.Punches)
	r.DeviceID = copyString(r.DeviceID)
	r.Location = copyString(r.Location)
	r.Source = copyString(r.Source)
	return r
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(_ context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := nowFrom(a.clock)
	record = cloneRecord(record)
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Version = 1

	a.records[record.ID] = record
	a.order = append(a.order, record.ID)
	return cloneRecord(record), nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(_ context.Context, id string) (attendance.AttendanceRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.records[id]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return cloneRecord(rec), nil
}

// GetByIDs implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDs(_ context.Context, ids []string) (map[string]attendance.AttendanceRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make(map[string]attendance.AttendanceRecord, len(ids))
	for _, id := range ids {
		if rec, ok := a.records[id]; ok {
			result[id] = cloneRecord(rec)
		}
	}
	return result, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(_ context.Context, employeeID string, limit int) ([]attendance.AttendanceRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []attendance.AttendanceRecord
	// insertion order breaks CreatedAt ties, newest last
	for i := len(a.order) - 1; i >= 0; i-- {
		rec := a.records[a.order[i]]
		if rec.EmployeeID != employeeID {
			continue
		}
		result = append(result, cloneRecord(rec))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListByEmployeeAndPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndPeriod(_ context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []attendance.AttendanceRecord
	for _, id := range a.order {
		rec := a.records[id]
		if rec.EmployeeID != employeeID || !inRange(rec.CreatedAt, &from, &to) {
			continue
		}
		result = append(result, cloneRecord(rec))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListOpenCreatedBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenCreatedBefore(_ context.Context, cutoff time.Time) ([]attendance.AttendanceRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []attendance.AttendanceRecord
	for _, id := range a.order {
		rec := a.records[id]
		if rec.FinalisedForPayroll || !rec.IsOpen() || !rec.CreatedAt.Before(cutoff) {
			continue
		}
		result = append(result, cloneRecord(rec))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(_ context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored, ok := a.records[record.ID]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	if stored.Version != record.Version {
		return attendance.AttendanceRecord{}, attendance.ErrConcurrentModification
	}

	record = cloneRecord(record)
	record.EmployeeID = stored.EmployeeID
	record.CreatedBy = stored.CreatedBy
	record.CreatedAt = stored.CreatedAt
	record.UpdatedAt = nowFrom(a.clock)
	record.Version = stored.Version + 1

	a.records[record.ID] = record
	return cloneRecord(record), nil
}

package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftAssignmentRepository struct {
	db *database.DB
}

const shiftAssignmentSelect = `
	SELECT
		sa.id, sa.employee_id, sa.start_date, sa.end_date, sa.status,
		s.id, s.name, s.start_time, s.end_time, s.allow_early_minutes, s.allow_late_minutes, s.punch_policy
	FROM shift_assignments sa
	JOIN shifts s ON s.id = sa.shift_id
`

func scanShiftAssignment(row pgx.Row) (schedule.ShiftAssignment, error) {
	var a schedule.ShiftAssignment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.StartDate, &a.EndDate, &a.Status,
		&a.Shift.ID, &a.Shift.Name, &a.Shift.StartTime, &a.Shift.EndTime,
		&a.Shift.AllowEarlyMinutes, &a.Shift.AllowLateMinutes, &a.Shift.PunchPolicy,
	)
	return a, err
}

// GetByID implements schedule.ShiftAssignmentRepository.
func (s *shiftAssignmentRepository) GetByID(ctx context.Context, id string) (schedule.ShiftAssignment, error) {
	if !isUUID(id) {
		return schedule.ShiftAssignment{}, schedule.ErrShiftAssignmentNotFound
	}
	q := GetQuerier(ctx, s.db)

	a, err := scanShiftAssignment(q.QueryRow(ctx, shiftAssignmentSelect+` WHERE sa.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftAssignment{}, schedule.ErrShiftAssignmentNotFound
		}
		return schedule.ShiftAssignment{}, fmt.Errorf("failed to get shift assignment by ID: %w", err)
	}

	return a, nil
}

// ListByStatusEndingBetween implements schedule.ShiftAssignmentRepository.
func (s *shiftAssignmentRepository) ListByStatusEndingBetween(ctx context.Context, status schedule.AssignmentStatus, from, to time.Time) ([]schedule.ShiftAssignment, error) {
	q := GetQuerier(ctx, s.db)

	query := shiftAssignmentSelect + `
		WHERE sa.status = $1
		  AND sa.end_date BETWEEN $2 AND $3
		ORDER BY sa.end_date, sa.id
	`

	rows, err := q.Query(ctx, query, string(status), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	defer rows.Close()

	var assignments []schedule.ShiftAssignment
	for rows.Next() {
		a, err := scanShiftAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// GetActiveForEmployee implements schedule.ShiftAssignmentRepository.
func (s *shiftAssignmentRepository) GetActiveForEmployee(ctx context.Context, employeeID string, at time.Time) (schedule.ShiftAssignment, error) {
	q := GetQuerier(ctx, s.db)

	query := shiftAssignmentSelect + `
		WHERE sa.employee_id = $1
		  AND sa.status = $2
		  AND $3 BETWEEN sa.start_date AND sa.end_date
		ORDER BY sa.start_date DESC
		LIMIT 1
	`

	a, err := scanShiftAssignment(q.QueryRow(ctx, query, employeeID, string(schedule.AssignmentApproved), at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftAssignment{}, schedule.ErrShiftAssignmentNotFound
		}
		return schedule.ShiftAssignment{}, fmt.Errorf("failed to get active shift assignment: %w", err)
	}

	return a, nil
}

func NewShiftAssignmentRepository(db *database.DB) schedule.ShiftAssignmentRepository {
	return &shiftAssignmentRepository{db: db}
}

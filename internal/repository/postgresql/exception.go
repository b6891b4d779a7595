package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type exceptionRepository struct {
	db *database.DB
}

const exceptionColumns = `
	id, employee_id, attendance_record_id, type, status, reason, assigned_to,
	created_by, updated_by, created_at, updated_at
`

func scanException(row pgx.Row) (exception.TimeException, error) {
	var ex exception.TimeException
	err := row.Scan(
		&ex.ID, &ex.EmployeeID, &ex.AttendanceRecordID, &ex.Type, &ex.Status, &ex.Reason, &ex.AssignedTo,
		&ex.CreatedBy, &ex.UpdatedBy, &ex.CreatedAt, &ex.UpdatedAt,
	)
	return ex, err
}

func statusStrings[S ~string](statuses []S) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create implements exception.ExceptionRepository.
func (e *exceptionRepository) Create(ctx context.Context, ex exception.TimeException) (exception.TimeException, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO time_exceptions (
			employee_id, attendance_record_id, type, status, reason, assigned_to, created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		ex.EmployeeID, ex.AttendanceRecordID, string(ex.Type), string(ex.Status),
		ex.Reason, ex.AssignedTo, ex.CreatedBy, ex.UpdatedBy,
	).Scan(&ex.ID, &ex.CreatedAt, &ex.UpdatedAt)

	if err != nil {
		return exception.TimeException{}, fmt.Errorf("failed to create time exception: %w", err)
	}

	return ex, nil
}

// GetByID implements exception.ExceptionRepository.
func (e *exceptionRepository) GetByID(ctx context.Context, id string) (exception.TimeException, error) {
	if !isUUID(id) {
		return exception.TimeException{}, exception.ErrExceptionNotFound
	}
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + exceptionColumns + ` FROM time_exceptions WHERE id = $1`

	ex, err := scanException(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exception.TimeException{}, exception.ErrExceptionNotFound
		}
		return exception.TimeException{}, fmt.Errorf("failed to get time exception by ID: %w", err)
	}

	return ex, nil
}

// List implements exception.ExceptionRepository.
func (e *exceptionRepository) List(ctx context.Context, filter exception.Filter) ([]exception.TimeException, error) {
	q := GetQuerier(ctx, e.db)

	// Build WHERE clause
	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, string(*filter.Type))
		argIdx++
	}
	if len(filter.Statuses) > 0 {
		where += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, statusStrings(filter.Statuses))
		argIdx++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filter.To)
	}

	query := `SELECT ` + exceptionColumns + ` FROM time_exceptions WHERE ` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time exceptions: %w", err)
	}
	defer rows.Close()

	var items []exception.TimeException
	for rows.Next() {
		ex, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time exception: %w", err)
		}
		items = append(items, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// CountByEmployeeAndType implements exception.ExceptionRepository.
func (e *exceptionRepository) CountByEmployeeAndType(ctx context.Context, employeeID string, t exception.Type) (int, error) {
	q := GetQuerier(ctx, e.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM time_exceptions WHERE employee_id = $1 AND type = $2`,
		employeeID, string(t),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count time exceptions: %w", err)
	}

	return count, nil
}

// Transition implements exception.ExceptionRepository. The status guard is
// part of the UPDATE, so two racing transitions cannot both apply.
func (e *exceptionRepository) Transition(ctx context.Context, t exception.Transition) (exception.TimeException, error) {
	if !isUUID(t.ID) {
		return exception.TimeException{}, exception.ErrExceptionNotFound
	}
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE time_exceptions SET
			status = $1,
			updated_by = $2,
			reason = COALESCE($3, reason),
			assigned_to = COALESCE($4, assigned_to),
			updated_at = NOW()
		WHERE id = $5 AND status = ANY($6)
		RETURNING ` + exceptionColumns

	ex, err := scanException(q.QueryRow(ctx, query,
		string(t.To), t.ActorID, t.Reason, t.AssignedTo, t.ID, statusStrings(t.From),
	))
	if err == nil {
		return ex, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return exception.TimeException{}, fmt.Errorf("failed to transition time exception: %w", err)
	}

	if _, getErr := e.GetByID(ctx, t.ID); getErr != nil {
		return exception.TimeException{}, getErr
	}
	return exception.TimeException{}, exception.ErrInvalidTransition
}

func NewExceptionRepository(db *database.DB) exception.ExceptionRepository {
	return &exceptionRepository{db: db}
}

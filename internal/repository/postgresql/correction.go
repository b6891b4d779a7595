package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

const correctionColumns = `
	id, employee_id, attendance_record_id, reason, proposed_punches, status,
	created_by, updated_by, created_at, updated_at
`

func scanCorrection(row pgx.Row) (correction.CorrectionRequest, error) {
	var c correction.CorrectionRequest
	var punches []attendance.Punch
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.AttendanceRecordID, &c.Reason, &punches, &c.Status,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if len(punches) > 0 {
		c.ProposedPunches = punches
	}
	return c, err
}

// Create implements correction.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, req correction.CorrectionRequest) (correction.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO correction_requests (
			employee_id, attendance_record_id, reason, proposed_punches, status, created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.EmployeeID, req.AttendanceRecordID, req.Reason, punchesParam(req.ProposedPunches),
		string(req.Status), req.CreatedBy, req.UpdatedBy,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	return req, nil
}

// GetByID implements correction.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.CorrectionRequest, error) {
	if !isUUID(id) {
		return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + ` FROM correction_requests WHERE id = $1`

	c, err := scanCorrection(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to get correction request by ID: %w", err)
	}

	return c, nil
}

// List implements correction.CorrectionRepository.
func (r *correctionRepository) List(ctx context.Context, filter correction.Filter) ([]correction.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if len(filter.Statuses) > 0 {
		where += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, statusStrings(filter.Statuses))
	}

	query := `SELECT ` + correctionColumns + ` FROM correction_requests WHERE ` + where + ` ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	defer rows.Close()

	var items []correction.CorrectionRequest
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction request: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Transition implements correction.CorrectionRepository.
func (r *correctionRepository) Transition(ctx context.Context, t correction.Transition) (correction.CorrectionRequest, error) {
	if !isUUID(t.ID) {
		return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE correction_requests SET
			status = $1,
			updated_by = $2,
			reason = COALESCE($3, reason),
			updated_at = NOW()
		WHERE id = $4 AND status = ANY($5)
		RETURNING ` + correctionColumns

	c, err := scanCorrection(q.QueryRow(ctx, query,
		string(t.To), t.ActorID, t.Reason, t.ID, statusStrings(t.From),
	))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to transition correction request: %w", err)
	}

	if _, getErr := r.GetByID(ctx, t.ID); getErr != nil {
		return correction.CorrectionRequest{}, getErr
	}
	return correction.CorrectionRequest{}, correction.ErrInvalidTransition
}

func NewCorrectionRepository(db *database.DB) correction.CorrectionRepository {
	return &correctionRepository{db: db}
}

package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	id, employee_id, punches, total_work_minutes, has_missed_punch, finalised_for_payroll,
	device_id, location, source, created_by, updated_by, created_at, updated_at, version
`

func scanAttendance(row pgx.Row) (attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Punches, &rec.TotalWorkMinutes, &rec.HasMissedPunch, &rec.FinalisedForPayroll,
		&rec.DeviceID, &rec.Location, &rec.Source, &rec.CreatedBy, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.Version,
	)
	return rec, err
}

func collectAttendance(rows pgx.Rows) ([]attendance.AttendanceRecord, error) {
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func punchesParam(punches []attendance.Punch) []attendance.Punch {
	if punches == nil {
		return []attendance.Punch{}
	}
	return punches
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, punches, total_work_minutes, has_missed_punch, finalised_for_payroll,
			device_id, location, source, created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at, version
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID,
		punchesParam(record.Punches),
		record.TotalWorkMinutes,
		record.HasMissedPunch,
		record.FinalisedForPayroll,
		record.DeviceID,
		record.Location,
		record.Source,
		record.CreatedBy,
		record.UpdatedBy,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt, &record.Version)

	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	if !isUUID(id) {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return rec, nil
}

// GetByIDs implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDs(ctx context.Context, ids []string) (map[string]attendance.AttendanceRecord, error) {
	result := make(map[string]attendance.AttendanceRecord, len(ids))
	ids = filterUUIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = ANY($1)`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance records: %w", err)
	}
	records, err := collectAttendance(rows)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		result[rec.ID] = rec
	}
	return result, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{employeeID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return collectAttendance(rows)
}

// ListByEmployeeAndPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND created_at BETWEEN $2 AND $3
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by period: %w", err)
	}
	return collectAttendance(rows)
}

// ListOpenCreatedBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE finalised_for_payroll = FALSE
		  AND punches -> -1 ->> 'type' = 'IN'
		  AND created_at < $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}
	return collectAttendance(rows)
}

// Update implements attendance.AttendanceRepository. The write only lands
// when the stored version still equals record.Version.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if !isUUID(record.ID) {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			punches = $1,
			total_work_minutes = $2,
			has_missed_punch = $3,
			finalised_for_payroll = $4,
			device_id = $5,
			location = $6,
			source = $7,
			updated_by = $8,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query,
		punchesParam(record.Punches),
		record.TotalWorkMinutes,
		record.HasMissedPunch,
		record.FinalisedForPayroll,
		record.DeviceID,
		record.Location,
		record.Source,
		record.UpdatedBy,
		record.ID,
		record.Version,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	// No row matched: tell a missing record apart from a stale version.
	if _, getErr := a.GetByID(ctx, record.ID); getErr != nil {
		return attendance.AttendanceRecord{}, getErr
	}
	return attendance.AttendanceRecord{}, attendance.ErrConcurrentModification
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

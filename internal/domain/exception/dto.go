package exception

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type CreateRequest struct {
	Type               string `json:"type"`
	EmployeeID         string `json:"employee_id"`
	AttendanceRecordID string `json:"attendance_record_id"`
	Reason             string `json:"reason"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of MISSED_PUNCH, LATE, EARLY_LEAVE, SHORT_TIME, OVERTIME_REQUEST, MANUAL_ADJUSTMENT",
		})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.AttendanceRecordID) {
		errs = append(errs, validator.ValidationError{Field: "attendance_record_id", Message: "attendance_record_id is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListRequest struct {
	EmployeeID string
	Status     string
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Status != "" && !validator.IsInSlice(r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown status"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Response struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	AttendanceRecordID string  `json:"attendance_record_id"`
	Type               string  `json:"type"`
	Status             string  `json:"status"`
	Reason             string  `json:"reason"`
	AssignedTo         *string `json:"assigned_to,omitempty"`
	CreatedBy          string  `json:"created_by"`
	UpdatedBy          string  `json:"updated_by"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func ToResponse(ex TimeException) Response {
	return Response{
		ID:                 ex.ID,
		EmployeeID:         ex.EmployeeID,
		AttendanceRecordID: ex.AttendanceRecordID,
		Type:               string(ex.Type),
		Status:             string(ex.Status),
		Reason:             ex.Reason,
		AssignedTo:         ex.AssignedTo,
		CreatedBy:          ex.CreatedBy,
		UpdatedBy:          ex.UpdatedBy,
		CreatedAt:          ex.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          ex.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

package correction

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type SubmitRequest struct {
	EmployeeID         string                  `json:"employee_id"`
	AttendanceRecordID string                  `json:"attendance_record_id"`
	Reason             string                  `json:"reason"`
	ProposedPunches    []attendance.PunchInput `json:"proposed_punches,omitempty"`

	parsed []attendance.Punch
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.AttendanceRecordID) {
		errs = append(errs, validator.ValidationError{Field: "attendance_record_id", Message: "attendance_record_id is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	parsed := make([]attendance.Punch, 0, len(r.ProposedPunches))
	for i, p := range r.ProposedPunches {
		field := "proposed_punches[" + validator.Itoa(i) + "]"
		pt := attendance.PunchType(p.Type)
		t, ok := validator.IsValidDateTime(p.Time)
		if !pt.Valid() || !ok {
			errs = append(errs, validator.ValidationError{Field: field, Message: "punch needs type IN/OUT and an RFC3339 time"})
			continue
		}
		parsed = append(parsed, attendance.Punch{Type: pt, Time: t.UTC()})
	}

	if len(errs) > 0 {
		return errs
	}
	r.parsed = parsed
	return nil
}

func (r *SubmitRequest) ParsedPunches() []attendance.Punch {
	return r.parsed
}

// DecisionRequest carries an optional replacement reason for approve/reject.
type DecisionRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type ListRequest struct {
	EmployeeID string
	Status     string
}

func (r *ListRequest) Validate() error {
	if r.Status != "" && !validator.IsInSlice(r.Status, StatusValues) {
		return validator.ValidationErrors{{Field: "status", Message: "unknown status"}}
	}
	return nil
}

type Response struct {
	ID                 string                     `json:"id"`
	EmployeeID         string                     `json:"employee_id"`
	AttendanceRecordID string                     `json:"attendance_record_id"`
	Reason             string                     `json:"reason"`
	ProposedPunches    []attendance.PunchResponse `json:"proposed_punches,omitempty"`
	Status             string                     `json:"status"`
	CreatedBy          string                     `json:"created_by"`
	UpdatedBy          string                     `json:"updated_by"`
	CreatedAt          string                     `json:"created_at"`
	UpdatedAt          string                     `json:"updated_at"`
}

func ToResponse(c CorrectionRequest) Response {
	var punches []attendance.PunchResponse
	for _, p := range c.ProposedPunches {
		punches = append(punches, attendance.PunchResponse{Type: string(p.Type), Time: p.Time.UTC().Format(time.RFC3339)})
	}
	return Response{
		ID:                 c.ID,
		EmployeeID:         c.EmployeeID,
		AttendanceRecordID: c.AttendanceRecordID,
		Reason:             c.Reason,
		ProposedPunches:    punches,
		Status:             string(c.Status),
		CreatedBy:          c.CreatedBy,
		UpdatedBy:          c.UpdatedBy,
		CreatedAt:          c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

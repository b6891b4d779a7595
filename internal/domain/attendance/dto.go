package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchInput struct {
	Type string `json:"type"`
	Time string `json:"time"` // RFC3339
}

// RecordPunchRequest imports a full punch list, typically from a device.
type RecordPunchRequest struct {
	EmployeeID         string       `json:"employee_id"`
	Punches            []PunchInput `json:"punches"`
	DeviceID           *string      `json:"device_id,omitempty"`
	Location           *string      `json:"location,omitempty"`
	Source             *string      `json:"source,omitempty"`
	Policy             *string      `json:"policy,omitempty"`
	EnforceShiftWindow bool         `json:"enforce_shift_window"`

	parsed []Punch
}

func (r *RecordPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(r.Punches) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "punches",
			Message: "at least one punch is required",
		})
	}

	if r.Policy != nil && !validator.IsInSlice(*r.Policy, PunchPolicyValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "policy",
			Message: "policy must be one of FIRST_LAST, MULTIPLE, ANY",
		})
	}

	parsed := make([]Punch, 0, len(r.Punches))
	for i, p := range r.Punches {
		field := "punches[" + validator.Itoa(i) + "]"
		pt := PunchType(p.Type)
		if !pt.Valid() {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".type",
				Message: "type must be IN or OUT",
			})
			continue
		}
		t, ok := validator.IsValidDateTime(p.Time)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".time",
				Message: "time must be an RFC3339 timestamp",
			})
			continue
		}
		parsed = append(parsed, Punch{Type: pt, Time: t.UTC()})
	}

	if len(errs) > 0 {
		return errs
	}
	r.parsed = parsed
	return nil
}

// ParsedPunches returns the punches converted by Validate.
func (r *RecordPunchRequest) ParsedPunches() []Punch {
	return r.parsed
}

// WithPunches sets already-typed punches, bypassing string parsing.
func (r *RecordPunchRequest) WithPunches(punches []Punch) *RecordPunchRequest {
	r.Punches = make([]PunchInput, 0, len(punches))
	for _, p := range punches {
		r.Punches = append(r.Punches, PunchInput{Type: string(p.Type), Time: p.Time.UTC().Format(time.RFC3339Nano)})
	}
	return r
}

// ReplacePunchesRequest rewrites the punches of an existing record.
type ReplacePunchesRequest struct {
	Punches []PunchInput `json:"punches"`

	parsed []Punch
}

func (r *ReplacePunchesRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Punches) == 0 {
		errs = append(errs, validator.ValidationError{Field: "punches", Message: "at least one punch is required"})
	}

	parsed := make([]Punch, 0, len(r.Punches))
	for i, p := range r.Punches {
		pt := PunchType(p.Type)
		t, ok := validator.IsValidDateTime(p.Time)
		if !pt.Valid() || !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "punches[" + validator.Itoa(i) + "]",
				Message: "punch needs type IN/OUT and an RFC3339 time",
			})
			continue
		}
		parsed = append(parsed, Punch{Type: pt, Time: t.UTC()})
	}

	if len(errs) > 0 {
		return errs
	}
	r.parsed = parsed
	return nil
}

func (r *ReplacePunchesRequest) ParsedPunches() []Punch {
	return r.parsed
}

type RoundRecordRequest struct {
	ID              string `json:"-"`
	IntervalMinutes int    `json:"interval_minutes"`
	Strategy        string `json:"strategy"`
}

type FinaliseRequest struct {
	IDs []string `json:"ids"`
}

func (r *FinaliseRequest) Validate() error {
	if len(r.IDs) == 0 {
		return validator.ValidationErrors{{Field: "ids", Message: "at least one id is required"}}
	}
	return nil
}

type PeriodFilter struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

// Bounds returns the UTC day-bounded period, defaulting to the last 31 days
// ending at now.
func (f PeriodFilter) Bounds(now time.Time) (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	end := now
	if f.EndDate != "" {
		d, ok := validator.IsValidDate(f.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		}
		end = d
	}
	start := end.AddDate(0, 0, -31)
	if f.StartDate != "" {
		d, ok := validator.IsValidDate(f.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
		}
		start = d
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}

	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if end.Before(start) {
		return time.Time{}, time.Time{}, validator.ValidationErrors{{Field: "end_date", Message: "end_date must not be before start_date"}}
	}
	return start, end, nil
}

type PunchResponse struct {
	Type string `json:"type"`
	Time string `json:"time"`
}

type AttendanceResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	Punches             []PunchResponse `json:"punches"`
	TotalWorkMinutes    float64         `json:"total_work_minutes"`
	HasMissedPunch      bool            `json:"has_missed_punch"`
	FinalisedForPayroll bool            `json:"finalised_for_payroll"`
	DeviceID            *string         `json:"device_id,omitempty"`
	Location            *string         `json:"location,omitempty"`
	Source              *string         `json:"source,omitempty"`
	CreatedBy           string          `json:"created_by"`
	UpdatedBy           string          `json:"updated_by"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

// ToResponse converts a record for transport.
func ToResponse(r AttendanceRecord) AttendanceResponse {
	punches := make([]PunchResponse, 0, len(r.Punches))
	for _, p := range r.Punches {
		punches = append(punches, PunchResponse{Type: string(p.Type), Time: p.Time.UTC().Format(time.RFC3339)})
	}
	return AttendanceResponse{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		Punches:             punches,
		TotalWorkMinutes:    r.TotalWorkMinutes,
		HasMissedPunch:      r.HasMissedPunch,
		FinalisedForPayroll: r.FinalisedForPayroll,
		DeviceID:            r.DeviceID,
		Location:            r.Location,
		Source:              r.Source,
		CreatedBy:           r.CreatedBy,
		UpdatedBy:           r.UpdatedBy,
		CreatedAt:           r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

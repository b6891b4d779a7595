package attendance

import (
	"time"
)

type PunchType string

const (
	PunchIn  PunchType = "IN"
	PunchOut PunchType = "OUT"
)

func (p PunchType) Valid() bool {
	return p == PunchIn || p == PunchOut
}

type Punch struct {
	Type PunchType `json:"type"`
	Time time.Time `json:"time"`
}

// AttendanceRecord holds one work session's punches in insertion order.
// Version is bumped on every update and checked by the repository.
type AttendanceRecord struct {
	ID                  string
	EmployeeID          string
	Punches             []Punch
	TotalWorkMinutes    float64
	HasMissedPunch      bool
	FinalisedForPayroll bool
	DeviceID            *string
	Location            *string
	Source              *string
	CreatedBy           string
	UpdatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int
}

// LastPunch returns the most recent punch, or false for an empty record.
func (r AttendanceRecord) LastPunch() (Punch, bool) {
	if len(r.Punches) == 0 {
		return Punch{}, false
	}
	return r.Punches[len(r.Punches)-1], true
}

// IsOpen reports whether the record ends in an unmatched IN.
func (r AttendanceRecord) IsOpen() bool {
	last, ok := r.LastPunch()
	return ok && last.Type == PunchIn
}

type PunchPolicy string

const (
	PunchPolicyFirstLast PunchPolicy = "FIRST_LAST"
	PunchPolicyMultiple  PunchPolicy = "MULTIPLE"
	PunchPolicyAny       PunchPolicy = "ANY"
)

var PunchPolicyValues = []string{
	string(PunchPolicyFirstLast),
	string(PunchPolicyMultiple),
	string(PunchPolicyAny),
}

type RoundingStrategy string

const (
	RoundNearest RoundingStrategy = "NEAREST"
	RoundCeiling RoundingStrategy = "CEILING"
	RoundFloor   RoundingStrategy = "FLOOR"
)

// ShiftWindow bounds the wall-clock times a punch may carry.
type ShiftWindow struct {
	ShiftStart        string // "HH:MM"
	ShiftEnd          string // "HH:MM"
	AllowEarlyMinutes int
	AllowLateMinutes  int
}

// PeriodSummary is the per-employee view consumed by payroll.
type PeriodSummary struct {
	EmployeeID       string    `json:"employee_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	RecordCount      int       `json:"record_count"`
	TotalWorkMinutes float64   `json:"total_work_minutes"`
	MissedPunchCount int       `json:"missed_punch_count"`
	FinalisedCount   int       `json:"finalised_count"`
	OpenRecordCount  int       `json:"open_record_count"`
}

package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type Type string

const (
	TypeOvertime  Type = "overtime"
	TypeLateness  Type = "lateness"
	TypeException Type = "exception"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// StandardWorkdayMinutes is the threshold above which worked time counts
// as overtime.
const StandardWorkdayMinutes = 480

// Request filters the exceptions a report is built from. Dates are
// day-bounded in UTC by the generator.
type Request struct {
	EmployeeID *string
	StartDate  *time.Time
	EndDate    *time.Time
}

type Report struct {
	ReportType  Type      `json:"report_type"`
	EmployeeID  *string   `json:"employee_id"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	GeneratedAt time.Time `json:"generated_at"`
	Records     []Record  `json:"records"`
	Summary     Summary   `json:"summary"`
}

type Record struct {
	ExceptionID      string              `json:"exception_id"`
	EmployeeID       string              `json:"employee_id"`
	Type             string              `json:"type"`
	Status           string              `json:"status"`
	Reason           string              `json:"reason"`
	CreatedAt        time.Time           `json:"created_at"`
	AttendanceRecord *AttendanceSnapshot `json:"attendance_record"`
	OvertimeMinutes  *float64            `json:"overtime_minutes,omitempty"`
}

// AttendanceSnapshot is the joined attendance data carried on a record.
type AttendanceSnapshot struct {
	ID               string                     `json:"id"`
	TotalWorkMinutes float64                    `json:"total_work_minutes"`
	HasMissedPunch   bool                       `json:"has_missed_punch"`
	Punches          []attendance.PunchResponse `json:"punches"`
}

type Summary struct {
	TotalRecords         int            `json:"total_records"`
	TotalOvertimeMinutes *float64       `json:"total_overtime_minutes,omitempty"`
	TotalOvertimeHours   *string        `json:"total_overtime_hours,omitempty"`
	DistinctEmployees    *int           `json:"distinct_employees,omitempty"`
	CountsByType         map[string]int `json:"counts_by_type,omitempty"`
}

type ExportResult struct {
	ContentType string
	FileName    string
	Body        []byte
}

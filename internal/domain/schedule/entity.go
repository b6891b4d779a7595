package schedule

import "time"

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentApproved  AssignmentStatus = "APPROVED"
	AssignmentRejected  AssignmentStatus = "REJECTED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

// Shift is the roster definition an assignment points at.
type Shift struct {
	ID                string
	Name              string
	StartTime         string // "HH:MM"
	EndTime           string // "HH:MM"
	AllowEarlyMinutes int
	AllowLateMinutes  int
	PunchPolicy       string
}

// ShiftAssignment is owned by the roster collaborator; the engine only reads it.
type ShiftAssignment struct {
	ID         string
	EmployeeID string
	Shift      Shift
	StartDate  time.Time
	EndDate    time.Time
	Status     AssignmentStatus
}

type ExpiringAssignment struct {
	AssignmentID string    `json:"assignment_id"`
	EmployeeID   string    `json:"employee_id"`
	ShiftID      string    `json:"shift_id"`
	ShiftName    string    `json:"shift_name,omitempty"`
	EndDate      time.Time `json:"end_date"`
}

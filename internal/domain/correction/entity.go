package correction

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusInReview  Status = "IN_REVIEW"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusEscalated Status = "ESCALATED"
)

var StatusValues = []string{
	string(StatusSubmitted),
	string(StatusInReview),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusEscalated),
}

var (
	FromForReview   = []Status{StatusSubmitted}
	FromForDecision = []Status{StatusSubmitted, StatusInReview, StatusEscalated}
	FromForEscalate = []Status{StatusSubmitted, StatusInReview, StatusEscalated}

	// Unresolved is what the payroll-cutoff sweep escalates.
	Unresolved = []Status{StatusSubmitted, StatusInReview}
)

type CorrectionRequest struct {
	ID                 string
	EmployeeID         string
	AttendanceRecordID string
	Reason             string
	ProposedPunches    []attendance.Punch
	Status             Status
	CreatedBy          string
	UpdatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Filter struct {
	EmployeeID string
	Statuses   []Status
}

type Transition struct {
	ID      string
	From    []Status
	To      Status
	ActorID string
	Reason  *string
}

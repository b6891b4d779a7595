package exception

import "time"

type Type string

const (
	TypeMissedPunch      Type = "MISSED_PUNCH"
	TypeLate             Type = "LATE"
	TypeEarlyLeave       Type = "EARLY_LEAVE"
	TypeShortTime        Type = "SHORT_TIME"
	TypeOvertimeRequest  Type = "OVERTIME_REQUEST"
	TypeManualAdjustment Type = "MANUAL_ADJUSTMENT"
)

var TypeValues = []string{
	string(TypeMissedPunch),
	string(TypeLate),
	string(TypeEarlyLeave),
	string(TypeShortTime),
	string(TypeOvertimeRequest),
	string(TypeManualAdjustment),
}

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusEscalated Status = "ESCALATED"
	StatusResolved  Status = "RESOLVED"
)

var StatusValues = []string{
	string(StatusOpen),
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusEscalated),
	string(StatusResolved),
}

// Legal source states per transition. Only RESOLVED is terminal, so
// escalation is open to every other state.
var (
	FromForPending  = []Status{StatusOpen}
	FromForDecision = []Status{StatusOpen, StatusPending, StatusEscalated}
	FromForEscalate = []Status{StatusOpen, StatusPending, StatusApproved, StatusRejected, StatusEscalated}
	FromForResolve  = []Status{StatusApproved, StatusRejected, StatusEscalated}

	// Unresolved is what the payroll-cutoff sweep escalates.
	Unresolved = []Status{StatusPending, StatusOpen}
)

type TimeException struct {
	ID                 string
	EmployeeID         string
	AttendanceRecordID string
	Type               Type
	Status             Status
	Reason             string
	AssignedTo         *string
	CreatedBy          string
	UpdatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Filter struct {
	EmployeeID string
	Type       *Type
	Statuses   []Status
	From       *time.Time
	To         *time.Time
}

// Transition describes a conditional status change. The store applies it
// only while the current status is one of From.
type Transition struct {
	ID         string
	From       []Status
	To         Status
	ActorID    string
	Reason     *string
	AssignedTo *string
}

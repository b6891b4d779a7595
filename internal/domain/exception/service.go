package exception

import "context"

// ExceptionService drives the time exception state machine:
// OPEN -> PENDING -> {APPROVED, REJECTED, ESCALATED} -> RESOLVED, with
// ESCALATED reachable from any state but RESOLVED and still approvable.
type ExceptionService interface {
	Create(ctx context.Context, req CreateRequest, actorID string) (TimeException, error)
	Get(ctx context.Context, id string) (TimeException, error)
	List(ctx context.Context, req ListRequest) ([]TimeException, error)

	MarkPending(ctx context.Context, id string, assignedTo *string, actorID string) (TimeException, error)
	Approve(ctx context.Context, id, actorID string) (TimeException, error)
	Reject(ctx context.Context, id, actorID string) (TimeException, error)
	Escalate(ctx context.Context, id, actorID string) (TimeException, error)
	Resolve(ctx context.Context, id, actorID string) (TimeException, error)

	// DetectMissedPunch raises a MISSED_PUNCH exception for a record flagged
	// with a missed punch.
	DetectMissedPunch(ctx context.Context, recordID, actorID string) (TimeException, error)
}

type LatenessResult struct {
	EmployeeID string `json:"employee_id"`
	Count      int    `json:"count"`
	Threshold  int    `json:"threshold"`
	Exceeded   bool   `json:"exceeded"`
}

// LatenessMonitor counts LATE exceptions and triggers disciplinary escalation.
type LatenessMonitor interface {
	MonitorRepeatedLateness(ctx context.Context, employeeID string, threshold int, actorID string) (LatenessResult, error)
	TriggerLatenessDisciplinary(ctx context.Context, employeeID, action, actorID string) error
}

package audit

import "time"

// Entity names written to the audit log.
const (
	EntityAttendanceRecord      = "AttendanceRecord"
	EntityCorrectionRequest     = "CorrectionRequest"
	EntityTimeException         = "TimeException"
	EntityShiftAssignmentScan   = "SHIFT_EXPIRY_SCAN"
	EntityLatenessDisciplinary  = "LATENESS_DISCIPLINARY"
	EntityPayrollCutoffEscalate = "PAYROLL_CUTOFF_ESCALATION"
)

// Entry is one append-only audit record. It has no identity beyond its
// insertion order; Seq is assigned by the store.
type Entry struct {
	Seq       int64          `json:"seq"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id,omitempty"`
	Action    string         `json:"action"`
	ChangeSet map[string]any `json:"change_set"`
	ActorID   string         `json:"actor_id"`
	Timestamp time.Time      `json:"timestamp"`
}

type Filter struct {
	Entity   string
	EntityID string
	ActorID  string
	Limit    int
}

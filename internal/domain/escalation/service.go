package escalation

import (
	"context"
	"time"
)

// EscalationService forces unresolved corrections and exceptions to
// ESCALATED once the payroll cutoff has passed. Before the cutoff it is a
// no-op returning a zero count.
type EscalationService interface {
	EscalateUnresolvedRequestsBeforePayrollCutoff(ctx context.Context, cutoff time.Time, actorID string) (Result, error)
}

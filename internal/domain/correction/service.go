package correction

import "context"

// CorrectionService drives SUBMITTED -> IN_REVIEW -> {APPROVED, REJECTED,
// ESCALATED}. Approval applies any proposed punches to the attendance record.
type CorrectionService interface {
	Submit(ctx context.Context, req SubmitRequest, actorID string) (CorrectionRequest, error)
	Get(ctx context.Context, id string) (CorrectionRequest, error)
	List(ctx context.Context, req ListRequest) ([]CorrectionRequest, error)

	StartReview(ctx context.Context, id, actorID string) (CorrectionRequest, error)
	Approve(ctx context.Context, id string, req DecisionRequest, actorID string) (CorrectionRequest, error)
	Reject(ctx context.Context, id string, req DecisionRequest, actorID string) (CorrectionRequest, error)
	Escalate(ctx context.Context, id, actorID string) (CorrectionRequest, error)
}

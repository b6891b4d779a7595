package correction

import "context"

type CorrectionRepository interface {
	Create(ctx context.Context, req CorrectionRequest) (CorrectionRequest, error)
	GetByID(ctx context.Context, id string) (CorrectionRequest, error)
	List(ctx context.Context, filter Filter) ([]CorrectionRequest, error)

	// Transition applies t atomically; see exception.ExceptionRepository.
	Transition(ctx context.Context, t Transition) (CorrectionRequest, error)
}

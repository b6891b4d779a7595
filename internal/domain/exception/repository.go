package exception

import "context"

type ExceptionRepository interface {
	Create(ctx context.Context, ex TimeException) (TimeException, error)
	GetByID(ctx context.Context, id string) (TimeException, error)
	List(ctx context.Context, filter Filter) ([]TimeException, error)
	CountByEmployeeAndType(ctx context.Context, employeeID string, t Type) (int, error)

	// Transition applies t atomically. It returns ErrExceptionNotFound when
	// the id does not resolve and ErrInvalidTransition when the current status
	// is not in t.From.
	Transition(ctx context.Context, t Transition) (TimeException, error)
}

// Package lock serializes read-modify-write sequences per key (usually an
// employee). Clock-out, punch replacement and the lateness count-then-trigger
// path all run under a lock obtained here.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNotObtained = errors.New("could not obtain lock")

// Locker hands out exclusive leases on string keys.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

// Key builds the lock key for an operation scoped to one entity.
func Key(scope, id string) string {
	return fmt.Sprintf("attendance-engine:%s:%s", scope, id)
}

// EmployeeKey builds the lock key for an employee-scoped operation.
func EmployeeKey(scope, employeeID string) string {
	return Key(scope, employeeID)
}

// WithLock runs fn while holding key. Release failures are logged, not
// returned; the lease expires on its own in the redis implementation.
func WithLock(ctx context.Context, l Locker, key string, fn func(ctx context.Context) error) error {
	lease, err := l.Obtain(ctx, key)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() {
		if rErr := lease.Release(ctx); rErr != nil {
			slog.Warn("failed to release lock", "key", key, "error", rErr)
		}
	}()

	return fn(ctx)
}

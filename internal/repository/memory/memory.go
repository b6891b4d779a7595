// Package memory holds in-process repositories used by tests and by the
// memory storage driver. Every read returns copies; callers never share
// slices with the store.
package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type transactor struct{}

// NewTransactor returns a Transactor that simply runs fn. Each memory
// repository call is atomic on its own but nothing is rolled back, so
// multi-step writes rely on the caller's locks.
func NewTransactor() database.Transactor {
	return transactor{}
}

func (transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func nowFrom(c clock.Clock) time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c.Now()
}

func copyPunches(punches []attendance.Punch) []attendance.Punch {
	if punches == nil {
		return nil
	}
	out := make([]attendance.Punch, len(punches))
	copy(out, punches)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
)

// AuditLog is an append-only audit store that also serves reads.
type AuditLog struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Append implements audit.Sink.
func (l *AuditLog) Append(_ context.Context, entry audit.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Seq = int64(len(l.entries) + 1)
	entry.ChangeSet = maps.Clone(entry.ChangeSet)
	l.entries = append(l.entries, entry)
	return nil
}

// List implements audit.Reader. Entries come back in append order; a
// positive Limit keeps the most recent ones.
func (l *AuditLog) List(_ context.Context, filter audit.Filter) ([]audit.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []audit.Entry
	for _, e := range l.entries {
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		e.ChangeSet = maps.Clone(e.ChangeSet)
		result = append(result, e)
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result, nil
}

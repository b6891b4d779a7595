package audit

import (
	"context"
	"errors"
	"log/slog"
)

// Sink is the single write path for audit entries.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}

// Reader exposes stored entries to dashboards and tests.
type Reader interface {
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

// MultiSink fans an entry out to every sink. The first sink is the system of
// record; failures in the others are joined into the returned error.
type MultiSink []Sink

func (m MultiSink) Append(ctx context.Context, entry Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink mirrors audit entries into the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) Append(ctx context.Context, entry Entry) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "audit",
		"entity", entry.Entity,
		"entity_id", entry.EntityID,
		"action", entry.Action,
		"actor_id", entry.ActorID,
		"change_set", entry.ChangeSet,
	)
	return nil
}

package attendance

import (
	"context"
	"time"
)

// AttendanceService is the punch ledger: it owns AttendanceRecord creation
// and every later mutation of a record.
type AttendanceService interface {
	// ClockIn opens a new record with a single IN punch at now.
	ClockIn(ctx context.Context, employeeID, actorID string) (AttendanceRecord, error)

	// ClockOut closes the employee's most recent open record.
	ClockOut(ctx context.Context, employeeID, actorID string) (AttendanceRecord, error)

	// RecordPunchWithMetadata creates a record from a full punch list.
	RecordPunchWithMetadata(ctx context.Context, req RecordPunchRequest, actorID string) (AttendanceRecord, error)

	// RoundRecord applies the rounding engine to a stored record's worked minutes.
	RoundRecord(ctx context.Context, req RoundRecordRequest, actorID string) (AttendanceRecord, error)

	// ReplacePunches rewrites a record's punches, e.g. on correction approval.
	ReplacePunches(ctx context.Context, recordID string, punches []Punch, actorID string) (AttendanceRecord, error)

	// FinaliseForPayroll marks records immutable. Already-finalised ids are
	// skipped and a record finalised while still open is flagged as missed.
	FinaliseForPayroll(ctx context.Context, ids []string, actorID string) ([]AttendanceRecord, error)

	// FlagStaleOpenRecords marks records left open for longer than maxAge as
	// having a missed punch and returns every stale open record.
	FlagStaleOpenRecords(ctx context.Context, maxAge time.Duration, actorID string) ([]AttendanceRecord, error)

	GetRecord(ctx context.Context, id string) (AttendanceRecord, error)
	ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
	PeriodSummary(ctx context.Context, employeeID string, from, to time.Time) (PeriodSummary, error)
}

package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

// AuditLogRepository stores audit entries in audit_logs. Appends made inside
// a transaction commit or roll back with it.
type AuditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Append implements audit.Sink.
func (r *AuditLogRepository) Append(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	changeSet := entry.ChangeSet
	if changeSet == nil {
		changeSet = map[string]any{}
	}

	_, err := q.Exec(ctx, `
		INSERT INTO audit_logs (entity, entity_id, action, change_set, actor_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.Entity, entry.EntityID, entry.Action, changeSet, entry.ActorID, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// List implements audit.Reader.
func (r *AuditLogRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.Entity != "" {
		where += fmt.Sprintf(" AND entity = $%d", argIdx)
		args = append(args, filter.Entity)
		argIdx++
	}
	if filter.EntityID != "" {
		where += fmt.Sprintf(" AND entity_id = $%d", argIdx)
		args = append(args, filter.EntityID)
		argIdx++
	}
	if filter.ActorID != "" {
		where += fmt.Sprintf(" AND actor_id = $%d", argIdx)
		args = append(args, filter.ActorID)
		argIdx++
	}

	// newest N, returned in append order
	query := `SELECT seq, entity, entity_id, action, change_set, actor_id, timestamp FROM audit_logs WHERE ` + where + ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}
	query = `SELECT * FROM (` + query + `) recent ORDER BY seq ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.Seq, &e.Entity, &e.EntityID, &e.Action, &e.ChangeSet, &e.ActorID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

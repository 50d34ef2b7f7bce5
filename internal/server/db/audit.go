package db

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/nriit/facultypubs/internal/objects"
)

const auditLogsTable = "audit_logs"

// AuditRepo is the append-only audit log.
type AuditRepo struct {
	client *Client
}

func NewAuditRepo(client *Client) *AuditRepo {
	return &AuditRepo{client: client}
}

// Append stores the entry. A zero CreatedAt is set to now.
func (r *AuditRepo) Append(ctx context.Context, entry objects.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.exec(ctx, r.client.builder().Insert(auditLogsTable).
		Columns("user_email", "action", "details", "created_at").
		Values(entry.ActorEmail, string(entry.Action), entry.Details, entry.CreatedAt))

	return err
}

// List returns the newest entries first.
func (r *AuditRepo) List(ctx context.Context, limit int) ([]objects.AuditEntry, error) {
	rows, err := r.client.query(ctx, r.client.builder().
		Select("id", "user_email", "action", "details", "created_at").
		From(entsql.Table(auditLogsTable)).
		OrderBy(entsql.Desc("id")).
		Limit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []objects.AuditEntry

	for rows.Next() {
		var (
			entry  objects.AuditEntry
			action string
		)

		if err := rows.Scan(&entry.ID, &entry.ActorEmail, &action, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}

		entry.Action = objects.AuditAction(action)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

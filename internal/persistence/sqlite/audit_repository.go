package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/attendance-console/internal/persistence"
)

// AuditRepository implements persistence.AuditRepository on SQLite.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository returns an audit repository backed by db.
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AppendAuditEntry records an administrative action.
func (r *AuditRepository) AppendAuditEntry(ctx context.Context, entry persistence.AuditEntry) error {
	if entry.ID == "" || entry.Action == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO audit_entries (id, actor_id, action, details, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.Details,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return mapError(err)
}

// ListAuditEntries returns the newest entries first, up to limit. A
// non-positive limit returns everything.
func (r *AuditRepository) ListAuditEntries(ctx context.Context, limit int) ([]persistence.AuditEntry, error) {
	query := `SELECT id, actor_id, action, details, created_at
		FROM audit_entries ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []persistence.AuditEntry
	for rows.Next() {
		var entry persistence.AuditEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.Details, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

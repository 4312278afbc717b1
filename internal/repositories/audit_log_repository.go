package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type AuditLogRepository struct {
	DB *sql.DB
}

// Insert appends an entry. The table has no update or delete paths.
func (r *AuditLogRepository) Insert(ctx context.Context, e models.AuditLog) error {
	var metadata any
	if e.Metadata != nil {
		metadata = *e.Metadata
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, role, action, entity_type, entity_id, description, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ActorID, e.Role, e.Action, e.EntityType, e.EntityID, e.Description, metadata)
	return err
}

// InsertTx appends an entry inside the caller's transaction.
func (r *AuditLogRepository) InsertTx(ctx context.Context, tx *sql.Tx, e models.AuditLog) error {
	var metadata any
	if e.Metadata != nil {
		metadata = *e.Metadata
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, role, action, entity_type, entity_id, description, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ActorID, e.Role, e.Action, e.EntityType, e.EntityID, e.Description, metadata)
	return err
}

func (r *AuditLogRepository) List(ctx context.Context, entityType string, page, pageSize int) ([]models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := `SELECT id, actor_id, role, action, entity_type, entity_id, description, metadata, created_at FROM audit_logs`
	args := []any{}
	if entityType != "" {
		query += ` WHERE entity_type = ?`
		args = append(args, entityType)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		var metadata sql.NullString
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Role, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		if metadata.Valid {
			s := metadata.String
			e.Metadata = &s
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

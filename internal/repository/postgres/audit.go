package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
)

const maxAuditPage = 200

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
        INSERT INTO console_audit_logs (
            id, user_id, role, action, entity_type, entity_id,
            status, metadata, ip_address, user_agent, created_at
        ) VALUES (
            :id, :user_id, :role, :action, :entity_type, :entity_id,
            :status, :metadata, :ip_address, :user_agent, :created_at
        )
    `

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, log)
		return err
	})
}

func buildAuditWhere(f model.AuditFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.UserID != 0 {
		args = append(args, f.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Action != "" {
		args = append(args, f.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.Until.IsZero() {
		args = append(args, f.Until)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := "WHERE 1=1"
	for _, c := range conditions {
		where += " AND " + c
	}
	return where, args
}

func (r *auditRepository) List(ctx context.Context, f model.AuditFilter) ([]*model.AuditLog, int64, error) {
	where, args := buildAuditWhere(f)

	var total int64
	if err := r.GetDB().GetContext(ctx, &total, "SELECT COUNT(*) FROM console_audit_logs "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > maxAuditPage {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := strings.Join([]string{
		"SELECT * FROM console_audit_logs",
		where,
		fmt.Sprintf("ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
	}, " ")

	var logs []*model.AuditLog
	if err := r.GetDB().SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM console_audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return result.RowsAffected()
}

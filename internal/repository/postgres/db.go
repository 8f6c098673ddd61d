package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/ubs-console/internal/config"
)

func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS console_audit_logs (
    id          UUID PRIMARY KEY,
    user_id     BIGINT NOT NULL,
    role        VARCHAR(20) NOT NULL DEFAULT '',
    action      VARCHAR(40) NOT NULL,
    entity_type VARCHAR(40) NOT NULL,
    entity_id   VARCHAR(64) NOT NULL DEFAULT '',
    status      INTEGER NOT NULL DEFAULT 0,
    metadata    JSONB,
    ip_address  VARCHAR(64) NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_console_audit_logs_created_at ON console_audit_logs (created_at);
CREATE INDEX IF NOT EXISTS idx_console_audit_logs_user_id ON console_audit_logs (user_id);
`

// Migrate creates the console's own tables.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

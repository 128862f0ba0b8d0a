package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
)

// ledgerSchema creates the append-only schedule history table and its lookup index.
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS schedule_history (
	seq             BIGSERIAL PRIMARY KEY,
	id              TEXT NOT NULL UNIQUE,
	schedule_id     TEXT NOT NULL,
	change_type     TEXT NOT NULL,
	previous_values JSONB NOT NULL DEFAULT '{}'::jsonb,
	new_values      JSONB NOT NULL DEFAULT '{}'::jsonb,
	changed_fields  JSONB NOT NULL DEFAULT '[]'::jsonb,
	reason          TEXT NOT NULL DEFAULT '',
	changed_by      TEXT NOT NULL DEFAULT '',
	changed_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedule_history_schedule ON schedule_history (schedule_id, changed_at DESC);
`

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureLedgerSchema creates the history table when missing.
func EnsureLedgerSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the slice of a pgx pool the migrations need.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users
(
	id         TEXT PRIMARY KEY,
	email      TEXT,
	plan       TEXT NOT NULL DEFAULT 'trial',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS usage
(
	user_id         TEXT PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	remaining_terms BIGINT NOT NULL DEFAULT 0,
	plan            TEXT NOT NULL DEFAULT 'trial',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS usage_events
(
	id           UUID PRIMARY KEY,
	user_id      TEXT NOT NULL,
	event_type   TEXT NOT NULL,
	amount_terms BIGINT NOT NULL DEFAULT 0,
	metadata     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS usage_events_user_idx ON usage_events (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_usage_monthly
(
	user_id     TEXT NOT NULL,
	month_start DATE NOT NULL,
	terms_used  BIGINT DEFAULT 0,
	terms_quota BIGINT DEFAULT 0,
	runs_used   BIGINT DEFAULT 0,
	PRIMARY KEY (user_id, month_start)
)`,
}

// RunMigrations ensures the account and usage tables exist.
func RunMigrations(ctx context.Context, conn Execer) error {
	for _, stmt := range postgresSchema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// RunClickHouseMigrations creates the analytics copy of usage_events.
func RunClickHouseMigrations(ctx context.Context, conn clickhouse.Conn) error {
	err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS usage_events
(
	id           String,
	user_id      String,
	event_type   String,
	amount_terms Int64,
	metadata     String DEFAULT '{}',
	created_at   DateTime64(3, 'UTC')
)
ENGINE = ReplacingMergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (user_id, event_type, created_at, id)
SETTINGS index_granularity = 8192;
`)
	if err != nil {
		return fmt.Errorf("apply clickhouse migrations: %w", err)
	}
	return nil
}

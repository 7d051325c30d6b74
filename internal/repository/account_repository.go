package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"termtidy-web/internal/model"
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// AccountRepository defines database operations for account and usage state.
type AccountRepository interface {
	// UpsertUser inserts the user or refreshes its email.
	UpsertUser(ctx context.Context, user model.User) error

	// CreateUsageBucketIfAbsent inserts the lifetime bucket unless one
	// exists. It reports whether a row was inserted.
	CreateUsageBucketIfAbsent(ctx context.Context, bucket model.UsageBucket) (bool, error)

	// EnsureMonthlyUsage inserts a zeroed row for (user, month) unless one
	// exists. It reports whether a row was inserted.
	EnsureMonthlyUsage(ctx context.Context, userID string, monthStart time.Time, quota int64) (bool, error)

	// GetMonthlyUsage returns nil, nil when the month has no row.
	GetMonthlyUsage(ctx context.Context, userID string, monthStart time.Time) (*model.MonthlyUsage, error)
}

type accountRepository struct {
	db DBTX
}

// NewAccountRepository creates an AccountRepository backed by PostgreSQL.
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

const upsertUserQuery = `
	INSERT INTO users (id, email, plan)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
`

const insertUsageBucketQuery = `
	INSERT INTO usage (user_id, remaining_terms, plan)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO NOTHING
`

const insertMonthlyUsageQuery = `
	INSERT INTO user_usage_monthly (user_id, month_start, terms_used, terms_quota, runs_used)
	VALUES ($1, $2, 0, $3, 0)
	ON CONFLICT (user_id, month_start) DO NOTHING
`

const selectMonthlyUsageQuery = `
	SELECT terms_used, terms_quota, runs_used
	FROM user_usage_monthly
	WHERE user_id = $1 AND month_start = $2
`

func (r *accountRepository) UpsertUser(ctx context.Context, user model.User) error {
	_, err := r.db.Exec(ctx, upsertUserQuery, user.ID, nullIfEmpty(user.Email), user.Plan)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *accountRepository) CreateUsageBucketIfAbsent(ctx context.Context, bucket model.UsageBucket) (bool, error) {
	tag, err := r.db.Exec(ctx, insertUsageBucketQuery, bucket.UserID, bucket.RemainingTerms, bucket.Plan)
	if err != nil {
		return false, fmt.Errorf("insert usage bucket: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *accountRepository) EnsureMonthlyUsage(ctx context.Context, userID string, monthStart time.Time, quota int64) (bool, error) {
	tag, err := r.db.Exec(ctx, insertMonthlyUsageQuery, userID, monthStart, quota)
	if err != nil {
		return false, fmt.Errorf("insert monthly usage: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *accountRepository) GetMonthlyUsage(ctx context.Context, userID string, monthStart time.Time) (*model.MonthlyUsage, error) {
	row := model.MonthlyUsage{UserID: userID, MonthStart: monthStart}

	err := r.db.QueryRow(ctx, selectMonthlyUsageQuery, userID, monthStart).
		Scan(&row.TermsUsed, &row.TermsQuota, &row.RunsUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select monthly usage: %w", err)
	}
	return &row, nil
}

func nullIfEmpty(val string) interface{} {
	if val == "" {
		return nil
	}
	return val
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5"

	"termtidy-web/internal/model"
)

// EventRepository writes usage events in batches.
type EventRepository interface {
	// CreateBatch inserts multiple events in one round trip. Re-sent ids
	// are ignored.
	CreateBatch(ctx context.Context, events []model.UsageEvent) error
}

type pgEventRepository struct {
	db DBTX
}

// NewEventRepository creates an EventRepository backed by PostgreSQL.
func NewEventRepository(db DBTX) EventRepository {
	return &pgEventRepository{db: db}
}

const insertEventQuery = `
	INSERT INTO usage_events (id, user_id, event_type, amount_terms, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
`

func (r *pgEventRepository) CreateBatch(ctx context.Context, events []model.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		metadata, err := marshalMetadata(event.Metadata)
		if err != nil {
			return err
		}

		batch.Queue(insertEventQuery,
			event.ID,
			event.UserID,
			event.EventType,
			event.AmountTerms,
			metadata,
			event.CreatedAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch execution error: %w", err)
		}
	}

	return nil
}

type chEventRepository struct {
	conn clickhouse.Conn
}

// NewClickHouseEventRepository creates an EventRepository backed by ClickHouse.
func NewClickHouseEventRepository(conn clickhouse.Conn) EventRepository {
	return &chEventRepository{conn: conn}
}

const insertClickHouseEventQuery = `INSERT INTO usage_events (id, user_id, event_type, amount_terms, metadata, created_at)`

func (r *chEventRepository) CreateBatch(ctx context.Context, events []model.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertClickHouseEventQuery)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, event := range events {
		metadata, err := metadataString(event.Metadata)
		if err != nil {
			_ = batch.Abort()
			return err
		}
		if err := batch.Append(
			event.ID,
			event.UserID,
			event.EventType,
			event.AmountTerms,
			metadata,
			event.CreatedAt,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func marshalMetadata(metadata map[string]interface{}) ([]byte, error) {
	if metadata == nil {
		return nil, nil // JSONB null
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

func metadataString(metadata map[string]interface{}) (string, error) {
	b, err := marshalMetadata(metadata)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "{}", nil
	}
	return string(b), nil
}

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	txcontext "dramcask/pkg/platform/tx"
)

// OutboxEmitter implements Emitter using the transactional outbox pattern.
// Events are appended to the outbox table on the transaction carried by the
// context, so they commit (or roll back) with the operation that produced
// them. The Relay publishes committed rows to Kafka.
type OutboxEmitter struct {
	db *sql.DB
}

// NewOutboxEmitter creates a Postgres-backed outbox emitter.
func NewOutboxEmitter(db *sql.DB) *OutboxEmitter {
	return &OutboxEmitter{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (e *OutboxEmitter) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return e.db
}

// Emit appends the event to the outbox table.
func (e *OutboxEmitter) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, entity_type, entity_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = e.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		event.EntityType,
		event.EntityID,
		string(event.Action),
		payload,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// OutboxRow is one unpublished outbox entry.
type OutboxRow struct {
	ID        uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}

// FetchUnpublished returns up to limit unpublished entries, oldest first.
func (e *OutboxEmitter) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	query := `
		SELECT id, payload, created_at
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := e.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Payload, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return out, nil
}

// MarkPublished stamps entries as published after the broker acknowledged
// them.
func (e *OutboxEmitter) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE audit_outbox SET published_at = $1 WHERE id = ANY($2)`
	if _, err := e.db.ExecContext(ctx, query, at, pq.Array(uuidArray(ids))); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func uuidArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-service/internal/domain/message"
)

// The outbox makes event propagation crash-safe: rows are written in the
// same transaction as the entity mutation and cleared only after every
// handler for the event succeeded, giving at-least-once delivery.

func insertOutbox(ctx context.Context, tx pgx.Tx, ev message.Event) error {
	payload, err := message.EncodeEvent(ev)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (id, event_name, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, ev.MessageID(), ev.EventName(), payload, ev.CreatedTime())
	return err
}

// OutboxRow is an undispatched event as stored.
type OutboxRow struct {
	ID      string
	Name    string
	Payload []byte
}

// Undispatched returns rows older than grace whose handlers have not all
// succeeded yet. The grace period keeps the worker from racing the in-process
// dispatch of events that are still being handled.
func Undispatched(ctx context.Context, pool *pgxpool.Pool, grace time.Duration, limit int) ([]OutboxRow, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, event_name, payload
		FROM outbox
		WHERE dispatched_at IS NULL AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`, time.Now().UTC().Add(-grace), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var r OutboxRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Payload); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

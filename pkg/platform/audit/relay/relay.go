// Package relay moves audit events from the postgres outbox to Kafka.
// Publishing after commit (instead of from the request path) means an
// unavailable broker never blocks an approval; rows are deleted only after
// the broker acknowledges them, so delivery is at-least-once.
package relay

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 2 * time.Second
)

// Relay polls the outbox table and produces pending rows to the audit topic.
type Relay struct {
	db     *sql.DB
	client *kgo.Client
	topic  string
	logger *slog.Logger

	batchSize    int
	pollInterval time.Duration
}

func New(db *sql.DB, client *kgo.Client, topic string, logger *slog.Logger) *Relay {
	return &Relay{
		db:           db,
		client:       client,
		topic:        topic,
		logger:       logger,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.ErrorContext(ctx, "audit relay batch failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

func (r *Relay) relayBatch(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM audit_outbox
		ORDER BY created_at
		LIMIT $1
	`, r.batchSize)
	if err != nil {
		return fmt.Errorf("poll outbox: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			return fmt.Errorf("scan outbox: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("poll outbox: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	for _, row := range pending {
		record := &kgo.Record{
			Topic: r.topic,
			Key:   []byte(row.aggregateID),
			Value: row.payload,
		}
		if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce audit event %s: %w", row.id, err)
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM audit_outbox WHERE id = $1`, row.id); err != nil {
			return fmt.Errorf("ack audit event %s: %w", row.id, err)
		}
	}

	r.logger.DebugContext(ctx, "audit relay batch published", "count", len(pending))
	return nil
}

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	// DefaultTopic receives all lifecycle audit events.
	DefaultTopic = "dramcask.audit.v1"

	relayBatchSize    = 100
	relayPollInterval = 2 * time.Second
)

// Producer is the subset of kgo.Client the relay needs; it keeps the relay
// testable without a broker.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay drains the audit outbox into Kafka. It runs outside the engine's
// transaction boundary: the outbox row commits with the business operation,
// publishing happens afterward, and rows are only marked published once the
// broker acknowledged them (at-least-once delivery).
type Relay struct {
	outbox *OutboxEmitter
	client Producer
	topic  string
	logger *slog.Logger
}

// NewRelay constructs an outbox relay publishing to the given topic.
func NewRelay(outbox *OutboxEmitter, client Producer, topic string, logger *slog.Logger) *Relay {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Relay{outbox: outbox, client: client, topic: topic, logger: logger}
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(relayPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil {
				// Publish failures are retried on the next tick; the outbox
				// keeps the events durable in the meantime.
				r.logger.WarnContext(ctx, "audit relay drain failed", "error", err)
			}
		}
	}
}

func (r *Relay) drainOnce(ctx context.Context) error {
	rows, err := r.outbox.FetchUnpublished(ctx, relayBatchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]*kgo.Record, len(rows))
	for i, row := range rows {
		records[i] = &kgo.Record{
			Topic: r.topic,
			Key:   []byte(row.ID.String()),
			Value: row.Payload,
		}
	}
	if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return r.outbox.MarkPublished(ctx, ids, time.Now())
}

package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"kolab/contexts/finance-core/ledger-service/application"
	"kolab/contexts/finance-core/ledger-service/ports"
)

// OutboxRelay publishes pending ledger outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("ledger outbox list failed",
			"event", "ledger_outbox_list_failed",
			"module", "finance-core/ledger-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		event := ports.EventEnvelope{
			EventID:       row.OutboxID,
			EventType:     row.EventType,
			OccurredAt:    row.CreatedAt,
			SourceService: "ledger-service",
			PartitionKey:  row.PartitionKey,
			Data:          row.Payload,
		}
		var decoded ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &decoded); err == nil && decoded.EventID != "" {
			event = decoded
		}
		if err := r.Publisher.Publish(ctx, event.EventType, event); err != nil {
			logger.Error("ledger outbox publish failed",
				"event", "ledger_outbox_publish_failed",
				"module", "finance-core/ledger-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("ledger outbox mark published failed",
				"event", "ledger_outbox_mark_published_failed",
				"module", "finance-core/ledger-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("ledger outbox relay cycle completed",
			"event", "ledger_outbox_relay_completed",
			"module", "finance-core/ledger-service",
			"layer", "worker",
			"published_count", len(pending),
		)
	}
	return nil
}

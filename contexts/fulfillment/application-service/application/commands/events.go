package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"kolab/contexts/fulfillment/application-service/ports"
)

func appendOutbox(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	occurredAt time.Time,
	partitionKey string,
	payload map[string]any,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       strings.TrimSpace(eventID),
		EventType:     eventType,
		OccurredAt:    occurredAt.UTC(),
		SourceService: "application-service",
		PartitionKey:  strings.TrimSpace(partitionKey),
		Data:          data,
	})
}

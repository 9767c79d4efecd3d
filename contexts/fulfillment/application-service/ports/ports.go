package ports

import (
	"context"
	"time"

	"kolab/contexts/fulfillment/application-service/domain/entities"
)

type ApplicationFilter struct {
	CampaignID string
	CreatorID  string
	Status     entities.ApplicationStatus
}

type Repository interface {
	CreateApplication(ctx context.Context, application entities.Application) error
	GetApplication(ctx context.Context, applicationID string) (entities.Application, error)
	FindByCampaignAndCreator(ctx context.Context, campaignID string, creatorID string) (entities.Application, error)
	// UpdateStatus applies the lifecycle transition only while the stored
	// status is still one of expected; a guard miss on an existing row is a
	// concurrent modification, never a silent overwrite.
	UpdateStatus(ctx context.Context, expected []entities.ApplicationStatus, application entities.Application) error
	// UpdateShipping applies the shipping transition with the same guard
	// semantics on shipping_status.
	UpdateShipping(ctx context.Context, expected []entities.ShippingStatus, application entities.Application) error
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]entities.Application, error)
}

type CampaignDirectory interface {
	GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope struct {
	EventID       string
	EventType     string
	OccurredAt    time.Time
	SourceService string
	PartitionKey  string
	Data          []byte
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

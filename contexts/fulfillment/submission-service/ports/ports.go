package ports

import (
	"context"
	"time"

	"kolab/contexts/fulfillment/submission-service/domain/entities"
)

type SubmissionFilter struct {
	CampaignID string
	CreatorID  string
	Status     entities.SubmissionStatus
	WinnerOnly bool
}

type Repository interface {
	// CreateSubmission inserts the row while no other active submission
	// exists for the same (campaign, creator) pair; a second active
	// submission is ErrDuplicateSubmission.
	CreateSubmission(ctx context.Context, submission entities.Submission) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	// UpdateStatus applies the review transition only while the stored
	// status is still one of expected; a guard miss on an existing row is a
	// concurrent modification.
	UpdateStatus(ctx context.Context, expected []entities.SubmissionStatus, submission entities.Submission) error
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]entities.Submission, error)
}

type CampaignDirectory interface {
	GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error)
}

// FulfillmentGate answers whether a creator may submit content for a
// campaign. The application context owns the shipping gate behind it.
type FulfillmentGate interface {
	CanSubmit(ctx context.Context, campaignID string, creatorID string) error
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

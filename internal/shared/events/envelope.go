package events

import "time"

// Envelope is the canonical event shape carried on the platform bus. The
// per-context outbox rows serialize into it before publishing.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	SourceService string    `json:"source_service"`
	PartitionKey  string    `json:"partition_key"`
	Data          []byte    `json:"data"`
}

// Topics the fulfillment settlement worker consumes.
const (
	TopicSubmissionWinnerDesignated = "submission.winner_designated"
	TopicCampaignCompleted          = "campaign.completed"
)

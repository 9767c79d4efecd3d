package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"kolab/contexts/fulfillment/settlement-service/application"
	domainerrors "kolab/contexts/fulfillment/settlement-service/domain/errors"
	"kolab/internal/shared/events"
)

// SettlementConsumer reacts to review and campaign lifecycle events on the
// platform bus and settles the affected submissions. Release is idempotent
// downstream, so redelivery of either event is harmless.
type SettlementConsumer struct {
	Settlement application.SettlementUseCase
	Logger     *slog.Logger
}

type winnerDesignatedPayload struct {
	SubmissionID string `json:"submission_id"`
	CampaignID   string `json:"campaign_id"`
}

type campaignCompletedPayload struct {
	CampaignID string `json:"campaign_id"`
}

func (c SettlementConsumer) HandleWinnerDesignated(ctx context.Context, event events.Envelope) error {
	var payload winnerDesignatedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		c.logSkip(event, "undecodable winner payload", err)
		return nil
	}

	transactionID, err := c.Settlement.ReleaseForSubmission(ctx, application.ReleaseForSubmissionCommand{
		SubmissionID: payload.SubmissionID,
	})
	if err != nil {
		// The campaign row may lag the designation event; leave the
		// release to the completion sweep in that case.
		if errors.Is(err, domainerrors.ErrCampaignStillRunning) {
			c.logSkip(event, "campaign projection not terminal yet", err)
			return nil
		}
		return err
	}

	application.ResolveLogger(c.Logger).Info("winner payout settled",
		"event", "settlement_winner_settled",
		"module", "fulfillment/settlement-service",
		"layer", "worker",
		"submission_id", payload.SubmissionID,
		"campaign_id", payload.CampaignID,
		"transaction_id", transactionID,
	)
	return nil
}

func (c SettlementConsumer) HandleCampaignCompleted(ctx context.Context, event events.Envelope) error {
	var payload campaignCompletedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		c.logSkip(event, "undecodable campaign payload", err)
		return nil
	}

	report, err := c.Settlement.Sweep(ctx, payload.CampaignID)
	if err != nil {
		return err
	}

	application.ResolveLogger(c.Logger).Info("campaign settled from event",
		"event", "settlement_campaign_settled",
		"module", "fulfillment/settlement-service",
		"layer", "worker",
		"campaign_id", report.CampaignID,
		"released_count", report.ReleasedCount,
	)
	return nil
}

func (c SettlementConsumer) logSkip(event events.Envelope, message string, err error) {
	application.ResolveLogger(c.Logger).Warn(message,
		"event", "settlement_event_skipped",
		"module", "fulfillment/settlement-service",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"error", err.Error(),
	)
}

package bootstrap

import (
	"context"
	"errors"

	ledgerapp "kolab/contexts/finance-core/ledger-service/application"
	ledgerports "kolab/contexts/finance-core/ledger-service/ports"
	applicationcommands "kolab/contexts/fulfillment/application-service/application/commands"
	applicationqueries "kolab/contexts/fulfillment/application-service/application/queries"
	applicationerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	applicationports "kolab/contexts/fulfillment/application-service/ports"
	settlementports "kolab/contexts/fulfillment/settlement-service/ports"
	submissionqueries "kolab/contexts/fulfillment/submission-service/application/queries"
	submissionentities "kolab/contexts/fulfillment/submission-service/domain/entities"
	submissionports "kolab/contexts/fulfillment/submission-service/ports"
	"kolab/internal/platform/messaging"
	"kolab/internal/shared/events"
)

// The settlement module declares its own ports; these adapters satisfy them
// with the other modules' use cases so the contexts stay decoupled.

type settlementCampaigns struct {
	campaigns applicationports.CampaignDirectory
}

func (a settlementCampaigns) GetCampaign(ctx context.Context, campaignID string) (settlementports.Campaign, error) {
	campaign, err := a.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return settlementports.Campaign{}, err
	}
	return settlementports.Campaign{
		CampaignID:   campaign.CampaignID,
		BrandID:      campaign.BrandID,
		Title:        campaign.Title,
		CampaignType: string(campaign.CampaignType),
		Status:       string(campaign.Status),
		PayoutAmount: campaign.PayoutAmount,
	}, nil
}

type settlementSubmissions struct {
	queries submissionqueries.QueryUseCase
}

func (a settlementSubmissions) GetSubmission(ctx context.Context, submissionID string) (settlementports.Submission, error) {
	item, err := a.queries.GetSubmission(ctx, submissionID)
	if err != nil {
		return settlementports.Submission{}, err
	}
	return settlementports.Submission{
		SubmissionID: item.SubmissionID,
		CampaignID:   item.CampaignID,
		CreatorID:    item.CreatorID,
		Approved:     item.Status == submissionentities.SubmissionStatusApproved,
		Winner:       item.Winner,
	}, nil
}

func (a settlementSubmissions) ListApproved(ctx context.Context, campaignID string) ([]settlementports.Submission, error) {
	items, err := a.queries.ListSubmissions(ctx, submissionqueries.ListSubmissionsQuery{
		CampaignID: campaignID,
		Status:     string(submissionentities.SubmissionStatusApproved),
	})
	if err != nil {
		return nil, err
	}
	result := make([]settlementports.Submission, 0, len(items))
	for _, item := range items {
		result = append(result, settlementports.Submission{
			SubmissionID: item.SubmissionID,
			CampaignID:   item.CampaignID,
			CreatorID:    item.CreatorID,
			Approved:     true,
			Winner:       item.Winner,
		})
	}
	return result, nil
}

type settlementApplications struct {
	lifecycle applicationcommands.LifecycleUseCase
	queries   applicationqueries.QueryUseCase
}

func (a settlementApplications) CompleteApplication(ctx context.Context, campaignID string, creatorID string) error {
	items, err := a.queries.ListApplications(ctx, applicationqueries.ListApplicationsQuery{
		CampaignID: campaignID,
		CreatorID:  creatorID,
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		// Open contest entries have no hire to complete.
		return nil
	}
	_, err = a.lifecycle.Complete(ctx, applicationcommands.CompleteCommand{
		ApplicationID: items[0].ApplicationID,
	})
	if errors.Is(err, applicationerrors.ErrInvalidStatusTransition) {
		// Already completed by an earlier release of the same creator.
		return nil
	}
	return err
}

type settlementEscrow struct {
	ledger ledgerapp.Service
}

func (a settlementEscrow) ReleaseEscrow(ctx context.Context, req settlementports.ReleaseRequest) (string, error) {
	transaction, err := a.ledger.ReleaseEscrow(ctx, ledgerapp.ReleaseEscrowCommand{
		CampaignID:    req.CampaignID,
		BrandUserID:   req.BrandUserID,
		CreatorUserID: req.CreatorUserID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		return "", err
	}
	return transaction.TransactionID, nil
}

// Per-context publisher adapters onto the shared bus envelope.

type ledgerBusPublisher struct {
	bus *messaging.Kafka
}

func (p ledgerBusPublisher) Publish(ctx context.Context, topic string, event ledgerports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:       event.EventID,
		EventType:     event.EventType,
		OccurredAt:    event.OccurredAt,
		SourceService: event.SourceService,
		PartitionKey:  event.PartitionKey,
		Data:          event.Data,
	})
}

type applicationBusPublisher struct {
	bus *messaging.Kafka
}

func (p applicationBusPublisher) Publish(ctx context.Context, topic string, event applicationports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:       event.EventID,
		EventType:     event.EventType,
		OccurredAt:    event.OccurredAt,
		SourceService: event.SourceService,
		PartitionKey:  event.PartitionKey,
		Data:          event.Data,
	})
}

type submissionBusPublisher struct {
	bus *messaging.Kafka
}

func (p submissionBusPublisher) Publish(ctx context.Context, topic string, event submissionports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:       event.EventID,
		EventType:     event.EventType,
		OccurredAt:    event.OccurredAt,
		SourceService: event.SourceService,
		PartitionKey:  event.PartitionKey,
		Data:          event.Data,
	})
}

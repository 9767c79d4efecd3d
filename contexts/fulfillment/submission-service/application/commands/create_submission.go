package commands

import (
	"context"
	"log/slog"
	"strings"

	"kolab/contexts/fulfillment/submission-service/application"
	"kolab/contexts/fulfillment/submission-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/submission-service/domain/errors"
	"kolab/contexts/fulfillment/submission-service/ports"
)

type CreateSubmissionCommand struct {
	CreatorID  string
	CampaignID string
	ContentURL string
	Caption    string
}

// CreateSubmissionUseCase accepts new content for review. The fulfillment
// gate is consulted before any write so a locked shipping gate surfaces to
// the creator untouched.
type CreateSubmissionUseCase struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Gate       ports.FulfillmentGate
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc CreateSubmissionUseCase) Execute(ctx context.Context, cmd CreateSubmissionCommand) (entities.Submission, error) {
	creatorID := strings.TrimSpace(cmd.CreatorID)
	campaignID := strings.TrimSpace(cmd.CampaignID)
	contentURL := strings.TrimSpace(cmd.ContentURL)
	if creatorID == "" || campaignID == "" || contentURL == "" {
		return entities.Submission{}, domainerrors.ErrInvalidSubmissionInput
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return entities.Submission{}, err
	}
	if campaign.Status != entities.CampaignStatusActive {
		return entities.Submission{}, domainerrors.ErrCampaignNotActive
	}

	if uc.Gate != nil {
		if err := uc.Gate.CanSubmit(ctx, campaignID, creatorID); err != nil {
			return entities.Submission{}, err
		}
	}

	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	now := uc.Clock.Now().UTC()
	item := entities.Submission{
		SubmissionID: strings.TrimSpace(submissionID),
		CampaignID:   campaignID,
		CreatorID:    creatorID,
		ContentURL:   contentURL,
		Caption:      strings.TrimSpace(cmd.Caption),
		Status:       entities.SubmissionStatusSubmitted,
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Repository.CreateSubmission(ctx, item); err != nil {
		return entities.Submission{}, err
	}

	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "submission.created", now, campaignID, map[string]any{
		"submission_id": item.SubmissionID,
		"campaign_id":   item.CampaignID,
		"creator_id":    item.CreatorID,
	}); err != nil {
		return entities.Submission{}, err
	}

	application.ResolveLogger(uc.Logger).Info("submission created",
		"event", "submission_created",
		"module", "fulfillment/submission-service",
		"layer", "application",
		"submission_id", item.SubmissionID,
		"campaign_id", item.CampaignID,
		"creator_id", item.CreatorID,
	)
	return item, nil
}

package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "kolab/contexts/fulfillment/settlement-service/domain/errors"
	"kolab/contexts/fulfillment/settlement-service/ports"
)

type ReleaseForSubmissionCommand struct {
	SubmissionID string
}

type CompleteCampaignCommand struct {
	ActorID    string
	CampaignID string
}

// SettlementReport summarizes one settlement sweep over a campaign.
type SettlementReport struct {
	CampaignID     string
	ReleasedCount  int
	TransactionIDs []string
}

// SettlementUseCase orchestrates escrow release once review and fulfillment
// have both finished. The eligibility policy comes off the campaign row:
// contest campaigns pay the designated winner, deal campaigns pay every
// approved submission. Releases are idempotent downstream, so a sweep can
// safely overlap an event-driven release for the same creator.
type SettlementUseCase struct {
	Campaigns    ports.CampaignDirectory
	Submissions  ports.Submissions
	Applications ports.Applications
	Escrow       ports.Escrow
	Logger       *slog.Logger
}

func (uc SettlementUseCase) ReleaseForSubmission(ctx context.Context, cmd ReleaseForSubmissionCommand) (string, error) {
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	if submissionID == "" {
		return "", domainerrors.ErrInvalidSettlementInput
	}
	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return "", err
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, submission.CampaignID)
	if err != nil {
		return "", err
	}
	if !campaign.Ended() {
		return "", domainerrors.ErrCampaignStillRunning
	}
	if !submission.Approved {
		return "", domainerrors.ErrSubmissionNotApproved
	}
	if campaign.CampaignType == ports.CampaignTypeContest && !submission.Winner {
		return "", domainerrors.ErrWinnerRequired
	}
	return uc.release(ctx, campaign, submission)
}

// CompleteCampaign is the brand-triggered settlement sweep over every
// eligible approved submission.
func (uc SettlementUseCase) CompleteCampaign(ctx context.Context, cmd CompleteCampaignCommand) (SettlementReport, error) {
	campaignID := strings.TrimSpace(cmd.CampaignID)
	if campaignID == "" {
		return SettlementReport{}, domainerrors.ErrInvalidSettlementInput
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return SettlementReport{}, err
	}
	if strings.TrimSpace(cmd.ActorID) != campaign.BrandID {
		return SettlementReport{}, domainerrors.ErrUnauthorizedActor
	}
	return uc.sweep(ctx, campaign)
}

// Sweep settles a campaign without an actor check. Worker consumers call it
// when the campaign system of record announces completion.
func (uc SettlementUseCase) Sweep(ctx context.Context, campaignID string) (SettlementReport, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return SettlementReport{}, err
	}
	return uc.sweep(ctx, campaign)
}

func (uc SettlementUseCase) sweep(ctx context.Context, campaign ports.Campaign) (SettlementReport, error) {
	if !campaign.Ended() {
		return SettlementReport{}, domainerrors.ErrCampaignStillRunning
	}
	approved, err := uc.Submissions.ListApproved(ctx, campaign.CampaignID)
	if err != nil {
		return SettlementReport{}, err
	}

	report := SettlementReport{CampaignID: campaign.CampaignID}
	for _, submission := range approved {
		if campaign.CampaignType == ports.CampaignTypeContest && !submission.Winner {
			continue
		}
		transactionID, err := uc.release(ctx, campaign, submission)
		if err != nil {
			return report, err
		}
		report.ReleasedCount++
		report.TransactionIDs = append(report.TransactionIDs, transactionID)
	}

	ResolveLogger(uc.Logger).Info("campaign settlement sweep completed",
		"event", "settlement_sweep_completed",
		"module", "fulfillment/settlement-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"released_count", report.ReleasedCount,
	)
	return report, nil
}

func (uc SettlementUseCase) release(ctx context.Context, campaign ports.Campaign, submission ports.Submission) (string, error) {
	transactionID, err := uc.Escrow.ReleaseEscrow(ctx, ports.ReleaseRequest{
		CampaignID:    campaign.CampaignID,
		BrandUserID:   campaign.BrandID,
		CreatorUserID: submission.CreatorID,
		Amount:        campaign.PayoutAmount,
		Description:   "payout for campaign " + campaign.Title,
	})
	if err != nil {
		return "", err
	}
	if err := uc.Applications.CompleteApplication(ctx, campaign.CampaignID, submission.CreatorID); err != nil {
		return "", err
	}

	ResolveLogger(uc.Logger).Info("escrow released for submission",
		"event", "settlement_released",
		"module", "fulfillment/settlement-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"submission_id", submission.SubmissionID,
		"creator_id", submission.CreatorID,
		"amount", campaign.PayoutAmount,
		"transaction_id", transactionID,
	)
	return transactionID, nil
}

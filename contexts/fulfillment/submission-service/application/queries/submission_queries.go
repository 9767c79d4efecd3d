package queries

import (
	"context"
	"log/slog"
	"strings"

	"kolab/contexts/fulfillment/submission-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/submission-service/domain/errors"
	"kolab/contexts/fulfillment/submission-service/ports"
)

type ListSubmissionsQuery struct {
	CampaignID string
	CreatorID  string
	Status     string
	WinnerOnly bool
}

// BrandReviewQueue groups a campaign's submissions by where they sit in the
// review machine so the brand dashboard can render counts directly.
type BrandReviewQueue struct {
	CampaignID   string
	Pending      []entities.Submission
	AwaitingRedo []entities.Submission
	Approved     []entities.Submission
	Declined     []entities.Submission
}

type QueryUseCase struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	return uc.Repository.GetSubmission(ctx, strings.TrimSpace(submissionID))
}

func (uc QueryUseCase) ListSubmissions(ctx context.Context, query ListSubmissionsQuery) ([]entities.Submission, error) {
	return uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{
		CampaignID: strings.TrimSpace(query.CampaignID),
		CreatorID:  strings.TrimSpace(query.CreatorID),
		Status:     entities.SubmissionStatus(query.Status),
		WinnerOnly: query.WinnerOnly,
	})
}

// CreatorSubmissions lists everything a creator has submitted, newest first.
func (uc QueryUseCase) CreatorSubmissions(ctx context.Context, creatorID string) ([]entities.Submission, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, domainerrors.ErrInvalidSubmissionInput
	}
	return uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{CreatorID: strings.TrimSpace(creatorID)})
}

// BrandQueue builds the review dashboard for one of the brand's campaigns.
func (uc QueryUseCase) BrandQueue(ctx context.Context, brandID string, campaignID string) (BrandReviewQueue, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return BrandReviewQueue{}, err
	}
	if strings.TrimSpace(brandID) != campaign.BrandID {
		return BrandReviewQueue{}, domainerrors.ErrUnauthorizedActor
	}

	items, err := uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{CampaignID: campaign.CampaignID})
	if err != nil {
		return BrandReviewQueue{}, err
	}
	queue := BrandReviewQueue{CampaignID: campaign.CampaignID}
	for _, item := range items {
		switch item.Status {
		case entities.SubmissionStatusSubmitted:
			queue.Pending = append(queue.Pending, item)
		case entities.SubmissionStatusRedoRequested:
			queue.AwaitingRedo = append(queue.AwaitingRedo, item)
		case entities.SubmissionStatusApproved:
			queue.Approved = append(queue.Approved, item)
		case entities.SubmissionStatusDeclined:
			queue.Declined = append(queue.Declined, item)
		}
	}
	return queue, nil
}

// ApprovedForSettlement lists the submissions eligible for escrow release on
// an ended campaign: winners only for contests, every approved one for deals.
func (uc QueryUseCase) ApprovedForSettlement(ctx context.Context, campaignID string) ([]entities.Submission, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return nil, err
	}
	filter := ports.SubmissionFilter{
		CampaignID: campaign.CampaignID,
		Status:     entities.SubmissionStatusApproved,
	}
	if campaign.CampaignType == entities.CampaignTypeContest {
		filter.WinnerOnly = true
	}
	return uc.Repository.ListSubmissions(ctx, filter)
}

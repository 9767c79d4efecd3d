package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"kolab/contexts/fulfillment/submission-service/application/commands"
	"kolab/contexts/fulfillment/submission-service/application/queries"
	"kolab/contexts/fulfillment/submission-service/domain/entities"
	httptransport "kolab/contexts/fulfillment/submission-service/transport/http"
)

type Handler struct {
	Create  commands.CreateSubmissionUseCase
	Review  commands.ReviewSubmissionUseCase
	Queries queries.QueryUseCase
	Logger  *slog.Logger
}

func (h Handler) CreateSubmissionHandler(ctx context.Context, creatorID string, req httptransport.CreateSubmissionRequest) (httptransport.SubmissionResponse, error) {
	item, err := h.Create.Execute(ctx, commands.CreateSubmissionCommand{
		CreatorID:  creatorID,
		CampaignID: req.CampaignID,
		ContentURL: req.ContentURL,
		Caption:    req.Caption,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) ReviewSubmissionHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.ReviewSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	item, err := h.Review.Review(ctx, commands.ReviewCommand{
		ActorID:       actorID,
		SubmissionID:  submissionID,
		Action:        commands.ReviewAction(req.Action),
		Feedback:      req.Feedback,
		DeclineReason: req.DeclineReason,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) ResubmitHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.ResubmitRequest,
) (httptransport.SubmissionResponse, error) {
	item, err := h.Review.Resubmit(ctx, commands.ResubmitCommand{
		ActorID:      actorID,
		SubmissionID: submissionID,
		ContentURL:   req.ContentURL,
		Caption:      req.Caption,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) DesignateWinnerHandler(ctx context.Context, actorID string, submissionID string) (httptransport.SubmissionResponse, error) {
	item, err := h.Review.DesignateWinner(ctx, commands.DesignateWinnerCommand{
		ActorID:      actorID,
		SubmissionID: submissionID,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) GetSubmissionHandler(ctx context.Context, submissionID string) (httptransport.SubmissionResponse, error) {
	item, err := h.Queries.GetSubmission(ctx, submissionID)
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return httptransport.SubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) ListSubmissionsHandler(
	ctx context.Context,
	campaignID string,
	creatorID string,
	status string,
	winnerOnly bool,
) (httptransport.ListSubmissionsResponse, error) {
	items, err := h.Queries.ListSubmissions(ctx, queries.ListSubmissionsQuery{
		CampaignID: campaignID,
		CreatorID:  creatorID,
		Status:     status,
		WinnerOnly: winnerOnly,
	})
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	return httptransport.ListSubmissionsResponse{Items: mapSubmissions(items)}, nil
}

func (h Handler) BrandQueueHandler(ctx context.Context, brandID string, campaignID string) (httptransport.BrandQueueResponse, error) {
	queue, err := h.Queries.BrandQueue(ctx, brandID, campaignID)
	if err != nil {
		return httptransport.BrandQueueResponse{}, err
	}
	return httptransport.BrandQueueResponse{
		CampaignID:   queue.CampaignID,
		Pending:      mapSubmissions(queue.Pending),
		AwaitingRedo: mapSubmissions(queue.AwaitingRedo),
		Approved:     mapSubmissions(queue.Approved),
		Declined:     mapSubmissions(queue.Declined),
	}, nil
}

func mapSubmissions(items []entities.Submission) []httptransport.SubmissionDTO {
	result := make([]httptransport.SubmissionDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapSubmission(item))
	}
	return result
}

func mapSubmission(item entities.Submission) httptransport.SubmissionDTO {
	dto := httptransport.SubmissionDTO{
		SubmissionID:  item.SubmissionID,
		CampaignID:    item.CampaignID,
		CreatorID:     item.CreatorID,
		ContentURL:    item.ContentURL,
		Caption:       item.Caption,
		Status:        string(item.Status),
		RedoCount:     item.RedoCount,
		BrandFeedback: item.BrandFeedback,
		DeclineReason: item.DeclineReason,
		Winner:        item.Winner,
		SubmittedAt:   item.SubmittedAt.Format(time.RFC3339),
		CreatedAt:     item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.Format(time.RFC3339),
	}
	if item.FeedbackAt != nil {
		dto.FeedbackAt = item.FeedbackAt.Format(time.RFC3339)
	}
	if item.ReviewedAt != nil {
		dto.ReviewedAt = item.ReviewedAt.Format(time.RFC3339)
	}
	if item.WinnerDesignatedAt != nil {
		dto.WinnerAt = item.WinnerDesignatedAt.Format(time.RFC3339)
	}
	return dto
}

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

type ReviewAction string

const (
	ReviewActionApprove     ReviewAction = "approve"
	ReviewActionDecline     ReviewAction = "decline"
	ReviewActionRequestRedo ReviewAction = "request_redo"
)

type ReviewCommand struct {
	ActorID       string
	SubmissionID  string
	Action        ReviewAction
	Feedback      string
	DeclineReason string
}

type ResubmitCommand struct {
	ActorID      string
	SubmissionID string
	ContentURL   string
	Caption      string
}

type DesignateWinnerCommand struct {
	ActorID      string
	SubmissionID string
}

// ReviewSubmissionUseCase drives the submitted/redo_requested/approved/
// declined review machine. Approved and declined are terminal; the redo
// counter survives resubmission so the bound holds across rounds.
type ReviewSubmissionUseCase struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc ReviewSubmissionUseCase) Review(ctx context.Context, cmd ReviewCommand) (entities.Submission, error) {
	item, _, err := uc.loadForBrand(ctx, cmd.ActorID, cmd.SubmissionID)
	if err != nil {
		return entities.Submission{}, err
	}

	switch cmd.Action {
	case ReviewActionApprove:
		return uc.approve(ctx, item)
	case ReviewActionDecline:
		return uc.decline(ctx, item, cmd.DeclineReason)
	case ReviewActionRequestRedo:
		return uc.requestRedo(ctx, item, cmd.Feedback)
	default:
		return entities.Submission{}, domainerrors.ErrInvalidReviewAction
	}
}

func (uc ReviewSubmissionUseCase) approve(ctx context.Context, item entities.Submission) (entities.Submission, error) {
	if !entities.CanTransition(item.Status, entities.SubmissionStatusApproved) {
		return entities.Submission{}, domainerrors.ErrInvalidReviewState
	}
	expected := item.Status
	now := uc.Clock.Now().UTC()
	item.Status = entities.SubmissionStatusApproved
	item.ReviewedAt = &now
	item.UpdatedAt = now

	if err := uc.Repository.UpdateStatus(ctx, []entities.SubmissionStatus{expected}, item); err != nil {
		return entities.Submission{}, err
	}
	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "submission.approved", now, item.CampaignID, map[string]any{
		"submission_id": item.SubmissionID,
		"campaign_id":   item.CampaignID,
		"creator_id":    item.CreatorID,
	}); err != nil {
		return entities.Submission{}, err
	}
	uc.logReview(item, "submission approved", "submission_approved")
	return item, nil
}

func (uc ReviewSubmissionUseCase) decline(ctx context.Context, item entities.Submission, reason string) (entities.Submission, error) {
	if strings.TrimSpace(reason) == "" {
		return entities.Submission{}, domainerrors.ErrDeclineReasonRequired
	}
	if !entities.CanTransition(item.Status, entities.SubmissionStatusDeclined) {
		return entities.Submission{}, domainerrors.ErrInvalidReviewState
	}
	expected := item.Status
	now := uc.Clock.Now().UTC()
	item.Status = entities.SubmissionStatusDeclined
	item.DeclineReason = strings.TrimSpace(reason)
	item.ReviewedAt = &now
	item.UpdatedAt = now

	if err := uc.Repository.UpdateStatus(ctx, []entities.SubmissionStatus{expected}, item); err != nil {
		return entities.Submission{}, err
	}
	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "submission.declined", now, item.CampaignID, map[string]any{
		"submission_id":  item.SubmissionID,
		"campaign_id":    item.CampaignID,
		"creator_id":     item.CreatorID,
		"decline_reason": item.DeclineReason,
	}); err != nil {
		return entities.Submission{}, err
	}
	uc.logReview(item, "submission declined", "submission_declined")
	return item, nil
}

func (uc ReviewSubmissionUseCase) requestRedo(ctx context.Context, item entities.Submission, feedback string) (entities.Submission, error) {
	if strings.TrimSpace(feedback) == "" {
		return entities.Submission{}, domainerrors.ErrFeedbackRequired
	}
	if !entities.CanTransition(item.Status, entities.SubmissionStatusRedoRequested) {
		return entities.Submission{}, domainerrors.ErrInvalidReviewState
	}
	if !item.CanRequestRedo() {
		return entities.Submission{}, domainerrors.MaxRedoExceededError{
			RedoCount: item.RedoCount,
			Limit:     entities.MaxRedoCount,
		}
	}

	expected := item.Status
	now := uc.Clock.Now().UTC()
	item.Status = entities.SubmissionStatusRedoRequested
	item.RedoCount++
	item.BrandFeedback = strings.TrimSpace(feedback)
	item.FeedbackAt = &now
	item.UpdatedAt = now

	if err := uc.Repository.UpdateStatus(ctx, []entities.SubmissionStatus{expected}, item); err != nil {
		return entities.Submission{}, err
	}
	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "submission.redo_requested", now, item.CampaignID, map[string]any{
		"submission_id": item.SubmissionID,
		"campaign_id":   item.CampaignID,
		"creator_id":    item.CreatorID,
		"redo_count":    item.RedoCount,
	}); err != nil {
		return entities.Submission{}, err
	}
	uc.logReview(item, "redo requested", "submission_redo_requested")
	return item, nil
}

// Resubmit moves redo_requested content back to submitted with fresh
// material. The redo counter is deliberately not reset.
func (uc ReviewSubmissionUseCase) Resubmit(ctx context.Context, cmd ResubmitCommand) (entities.Submission, error) {
	contentURL := strings.TrimSpace(cmd.ContentURL)
	if contentURL == "" {
		return entities.Submission{}, domainerrors.ErrInvalidSubmissionInput
	}
	item, err := uc.Repository.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	if strings.TrimSpace(cmd.ActorID) != item.CreatorID {
		return entities.Submission{}, domainerrors.ErrUnauthorizedActor
	}
	if item.Status != entities.SubmissionStatusRedoRequested {
		return entities.Submission{}, domainerrors.ErrNotRedoRequested
	}

	now := uc.Clock.Now().UTC()
	item.Status = entities.SubmissionStatusSubmitted
	item.ContentURL = contentURL
	item.Caption = strings.TrimSpace(cmd.Caption)
	item.SubmittedAt = now
	item.UpdatedAt = now

	if err := uc.Repository.UpdateStatus(ctx, []entities.SubmissionStatus{entities.SubmissionStatusRedoRequested}, item); err != nil {
		return entities.Submission{}, err
	}
	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "submission.resubmitted", now, item.CampaignID, map[string]any{
		"submission_id": item.SubmissionID,
		"campaign_id":   item.CampaignID,
		"creator_id":    item.CreatorID,
		"redo_count":    item.RedoCount,
	}); err != nil {
		return entities.Submission{}, err
	}
	uc.logReview(item, "submission resubmitted", "submission_resubmitted")
	return item, nil
}

// DesignateWinner flips the orthogonal winner flag on an approved contest
// submission after the campaign has ended. No machine state changes.
func (uc ReviewSubmissionUseCase) DesignateWinner(ctx context.Context, cmd DesignateWinnerCommand) (entities.Submission, error) {
	item, campaign, err := uc.loadForBrand(ctx, cmd.ActorID, cmd.SubmissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if campaign.CampaignType != entities.CampaignTypeContest {
		return entities.Submission{}, domainerrors.ErrWinnerContestOnly
	}
	if !campaign.Ended() {
		return entities.Submission{}, domainerrors.ErrCampaignStillRunning
	}
	if item.Status != entities.SubmissionStatusApproved {
		return entities.Submission{}, domainerrors.ErrWinnerRequiresApproval
	}
	if item.Winner {
		return item, nil
	}

	now := uc.Clock.Now().UTC()
	item.Winner = true
	item.WinnerDesignatedAt = &now
	item.UpdatedAt = now

	if err := uc.Repository.UpdateStatus(ctx, []entities.SubmissionStatus{entities.SubmissionStatusApproved}, item); err != nil {
		return entities.Submission{}, err
	}
	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "submission.winner_designated", now, item.CampaignID, map[string]any{
		"submission_id": item.SubmissionID,
		"campaign_id":   item.CampaignID,
		"creator_id":    item.CreatorID,
	}); err != nil {
		return entities.Submission{}, err
	}
	uc.logReview(item, "winner designated", "submission_winner_designated")
	return item, nil
}

func (uc ReviewSubmissionUseCase) loadForBrand(ctx context.Context, actorID string, submissionID string) (entities.Submission, entities.Campaign, error) {
	item, err := uc.Repository.GetSubmission(ctx, strings.TrimSpace(submissionID))
	if err != nil {
		return entities.Submission{}, entities.Campaign{}, err
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, item.CampaignID)
	if err != nil {
		return entities.Submission{}, entities.Campaign{}, err
	}
	if strings.TrimSpace(actorID) != campaign.BrandID {
		return entities.Submission{}, entities.Campaign{}, domainerrors.ErrUnauthorizedActor
	}
	return item, campaign, nil
}

func (uc ReviewSubmissionUseCase) logReview(item entities.Submission, message string, event string) {
	application.ResolveLogger(uc.Logger).Info(message,
		"event", event,
		"module", "fulfillment/submission-service",
		"layer", "application",
		"submission_id", item.SubmissionID,
		"campaign_id", item.CampaignID,
		"status", string(item.Status),
		"redo_count", item.RedoCount,
	)
}

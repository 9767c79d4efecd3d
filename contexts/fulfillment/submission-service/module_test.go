package submissionservice_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	submissionservice "kolab/contexts/fulfillment/submission-service"
	"kolab/contexts/fulfillment/submission-service/application/commands"
	"kolab/contexts/fulfillment/submission-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/submission-service/domain/errors"
)

type gateFunc func(ctx context.Context, campaignID string, creatorID string) error

func (f gateFunc) CanSubmit(ctx context.Context, campaignID string, creatorID string) error {
	return f(ctx, campaignID, creatorID)
}

func dealCampaign() entities.Campaign {
	return entities.Campaign{
		CampaignID:   "campaign-1",
		BrandID:      "brand-1",
		Title:        "Review video",
		ProductType:  entities.ProductTypeDigital,
		CampaignType: entities.CampaignTypeDeal,
		Status:       entities.CampaignStatusActive,
		PayoutAmount: 100_000,
		Budget:       500_000,
	}
}

func contestCampaign(status entities.CampaignStatus) entities.Campaign {
	return entities.Campaign{
		CampaignID:   "campaign-2",
		BrandID:      "brand-1",
		Title:        "Best unboxing",
		ProductType:  entities.ProductTypeDigital,
		CampaignType: entities.CampaignTypeContest,
		Status:       status,
		PayoutAmount: 250_000,
		Budget:       250_000,
	}
}

func newModule(campaigns ...entities.Campaign) submissionservice.Module {
	return submissionservice.NewInMemoryModule(campaigns, nil, nil)
}

func submit(t *testing.T, module submissionservice.Module, campaignID string, creatorID string) entities.Submission {
	t.Helper()
	item, err := module.Create.Execute(context.Background(), commands.CreateSubmissionCommand{
		CreatorID:  creatorID,
		CampaignID: campaignID,
		ContentURL: "https://cdn.example.com/v1.mp4",
		Caption:    "first cut",
	})
	if err != nil {
		t.Fatalf("create submission failed: %v", err)
	}
	return item
}

func TestCreateRejectsInactiveCampaign(t *testing.T) {
	module := newModule(contestCampaign(entities.CampaignStatusJudging))

	_, err := module.Create.Execute(context.Background(), commands.CreateSubmissionCommand{
		CreatorID:  "creator-1",
		CampaignID: "campaign-2",
		ContentURL: "https://cdn.example.com/v1.mp4",
	})
	if !errors.Is(err, domainerrors.ErrCampaignNotActive) {
		t.Fatalf("expected campaign not active, got %v", err)
	}
}

func TestCreateConsultsFulfillmentGate(t *testing.T) {
	gateErr := errors.New("shipment still in transit")
	module := submissionservice.NewInMemoryModule(
		[]entities.Campaign{dealCampaign()},
		gateFunc(func(context.Context, string, string) error { return gateErr }),
		nil,
	)

	_, err := module.Create.Execute(context.Background(), commands.CreateSubmissionCommand{
		CreatorID:  "creator-1",
		CampaignID: "campaign-1",
		ContentURL: "https://cdn.example.com/v1.mp4",
	})
	if !errors.Is(err, gateErr) {
		t.Fatalf("gate error must pass through unchanged, got %v", err)
	}
}

func TestSecondActiveSubmissionRejected(t *testing.T) {
	module := newModule(dealCampaign())
	submit(t, module, "campaign-1", "creator-1")

	_, err := module.Create.Execute(context.Background(), commands.CreateSubmissionCommand{
		CreatorID:  "creator-1",
		CampaignID: "campaign-1",
		ContentURL: "https://cdn.example.com/v2.mp4",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate submission, got %v", err)
	}
}

func TestDeclineFreesTheSlot(t *testing.T) {
	module := newModule(dealCampaign())
	item := submit(t, module, "campaign-1", "creator-1")

	_, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:       "brand-1",
		SubmissionID:  item.SubmissionID,
		Action:        commands.ReviewActionDecline,
		DeclineReason: "off brief",
	})
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	if _, err := module.Create.Execute(context.Background(), commands.CreateSubmissionCommand{
		CreatorID:  "creator-1",
		CampaignID: "campaign-1",
		ContentURL: "https://cdn.example.com/v2.mp4",
	}); err != nil {
		t.Fatalf("declined submission should free the slot: %v", err)
	}
}

func TestDeclineRequiresReason(t *testing.T) {
	module := newModule(dealCampaign())
	item := submit(t, module, "campaign-1", "creator-1")

	_, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionDecline,
	})
	if !errors.Is(err, domainerrors.ErrDeclineReasonRequired) {
		t.Fatalf("expected decline reason required, got %v", err)
	}
}

func TestRedoBoundHoldsAcrossResubmissions(t *testing.T) {
	module := newModule(dealCampaign())
	item := submit(t, module, "campaign-1", "creator-1")

	for round := 1; round <= 3; round++ {
		redone, err := module.Review.Review(context.Background(), commands.ReviewCommand{
			ActorID:      "brand-1",
			SubmissionID: item.SubmissionID,
			Action:       commands.ReviewActionRequestRedo,
			Feedback:     fmt.Sprintf("tighten the intro, round %d", round),
		})
		if err != nil {
			t.Fatalf("redo round %d failed: %v", round, err)
		}
		if redone.RedoCount != round {
			t.Fatalf("redo round %d: count = %d", round, redone.RedoCount)
		}

		resubmitted, err := module.Review.Resubmit(context.Background(), commands.ResubmitCommand{
			ActorID:      "creator-1",
			SubmissionID: item.SubmissionID,
			ContentURL:   fmt.Sprintf("https://cdn.example.com/v%d.mp4", round+1),
		})
		if err != nil {
			t.Fatalf("resubmit round %d failed: %v", round, err)
		}
		if resubmitted.Status != entities.SubmissionStatusSubmitted {
			t.Fatalf("resubmit round %d: status = %s", round, resubmitted.Status)
		}
		if resubmitted.RedoCount != round {
			t.Fatalf("resubmit must not reset the counter, round %d: count = %d", round, resubmitted.RedoCount)
		}
	}

	_, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionRequestRedo,
		Feedback:     "one more pass",
	})
	if !errors.Is(err, domainerrors.ErrMaxRedoExceeded) {
		t.Fatalf("fourth redo must be refused, got %v", err)
	}
	var detail domainerrors.MaxRedoExceededError
	if !errors.As(err, &detail) || detail.RedoCount != 3 || detail.Limit != 3 {
		t.Fatalf("limit detail wrong: %+v", detail)
	}

	// The refused request leaves the submission approvable as-is.
	current, err := module.Queries.GetSubmission(context.Background(), item.SubmissionID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.Status != entities.SubmissionStatusSubmitted || current.RedoCount != 3 {
		t.Fatalf("submission changed by refused redo: %+v", current)
	}
	if _, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionApprove,
	}); err != nil {
		t.Fatalf("approve after exhausted redos failed: %v", err)
	}
}

func TestApprovedIsTerminal(t *testing.T) {
	module := newModule(dealCampaign())
	item := submit(t, module, "campaign-1", "creator-1")

	approved, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionApprove,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ReviewedAt == nil {
		t.Fatal("reviewed_at not stamped")
	}

	_, err = module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionRequestRedo,
		Feedback:     "never mind, redo it",
	})
	if !errors.Is(err, domainerrors.ErrInvalidReviewState) {
		t.Fatalf("redo after approval must fail, got %v", err)
	}
}

func TestReviewRejectsForeignBrand(t *testing.T) {
	module := newModule(dealCampaign())
	item := submit(t, module, "campaign-1", "creator-1")

	_, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-2",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionApprove,
	})
	if !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("expected unauthorized actor, got %v", err)
	}
}

func TestResubmitOnlyByOwningCreator(t *testing.T) {
	module := newModule(dealCampaign())
	item := submit(t, module, "campaign-1", "creator-1")

	if _, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionRequestRedo,
		Feedback:     "swap the thumbnail",
	}); err != nil {
		t.Fatalf("redo failed: %v", err)
	}

	_, err := module.Review.Resubmit(context.Background(), commands.ResubmitCommand{
		ActorID:      "creator-2",
		SubmissionID: item.SubmissionID,
		ContentURL:   "https://cdn.example.com/stolen.mp4",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("expected unauthorized actor, got %v", err)
	}
}

func TestWinnerRules(t *testing.T) {
	module := newModule(contestCampaign(entities.CampaignStatusActive), dealCampaign())

	item := submit(t, module, "campaign-2", "creator-1")
	if _, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
		Action:       commands.ReviewActionApprove,
	}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	_, err := module.Review.DesignateWinner(context.Background(), commands.DesignateWinnerCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
	})
	if !errors.Is(err, domainerrors.ErrCampaignStillRunning) {
		t.Fatalf("winner before campaign end must fail, got %v", err)
	}

	module.Store.SeedCampaign(contestCampaign(entities.CampaignStatusJudging))
	winner, err := module.Review.DesignateWinner(context.Background(), commands.DesignateWinnerCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
	})
	if err != nil {
		t.Fatalf("designate winner failed: %v", err)
	}
	if !winner.Winner || winner.Status != entities.SubmissionStatusApproved {
		t.Fatalf("winner must stay approved with flag set: %+v", winner)
	}

	// Designating again is a no-op, not an error.
	again, err := module.Review.DesignateWinner(context.Background(), commands.DesignateWinnerCommand{
		ActorID:      "brand-1",
		SubmissionID: item.SubmissionID,
	})
	if err != nil || again.WinnerDesignatedAt == nil {
		t.Fatalf("repeat designation should be idempotent: %v", err)
	}

	dealItem := submit(t, module, "campaign-1", "creator-2")
	if _, err := module.Review.Review(context.Background(), commands.ReviewCommand{
		ActorID:      "brand-1",
		SubmissionID: dealItem.SubmissionID,
		Action:       commands.ReviewActionApprove,
	}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	_, err = module.Review.DesignateWinner(context.Background(), commands.DesignateWinnerCommand{
		ActorID:      "brand-1",
		SubmissionID: dealItem.SubmissionID,
	})
	if !errors.Is(err, domainerrors.ErrWinnerContestOnly) {
		t.Fatalf("deal campaigns have no winners, got %v", err)
	}
}

func TestApprovedForSettlementFollowsCampaignType(t *testing.T) {
	module := newModule(contestCampaign(entities.CampaignStatusJudging), dealCampaign())

	first := submit(t, module, "campaign-2", "creator-1")
	second := submit(t, module, "campaign-2", "creator-2")
	for _, id := range []string{first.SubmissionID, second.SubmissionID} {
		if _, err := module.Review.Review(context.Background(), commands.ReviewCommand{
			ActorID:      "brand-1",
			SubmissionID: id,
			Action:       commands.ReviewActionApprove,
		}); err != nil {
			t.Fatalf("approve failed: %v", err)
		}
	}
	if _, err := module.Review.DesignateWinner(context.Background(), commands.DesignateWinnerCommand{
		ActorID:      "brand-1",
		SubmissionID: first.SubmissionID,
	}); err != nil {
		t.Fatalf("designate winner failed: %v", err)
	}

	eligible, err := module.Queries.ApprovedForSettlement(context.Background(), "campaign-2")
	if err != nil {
		t.Fatalf("settlement query failed: %v", err)
	}
	if len(eligible) != 1 || eligible[0].SubmissionID != first.SubmissionID {
		t.Fatalf("contest settlement must cover winners only, got %d items", len(eligible))
	}
}

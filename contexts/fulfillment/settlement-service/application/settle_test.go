package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"kolab/contexts/fulfillment/settlement-service/application"
	domainerrors "kolab/contexts/fulfillment/settlement-service/domain/errors"
	"kolab/contexts/fulfillment/settlement-service/ports"
)

type fakeDirectory map[string]ports.Campaign

func (f fakeDirectory) GetCampaign(_ context.Context, campaignID string) (ports.Campaign, error) {
	campaign, exists := f[campaignID]
	if !exists {
		return ports.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	return campaign, nil
}

type fakeSubmissions map[string]ports.Submission

func (f fakeSubmissions) GetSubmission(_ context.Context, submissionID string) (ports.Submission, error) {
	submission, exists := f[submissionID]
	if !exists {
		return ports.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (f fakeSubmissions) ListApproved(_ context.Context, campaignID string) ([]ports.Submission, error) {
	var approved []ports.Submission
	for _, submission := range f {
		if submission.CampaignID == campaignID && submission.Approved {
			approved = append(approved, submission)
		}
	}
	return approved, nil
}

// fakeEscrow releases at most once per (campaign, creator) the way the
// ledger does by transaction reference.
type fakeEscrow struct {
	released map[string]string
	calls    int
}

func (f *fakeEscrow) ReleaseEscrow(_ context.Context, req ports.ReleaseRequest) (string, error) {
	if f.released == nil {
		f.released = make(map[string]string)
	}
	f.calls++
	key := req.CampaignID + ":" + req.CreatorUserID
	if transactionID, replayed := f.released[key]; replayed {
		return transactionID, nil
	}
	transactionID := fmt.Sprintf("txn-%d", len(f.released)+1)
	f.released[key] = transactionID
	return transactionID, nil
}

type fakeApplications struct {
	completed []string
}

func (f *fakeApplications) CompleteApplication(_ context.Context, campaignID string, creatorID string) error {
	f.completed = append(f.completed, campaignID+":"+creatorID)
	return nil
}

func newUseCase(campaigns fakeDirectory, submissions fakeSubmissions) (application.SettlementUseCase, *fakeEscrow, *fakeApplications) {
	escrow := &fakeEscrow{}
	applications := &fakeApplications{}
	return application.SettlementUseCase{
		Campaigns:    campaigns,
		Submissions:  submissions,
		Applications: applications,
		Escrow:       escrow,
		Logger:       nil,
	}, escrow, applications
}

func endedDeal() ports.Campaign {
	return ports.Campaign{
		CampaignID:   "campaign-1",
		BrandID:      "brand-1",
		Title:        "Review video",
		CampaignType: ports.CampaignTypeDeal,
		Status:       "judging",
		PayoutAmount: 100_000,
	}
}

func endedContest() ports.Campaign {
	return ports.Campaign{
		CampaignID:   "campaign-2",
		BrandID:      "brand-1",
		Title:        "Best unboxing",
		CampaignType: ports.CampaignTypeContest,
		Status:       "completed",
		PayoutAmount: 250_000,
	}
}

func TestReleaseForSubmissionRequiresEndedCampaign(t *testing.T) {
	campaign := endedDeal()
	campaign.Status = "active"
	uc, escrow, _ := newUseCase(
		fakeDirectory{"campaign-1": campaign},
		fakeSubmissions{"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-1", CreatorID: "creator-1", Approved: true}},
	)

	_, err := uc.ReleaseForSubmission(context.Background(), application.ReleaseForSubmissionCommand{SubmissionID: "sub-1"})
	if !errors.Is(err, domainerrors.ErrCampaignStillRunning) {
		t.Fatalf("expected campaign still running, got %v", err)
	}
	if escrow.calls != 0 {
		t.Fatal("no escrow call expected")
	}
}

func TestReleaseForSubmissionRequiresApproval(t *testing.T) {
	uc, _, _ := newUseCase(
		fakeDirectory{"campaign-1": endedDeal()},
		fakeSubmissions{"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-1", CreatorID: "creator-1"}},
	)

	_, err := uc.ReleaseForSubmission(context.Background(), application.ReleaseForSubmissionCommand{SubmissionID: "sub-1"})
	if !errors.Is(err, domainerrors.ErrSubmissionNotApproved) {
		t.Fatalf("expected not approved, got %v", err)
	}
}

func TestContestReleaseRequiresWinnerFlag(t *testing.T) {
	uc, _, _ := newUseCase(
		fakeDirectory{"campaign-2": endedContest()},
		fakeSubmissions{"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-2", CreatorID: "creator-1", Approved: true}},
	)

	_, err := uc.ReleaseForSubmission(context.Background(), application.ReleaseForSubmissionCommand{SubmissionID: "sub-1"})
	if !errors.Is(err, domainerrors.ErrWinnerRequired) {
		t.Fatalf("expected winner required, got %v", err)
	}
}

func TestReleaseMarksApplicationCompleted(t *testing.T) {
	uc, escrow, applications := newUseCase(
		fakeDirectory{"campaign-1": endedDeal()},
		fakeSubmissions{"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-1", CreatorID: "creator-1", Approved: true}},
	)

	transactionID, err := uc.ReleaseForSubmission(context.Background(), application.ReleaseForSubmissionCommand{SubmissionID: "sub-1"})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if transactionID == "" {
		t.Fatal("missing transaction id")
	}
	if escrow.calls != 1 {
		t.Fatalf("escrow calls = %d", escrow.calls)
	}
	if len(applications.completed) != 1 || applications.completed[0] != "campaign-1:creator-1" {
		t.Fatalf("application not completed: %v", applications.completed)
	}
}

func TestCompleteCampaignAuthorizesBrand(t *testing.T) {
	uc, _, _ := newUseCase(fakeDirectory{"campaign-1": endedDeal()}, fakeSubmissions{})

	_, err := uc.CompleteCampaign(context.Background(), application.CompleteCampaignCommand{
		ActorID:    "brand-2",
		CampaignID: "campaign-1",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("expected unauthorized actor, got %v", err)
	}
}

func TestDealSweepPaysEveryApprovedSubmission(t *testing.T) {
	uc, escrow, _ := newUseCase(
		fakeDirectory{"campaign-1": endedDeal()},
		fakeSubmissions{
			"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-1", CreatorID: "creator-1", Approved: true},
			"sub-2": {SubmissionID: "sub-2", CampaignID: "campaign-1", CreatorID: "creator-2", Approved: true},
			"sub-3": {SubmissionID: "sub-3", CampaignID: "campaign-1", CreatorID: "creator-3"},
		},
	)

	report, err := uc.CompleteCampaign(context.Background(), application.CompleteCampaignCommand{
		ActorID:    "brand-1",
		CampaignID: "campaign-1",
	})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.ReleasedCount != 2 || escrow.calls != 2 {
		t.Fatalf("deal sweep must pay every approved submission: %+v", report)
	}
}

func TestContestSweepPaysWinnerOnly(t *testing.T) {
	uc, escrow, _ := newUseCase(
		fakeDirectory{"campaign-2": endedContest()},
		fakeSubmissions{
			"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-2", CreatorID: "creator-1", Approved: true, Winner: true},
			"sub-2": {SubmissionID: "sub-2", CampaignID: "campaign-2", CreatorID: "creator-2", Approved: true},
		},
	)

	report, err := uc.Sweep(context.Background(), "campaign-2")
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.ReleasedCount != 1 || escrow.calls != 1 {
		t.Fatalf("contest sweep must pay the winner only: %+v", report)
	}
}

func TestSweepAfterEventReleaseIsIdempotent(t *testing.T) {
	uc, escrow, _ := newUseCase(
		fakeDirectory{"campaign-2": endedContest()},
		fakeSubmissions{
			"sub-1": {SubmissionID: "sub-1", CampaignID: "campaign-2", CreatorID: "creator-1", Approved: true, Winner: true},
		},
	)

	first, err := uc.ReleaseForSubmission(context.Background(), application.ReleaseForSubmissionCommand{SubmissionID: "sub-1"})
	if err != nil {
		t.Fatalf("event release failed: %v", err)
	}
	report, err := uc.Sweep(context.Background(), "campaign-2")
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.ReleasedCount != 1 || report.TransactionIDs[0] != first {
		t.Fatalf("sweep must replay the original release: %+v", report)
	}
	if len(escrow.released) != 1 {
		t.Fatalf("money moved twice: %v", escrow.released)
	}
}

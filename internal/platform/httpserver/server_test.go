package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	ledgerservice "kolab/contexts/finance-core/ledger-service"
	ledgerapp "kolab/contexts/finance-core/ledger-service/application"
	applicationservice "kolab/contexts/fulfillment/application-service"
	applicationcommands "kolab/contexts/fulfillment/application-service/application/commands"
	applicationqueries "kolab/contexts/fulfillment/application-service/application/queries"
	applicationentities "kolab/contexts/fulfillment/application-service/domain/entities"
	applicationerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	applicationports "kolab/contexts/fulfillment/application-service/ports"
	settlementservice "kolab/contexts/fulfillment/settlement-service"
	settlementports "kolab/contexts/fulfillment/settlement-service/ports"
	submissionservice "kolab/contexts/fulfillment/submission-service"
	submissionqueries "kolab/contexts/fulfillment/submission-service/application/queries"
	submissionentities "kolab/contexts/fulfillment/submission-service/domain/entities"
)

// Campaign fixtures shared by the route tests. The same three campaigns are
// projected into both the application and submission stores, keyed by id.
const (
	testBrand      = "brand-1"
	dealCampaignID = "campaign-deal"
	physCampaignID = "campaign-physical"
	contCampaignID = "campaign-contest"
	dealPayout     = int64(250)
	physicalPayout = int64(100)
	contestPayout  = int64(400)
)

func applicationFixtures() []applicationentities.Campaign {
	return []applicationentities.Campaign{
		{
			CampaignID:   dealCampaignID,
			BrandID:      testBrand,
			Title:        "UGC Deal",
			ProductType:  applicationentities.ProductTypeDigital,
			CampaignType: applicationentities.CampaignTypeDeal,
			Status:       applicationentities.CampaignStatusActive,
			PayoutAmount: dealPayout,
			Budget:       1000,
		},
		{
			CampaignID:   physCampaignID,
			BrandID:      testBrand,
			Title:        "Unboxing Deal",
			ProductType:  applicationentities.ProductTypePhysical,
			CampaignType: applicationentities.CampaignTypeDeal,
			Status:       applicationentities.CampaignStatusActive,
			PayoutAmount: physicalPayout,
			Budget:       500,
		},
		{
			CampaignID:   contCampaignID,
			BrandID:      testBrand,
			Title:        "Clip Contest",
			ProductType:  applicationentities.ProductTypeDigital,
			CampaignType: applicationentities.CampaignTypeContest,
			Status:       applicationentities.CampaignStatusActive,
			PayoutAmount: contestPayout,
			Budget:       2000,
		},
	}
}

func submissionFixtures() []submissionentities.Campaign {
	result := make([]submissionentities.Campaign, 0, 3)
	for _, campaign := range applicationFixtures() {
		result = append(result, submissionentities.Campaign{
			CampaignID:   campaign.CampaignID,
			BrandID:      campaign.BrandID,
			Title:        campaign.Title,
			ProductType:  submissionentities.ProductType(campaign.ProductType),
			CampaignType: submissionentities.CampaignType(campaign.CampaignType),
			Status:       submissionentities.CampaignStatus(campaign.Status),
			PayoutAmount: campaign.PayoutAmount,
			Budget:       campaign.Budget,
		})
	}
	return result
}

type testEnv struct {
	server       *Server
	ledger       ledgerservice.Module
	applications applicationservice.Module
	submissions  submissionservice.Module
}

func newTestEnv() *testEnv {
	logger := slog.Default()
	ledger := ledgerservice.NewInMemoryModule(logger)
	applications := applicationservice.NewInMemoryModule(applicationFixtures(), logger)
	submissions := submissionservice.NewInMemoryModule(submissionFixtures(), applications.Queries, logger)
	settlement := settlementservice.NewModule(settlementservice.Dependencies{
		Campaigns:    testCampaignDirectory{campaigns: applications.Store},
		Submissions:  testSubmissionDirectory{queries: submissions.Queries},
		Applications: testApplicationCompleter{lifecycle: applications.Lifecycle, queries: applications.Queries},
		Escrow:       testEscrow{ledger: ledger.Service},
		Logger:       logger,
	})

	server := New(ledger, applications, submissions, settlement, nil, logger, ":0")
	return &testEnv{
		server:       server,
		ledger:       ledger,
		applications: applications,
		submissions:  submissions,
	}
}

// endCampaign flips both stores' projections to a terminal status so
// settlement preconditions hold.
func (e *testEnv) endCampaign(campaignID string) {
	for _, campaign := range applicationFixtures() {
		if campaign.CampaignID == campaignID {
			campaign.Status = applicationentities.CampaignStatusCompleted
			e.applications.Store.SeedCampaign(campaign)
		}
	}
	for _, campaign := range submissionFixtures() {
		if campaign.CampaignID == campaignID {
			campaign.Status = submissionentities.CampaignStatusCompleted
			e.submissions.Store.SeedCampaign(campaign)
		}
	}
}

func (e *testEnv) do(t *testing.T, method string, target string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, method, target, userID, "member", body)
}

func (e *testEnv) doAs(t *testing.T, method string, target string, userID string, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
		req.Header.Set("X-User-Role", role)
	}
	rr := httptest.NewRecorder()
	e.server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rr.Body.String())
	}
}

// Settlement port adapters over the in-memory modules. The composition root
// wires the same shapes over the postgres-backed modules.

type testCampaignDirectory struct {
	campaigns applicationports.CampaignDirectory
}

func (a testCampaignDirectory) GetCampaign(ctx context.Context, campaignID string) (settlementports.Campaign, error) {
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

type testSubmissionDirectory struct {
	queries submissionqueries.QueryUseCase
}

func (a testSubmissionDirectory) GetSubmission(ctx context.Context, submissionID string) (settlementports.Submission, error) {
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

func (a testSubmissionDirectory) ListApproved(ctx context.Context, campaignID string) ([]settlementports.Submission, error) {
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

type testApplicationCompleter struct {
	lifecycle applicationcommands.LifecycleUseCase
	queries   applicationqueries.QueryUseCase
}

func (a testApplicationCompleter) CompleteApplication(ctx context.Context, campaignID string, creatorID string) error {
	items, err := a.queries.ListApplications(ctx, applicationqueries.ListApplicationsQuery{
		CampaignID: campaignID,
		CreatorID:  creatorID,
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	_, err = a.lifecycle.Complete(ctx, applicationcommands.CompleteCommand{
		ApplicationID: items[0].ApplicationID,
	})
	if errors.Is(err, applicationerrors.ErrInvalidStatusTransition) {
		return nil
	}
	return err
}

type testEscrow struct {
	ledger ledgerapp.Service
}

func (a testEscrow) ReleaseEscrow(ctx context.Context, req settlementports.ReleaseRequest) (string, error) {
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

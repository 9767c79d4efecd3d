package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	ledgerhttp "kolab/contexts/finance-core/ledger-service/transport/http"
	applicationhttp "kolab/contexts/fulfillment/application-service/transport/http"
	settlementhttp "kolab/contexts/fulfillment/settlement-service/transport/http"
	submissionhttp "kolab/contexts/fulfillment/submission-service/transport/http"
)

func (e *testEnv) mustDo(t *testing.T, method string, target string, userID string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	rr := e.do(t, method, target, userID, body)
	if rr.Code != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d body=%s", method, target, wantStatus, rr.Code, rr.Body.String())
	}
	return rr
}

func (e *testEnv) walletBalance(t *testing.T, userID string) (int64, int64) {
	t.Helper()
	rr := e.mustDo(t, http.MethodGet, "/wallet", userID, nil, http.StatusOK)
	var resp ledgerhttp.GetWalletResponse
	decodeJSON(t, rr, &resp)
	return resp.Wallet.Balance, resp.Wallet.PendingBalance
}

func (e *testEnv) submit(t *testing.T, creatorID string, campaignID string, contentURL string) string {
	t.Helper()
	rr := e.mustDo(t, http.MethodPost, "/submissions", creatorID, submissionhttp.CreateSubmissionRequest{
		CampaignID: campaignID,
		ContentURL: contentURL,
	}, http.StatusCreated)
	var resp submissionhttp.SubmissionResponse
	decodeJSON(t, rr, &resp)
	return resp.Submission.SubmissionID
}

func TestDealCampaignSettlesEndToEnd(t *testing.T) {
	env := newTestEnv()

	env.mustDo(t, http.MethodPost, "/wallet/deposits", testBrand, ledgerhttp.DepositRequest{Amount: 1000}, http.StatusCreated)
	env.mustDo(t, http.MethodPost, "/escrow/hold", testBrand, ledgerhttp.HoldEscrowRequest{
		CampaignID: dealCampaignID,
		Amount:     500,
	}, http.StatusCreated)

	rr := env.mustDo(t, http.MethodPost, "/applications", "creator-1", applicationhttp.CreateApplicationRequest{
		CampaignID: dealCampaignID,
	}, http.StatusCreated)
	var appResp applicationhttp.ApplicationResponse
	decodeJSON(t, rr, &appResp)
	applicationID := appResp.Application.ApplicationID

	env.mustDo(t, http.MethodPost, "/applications/"+applicationID+"/hire", testBrand, nil, http.StatusOK)

	submissionID := env.submit(t, "creator-1", dealCampaignID, "https://cdn.kolab.dev/clips/deal-1.mp4")
	env.mustDo(t, http.MethodPost, "/submissions/"+submissionID+"/review", testBrand, submissionhttp.ReviewSubmissionRequest{Action: "approve"}, http.StatusOK)

	env.endCampaign(dealCampaignID)
	rr = env.mustDo(t, http.MethodPost, "/campaigns/"+dealCampaignID+"/complete", testBrand, nil, http.StatusOK)
	var report settlementhttp.SettlementReportResponse
	decodeJSON(t, rr, &report)
	if report.ReleasedCount != 1 {
		t.Fatalf("expected 1 release, got %d", report.ReleasedCount)
	}

	creatorBalance, _ := env.walletBalance(t, "creator-1")
	if creatorBalance != dealPayout {
		t.Fatalf("expected creator balance %d, got %d", dealPayout, creatorBalance)
	}
	brandBalance, brandPending := env.walletBalance(t, testBrand)
	if brandBalance != 500 || brandPending != 500-dealPayout {
		t.Fatalf("expected brand wallet 500/%d, got %d/%d", 500-dealPayout, brandBalance, brandPending)
	}

	rr = env.mustDo(t, http.MethodGet, "/applications/"+applicationID, testBrand, nil, http.StatusOK)
	decodeJSON(t, rr, &appResp)
	if appResp.Application.Status != "completed" {
		t.Fatalf("expected application completed, got %q", appResp.Application.Status)
	}

	// Repeating the sweep must not move money twice.
	env.mustDo(t, http.MethodPost, "/campaigns/"+dealCampaignID+"/complete", testBrand, nil, http.StatusOK)
	creatorBalance, _ = env.walletBalance(t, "creator-1")
	if creatorBalance != dealPayout {
		t.Fatalf("expected creator balance %d after replay, got %d", dealPayout, creatorBalance)
	}
}

func TestShippingGateBlocksPhysicalSubmissions(t *testing.T) {
	env := newTestEnv()

	rr := env.mustDo(t, http.MethodPost, "/applications", "creator-1", applicationhttp.CreateApplicationRequest{
		CampaignID: physCampaignID,
	}, http.StatusCreated)
	var appResp applicationhttp.ApplicationResponse
	decodeJSON(t, rr, &appResp)
	applicationID := appResp.Application.ApplicationID
	env.mustDo(t, http.MethodPost, "/applications/"+applicationID+"/hire", testBrand, nil, http.StatusOK)

	rr = env.do(t, http.MethodPost, "/submissions", "creator-1", submissionhttp.CreateSubmissionRequest{
		CampaignID: physCampaignID,
		ContentURL: "https://cdn.kolab.dev/clips/unboxing-1.mp4",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	var locked submissionhttp.ErrorResponse
	decodeJSON(t, rr, &locked)
	if locked.Code != "shipping_gate_locked" {
		t.Fatalf("expected shipping_gate_locked, got %q", locked.Code)
	}
	detail, ok := locked.Detail.(map[string]any)
	if !ok || detail["shipping_status"] != "needs_address" {
		t.Fatalf("expected needs_address detail, got %v", locked.Detail)
	}

	env.mustDo(t, http.MethodPatch, "/applications/"+applicationID+"/shipping", testBrand, applicationhttp.UpdateShippingRequest{Status: "processing"}, http.StatusOK)

	rr = env.do(t, http.MethodPatch, "/applications/"+applicationID+"/shipping", testBrand, applicationhttp.UpdateShippingRequest{Status: "shipped"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without courier, got %d body=%s", rr.Code, rr.Body.String())
	}

	env.mustDo(t, http.MethodPatch, "/applications/"+applicationID+"/shipping", testBrand, applicationhttp.UpdateShippingRequest{
		Status:         "shipped",
		CourierName:    "JNE",
		TrackingNumber: "JNE-9090",
	}, http.StatusOK)

	rr = env.do(t, http.MethodPost, "/submissions", "creator-1", submissionhttp.CreateSubmissionRequest{
		CampaignID: physCampaignID,
		ContentURL: "https://cdn.kolab.dev/clips/unboxing-1.mp4",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected gate still locked, got %d body=%s", rr.Code, rr.Body.String())
	}

	env.mustDo(t, http.MethodPatch, "/applications/"+applicationID+"/shipping", "creator-1", applicationhttp.UpdateShippingRequest{Status: "delivered"}, http.StatusOK)

	env.submit(t, "creator-1", physCampaignID, "https://cdn.kolab.dev/clips/unboxing-1.mp4")
}

func TestContestSettlementPaysWinnerOnly(t *testing.T) {
	env := newTestEnv()

	env.mustDo(t, http.MethodPost, "/wallet/deposits", testBrand, ledgerhttp.DepositRequest{Amount: 1000}, http.StatusCreated)
	env.mustDo(t, http.MethodPost, "/escrow/hold", testBrand, ledgerhttp.HoldEscrowRequest{
		CampaignID: contCampaignID,
		Amount:     contestPayout,
	}, http.StatusCreated)

	first := env.submit(t, "creator-1", contCampaignID, "https://cdn.kolab.dev/clips/entry-1.mp4")
	second := env.submit(t, "creator-2", contCampaignID, "https://cdn.kolab.dev/clips/entry-2.mp4")
	env.mustDo(t, http.MethodPost, "/submissions/"+first+"/review", testBrand, submissionhttp.ReviewSubmissionRequest{Action: "approve"}, http.StatusOK)
	env.mustDo(t, http.MethodPost, "/submissions/"+second+"/review", testBrand, submissionhttp.ReviewSubmissionRequest{Action: "approve"}, http.StatusOK)

	rr := env.do(t, http.MethodPost, "/submissions/"+second+"/winner", testBrand, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 while campaign runs, got %d body=%s", rr.Code, rr.Body.String())
	}

	env.endCampaign(contCampaignID)
	rr = env.mustDo(t, http.MethodPost, "/submissions/"+second+"/winner", testBrand, nil, http.StatusOK)
	var winner submissionhttp.SubmissionResponse
	decodeJSON(t, rr, &winner)
	if !winner.Submission.Winner {
		t.Fatalf("expected winner flag set")
	}

	rr = env.mustDo(t, http.MethodPost, "/campaigns/"+contCampaignID+"/complete", testBrand, nil, http.StatusOK)
	var report settlementhttp.SettlementReportResponse
	decodeJSON(t, rr, &report)
	if report.ReleasedCount != 1 {
		t.Fatalf("expected winner-only release, got %d", report.ReleasedCount)
	}

	winnerBalance, _ := env.walletBalance(t, "creator-2")
	if winnerBalance != contestPayout {
		t.Fatalf("expected winner balance %d, got %d", contestPayout, winnerBalance)
	}
	rr = env.do(t, http.MethodGet, "/wallet", "creator-1", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected no wallet for non-winner, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRedoLimitSurfacesDetailOverHTTP(t *testing.T) {
	env := newTestEnv()

	submissionID := env.submit(t, "creator-1", dealCampaignID, "https://cdn.kolab.dev/clips/deal-1.mp4")
	for round := 0; round < 3; round++ {
		env.mustDo(t, http.MethodPost, "/submissions/"+submissionID+"/review", testBrand, submissionhttp.ReviewSubmissionRequest{
			Action:   "request_redo",
			Feedback: "tighten the hook",
		}, http.StatusOK)
		env.mustDo(t, http.MethodPost, "/submissions/"+submissionID+"/resubmit", "creator-1", submissionhttp.ResubmitRequest{
			ContentURL: "https://cdn.kolab.dev/clips/deal-1-v2.mp4",
		}, http.StatusOK)
	}

	rr := env.do(t, http.MethodPost, "/submissions/"+submissionID+"/review", testBrand, submissionhttp.ReviewSubmissionRequest{
		Action:   "request_redo",
		Feedback: "one more pass",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp submissionhttp.ErrorResponse
	decodeJSON(t, rr, &resp)
	if resp.Code != "max_redo_exceeded" {
		t.Fatalf("expected max_redo_exceeded, got %q", resp.Code)
	}
	detail, ok := resp.Detail.(map[string]any)
	if !ok || detail["redo_count"] != float64(3) || detail["limit"] != float64(3) {
		t.Fatalf("expected redo detail 3/3, got %v", resp.Detail)
	}
}

func TestEscrowHoldRejectsOverdraft(t *testing.T) {
	env := newTestEnv()

	env.mustDo(t, http.MethodPost, "/wallet/deposits", testBrand, ledgerhttp.DepositRequest{Amount: 100}, http.StatusCreated)
	rr := env.do(t, http.MethodPost, "/escrow/hold", testBrand, ledgerhttp.HoldEscrowRequest{
		CampaignID: dealCampaignID,
		Amount:     500,
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp ledgerhttp.ErrorResponse
	decodeJSON(t, rr, &resp)
	if resp.Code != "insufficient_funds" {
		t.Fatalf("expected insufficient_funds, got %q", resp.Code)
	}
	detail, ok := resp.Detail.(map[string]any)
	if !ok || detail["required"] != float64(500) || detail["available"] != float64(100) {
		t.Fatalf("expected funds detail 500/100, got %v", resp.Detail)
	}
}

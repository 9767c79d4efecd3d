package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	ledgerservice "kolab/contexts/finance-core/ledger-service"
	applicationservice "kolab/contexts/fulfillment/application-service"
	settlementservice "kolab/contexts/fulfillment/settlement-service"
	submissionservice "kolab/contexts/fulfillment/submission-service"
	"kolab/internal/platform/auth"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "kolab/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	tokens       *auth.TokenIssuer
	ledger       ledgerservice.Module
	applications applicationservice.Module
	submissions  submissionservice.Module
	settlement   settlementservice.Module
}

func New(
	ledger ledgerservice.Module,
	applications applicationservice.Module,
	submissions submissionservice.Module,
	settlement settlementservice.Module,
	tokens *auth.TokenIssuer,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		tokens:       tokens,
		ledger:       ledger,
		applications: applications,
		submissions:  submissions,
		settlement:   settlement,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /applications", s.handleCreateApplication)
	s.mux.HandleFunc("GET /applications", s.handleListApplications)
	s.mux.HandleFunc("GET /applications/{application_id}", s.handleGetApplication)
	s.mux.HandleFunc("POST /applications/{application_id}/hire", s.handleHire)
	s.mux.HandleFunc("POST /applications/{application_id}/shortlist", s.handleShortlist)
	s.mux.HandleFunc("POST /applications/{application_id}/reject", s.handleRejectApplication)
	s.mux.HandleFunc("PATCH /applications/{application_id}/shipping", s.handleUpdateShipping)

	s.mux.HandleFunc("POST /submissions", s.handleCreateSubmission)
	s.mux.HandleFunc("GET /submissions", s.handleListSubmissions)
	s.mux.HandleFunc("GET /submissions/{submission_id}", s.handleGetSubmission)
	s.mux.HandleFunc("POST /submissions/{submission_id}/review", s.handleReviewSubmission)
	s.mux.HandleFunc("POST /submissions/{submission_id}/resubmit", s.handleResubmit)
	s.mux.HandleFunc("POST /submissions/{submission_id}/winner", s.handleDesignateWinner)
	s.mux.HandleFunc("GET /campaigns/{campaign_id}/review-queue", s.handleBrandQueue)

	s.mux.HandleFunc("GET /wallet", s.handleGetWallet)
	s.mux.HandleFunc("GET /wallet/transactions", s.handleListTransactions)
	s.mux.HandleFunc("POST /wallet/deposits", s.handleDeposit)
	s.mux.HandleFunc("POST /wallet/payouts", s.handleRequestPayout)
	s.mux.HandleFunc("POST /wallet/payouts/{transaction_id}/settle", s.handleSettlePayout)
	s.mux.HandleFunc("POST /escrow/hold", s.handleHoldEscrow)
	s.mux.HandleFunc("POST /escrow/release", s.handleReleaseEscrow)

	s.mux.HandleFunc("POST /campaigns/{campaign_id}/complete", s.handleCompleteCampaign)
}

type identity struct {
	UserID string
	Role   string
}

// roleInternal marks service-to-service and operator callers; routes that
// move other users' money require it.
const roleInternal = "internal"

// resolveIdentity prefers a bearer token; the X-User-Id / X-User-Role
// headers remain the gateway-trusted fallback.
func (s *Server) resolveIdentity(r *http.Request) identity {
	if s.tokens != nil {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if claims, err := s.tokens.ParseAccessToken(raw); err == nil {
				return identity{UserID: claims.UserID, Role: claims.Role}
			}
		}
	}
	return identity{
		UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		Role:   strings.TrimSpace(r.Header.Get("X-User-Role")),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

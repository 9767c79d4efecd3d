package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ledgererrors "kolab/contexts/finance-core/ledger-service/domain/errors"
	ledgerhttp "kolab/contexts/finance-core/ledger-service/transport/http"
)

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.ledger.Handler.GetWalletHandler(r.Context(), actor.UserID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}

	query := r.URL.Query()
	limit := 0
	offset := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}

	resp, err := s.ledger.Handler.ListTransactionsHandler(
		r.Context(),
		actor.UserID,
		query.Get("type"),
		query.Get("status"),
		limit,
		offset,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req ledgerhttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.DepositHandler(r.Context(), actor.UserID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRequestPayout(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req ledgerhttp.RequestPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.RequestPayoutHandler(r.Context(), actor.UserID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSettlePayout(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	// Settlement verdicts come from the payment operator, never the
	// wallet owner: a failed verdict restores the balance.
	if actor.Role != roleInternal {
		writeLedgerError(w, http.StatusForbidden, "forbidden", "payout settlement requires the internal role")
		return
	}
	var req ledgerhttp.SettlePayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.SettlePayoutHandler(r.Context(), r.PathValue("transaction_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHoldEscrow(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req ledgerhttp.HoldEscrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.HoldEscrowHandler(r.Context(), actor.UserID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req ledgerhttp.ReleaseEscrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	// Only the brand whose hold is debited, or the internal settlement
	// path, may move held funds.
	if actor.UserID != req.BrandUserID && actor.Role != roleInternal {
		writeLedgerError(w, http.StatusForbidden, "forbidden", "escrow release is limited to the holding brand")
		return
	}
	resp, err := s.ledger.Handler.ReleaseEscrowHandler(r.Context(), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrWalletNotFound),
		errors.Is(err, ledgererrors.ErrTransactionNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientFunds):
		var funds ledgererrors.InsufficientFundsError
		detail := any(nil)
		if errors.As(err, &funds) {
			detail = ledgerhttp.InsufficientFundsDetail{
				Required:  funds.Required,
				Available: funds.Available,
			}
		}
		writeJSON(w, http.StatusConflict, ledgerhttp.ErrorResponse{
			Code:    "insufficient_funds",
			Message: err.Error(),
			Detail:  detail,
		})
	case errors.Is(err, ledgererrors.ErrTransactionSettled),
		errors.Is(err, ledgererrors.ErrConcurrentWalletEdit):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ledgererrors.ErrUnauthorizedActor):
		writeLedgerError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidAmount),
		errors.Is(err, ledgererrors.ErrInvalidBankDetails),
		errors.Is(err, ledgererrors.ErrInvalidLedgerInput),
		errors.Is(err, ledgererrors.ErrInvalidSettlement):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

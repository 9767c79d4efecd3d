package httpserver

import (
	"errors"
	"net/http"

	settlementerrors "kolab/contexts/fulfillment/settlement-service/domain/errors"
	settlementhttp "kolab/contexts/fulfillment/settlement-service/transport/http"
)

func (s *Server) handleCompleteCampaign(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeSettlementError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.settlement.Handler.CompleteCampaignHandler(r.Context(), actor.UserID, r.PathValue("campaign_id"))
	if err != nil {
		writeSettlementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSettlementDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlementerrors.ErrCampaignNotFound),
		errors.Is(err, settlementerrors.ErrSubmissionNotFound):
		writeSettlementError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, settlementerrors.ErrCampaignStillRunning),
		errors.Is(err, settlementerrors.ErrSubmissionNotApproved),
		errors.Is(err, settlementerrors.ErrWinnerRequired):
		writeSettlementError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, settlementerrors.ErrUnauthorizedActor):
		writeSettlementError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, settlementerrors.ErrInvalidSettlementInput):
		writeSettlementError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeSettlementError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSettlementError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, settlementhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

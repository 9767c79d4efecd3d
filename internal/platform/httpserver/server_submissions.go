package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	applicationerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	applicationhttp "kolab/contexts/fulfillment/application-service/transport/http"
	submissionerrors "kolab/contexts/fulfillment/submission-service/domain/errors"
	submissionhttp "kolab/contexts/fulfillment/submission-service/transport/http"
)

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req submissionhttp.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSubmissionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.submissions.Handler.CreateSubmissionHandler(r.Context(), actor.UserID, req)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.submissions.Handler.ListSubmissionsHandler(
		r.Context(),
		query.Get("campaign_id"),
		query.Get("creator_id"),
		query.Get("status"),
		query.Get("winner") == "true",
	)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	resp, err := s.submissions.Handler.GetSubmissionHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req submissionhttp.ReviewSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSubmissionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.submissions.Handler.ReviewSubmissionHandler(r.Context(), actor.UserID, r.PathValue("submission_id"), req)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResubmit(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req submissionhttp.ResubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSubmissionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.submissions.Handler.ResubmitHandler(r.Context(), actor.UserID, r.PathValue("submission_id"), req)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDesignateWinner(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.submissions.Handler.DesignateWinnerHandler(r.Context(), actor.UserID, r.PathValue("submission_id"))
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBrandQueue(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.submissions.Handler.BrandQueueHandler(r.Context(), actor.UserID, r.PathValue("campaign_id"))
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSubmissionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, submissionerrors.ErrSubmissionNotFound),
		errors.Is(err, submissionerrors.ErrCampaignNotFound):
		writeSubmissionError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, submissionerrors.ErrMaxRedoExceeded):
		var exceeded submissionerrors.MaxRedoExceededError
		detail := any(nil)
		if errors.As(err, &exceeded) {
			detail = submissionhttp.MaxRedoExceededDetail{
				RedoCount: exceeded.RedoCount,
				Limit:     exceeded.Limit,
			}
		}
		writeJSON(w, http.StatusConflict, submissionhttp.ErrorResponse{
			Code:    "max_redo_exceeded",
			Message: err.Error(),
			Detail:  detail,
		})
	case errors.Is(err, applicationerrors.ErrShippingGateLocked):
		// The gate port surfaces the application context's error untouched.
		var locked applicationerrors.ShippingGateLockedError
		detail := any(nil)
		if errors.As(err, &locked) {
			detail = applicationhttp.ShippingGateLockedDetail{ShippingStatus: locked.ShippingStatus}
		}
		writeJSON(w, http.StatusConflict, submissionhttp.ErrorResponse{
			Code:    "shipping_gate_locked",
			Message: err.Error(),
			Detail:  detail,
		})
	case errors.Is(err, applicationerrors.ErrApplicationNotHired),
		errors.Is(err, applicationerrors.ErrApplicationNotFound):
		writeSubmissionError(w, http.StatusConflict, "not_hired", err.Error())
	case errors.Is(err, submissionerrors.ErrDuplicateSubmission),
		errors.Is(err, submissionerrors.ErrConcurrentModification),
		errors.Is(err, submissionerrors.ErrInvalidReviewState),
		errors.Is(err, submissionerrors.ErrNotRedoRequested),
		errors.Is(err, submissionerrors.ErrCampaignNotActive),
		errors.Is(err, submissionerrors.ErrWinnerRequiresApproval),
		errors.Is(err, submissionerrors.ErrWinnerContestOnly),
		errors.Is(err, submissionerrors.ErrCampaignStillRunning):
		writeSubmissionError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, submissionerrors.ErrUnauthorizedActor):
		writeSubmissionError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, submissionerrors.ErrInvalidSubmissionInput),
		errors.Is(err, submissionerrors.ErrInvalidReviewAction),
		errors.Is(err, submissionerrors.ErrFeedbackRequired),
		errors.Is(err, submissionerrors.ErrDeclineReasonRequired):
		writeSubmissionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeSubmissionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSubmissionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, submissionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

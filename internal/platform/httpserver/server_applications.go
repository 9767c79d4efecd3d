package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	applicationerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	applicationhttp "kolab/contexts/fulfillment/application-service/transport/http"
)

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeApplicationError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req applicationhttp.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApplicationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.applications.Handler.CreateApplicationHandler(r.Context(), actor.UserID, req)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.applications.Handler.ListApplicationsHandler(
		r.Context(),
		query.Get("campaign_id"),
		query.Get("creator_id"),
		query.Get("status"),
	)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	resp, err := s.applications.Handler.GetApplicationHandler(r.Context(), r.PathValue("application_id"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeApplicationError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.applications.Handler.HireHandler(r.Context(), actor.UserID, r.PathValue("application_id"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeApplicationError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.applications.Handler.ShortlistHandler(r.Context(), actor.UserID, r.PathValue("application_id"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeApplicationError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	resp, err := s.applications.Handler.RejectHandler(r.Context(), actor.UserID, r.PathValue("application_id"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateShipping(w http.ResponseWriter, r *http.Request) {
	actor := s.resolveIdentity(r)
	if actor.UserID == "" {
		writeApplicationError(w, http.StatusUnauthorized, "missing_user", "caller identity is required")
		return
	}
	var req applicationhttp.UpdateShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApplicationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.applications.Handler.UpdateShippingHandler(r.Context(), actor.UserID, r.PathValue("application_id"), req)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeApplicationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, applicationerrors.ErrApplicationNotFound),
		errors.Is(err, applicationerrors.ErrCampaignNotFound):
		writeApplicationError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, applicationerrors.ErrShippingGateLocked):
		var locked applicationerrors.ShippingGateLockedError
		detail := any(nil)
		if errors.As(err, &locked) {
			detail = applicationhttp.ShippingGateLockedDetail{ShippingStatus: locked.ShippingStatus}
		}
		writeJSON(w, http.StatusConflict, applicationhttp.ErrorResponse{
			Code:    "shipping_gate_locked",
			Message: err.Error(),
			Detail:  detail,
		})
	case errors.Is(err, applicationerrors.ErrDuplicateApplication),
		errors.Is(err, applicationerrors.ErrConcurrentModification),
		errors.Is(err, applicationerrors.ErrInvalidStatusTransition),
		errors.Is(err, applicationerrors.ErrInvalidShippingTransition),
		errors.Is(err, applicationerrors.ErrApplicationNotHired):
		writeApplicationError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, applicationerrors.ErrUnauthorizedActor):
		writeApplicationError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, applicationerrors.ErrInvalidApplicationInput),
		errors.Is(err, applicationerrors.ErrShippingNotApplicable),
		errors.Is(err, applicationerrors.ErrCourierTrackingRequired),
		errors.Is(err, applicationerrors.ErrIssueNoteRequired):
		writeApplicationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeApplicationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeApplicationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, applicationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

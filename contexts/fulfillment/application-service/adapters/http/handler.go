package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"kolab/contexts/fulfillment/application-service/application/commands"
	"kolab/contexts/fulfillment/application-service/application/queries"
	"kolab/contexts/fulfillment/application-service/domain/entities"
	httptransport "kolab/contexts/fulfillment/application-service/transport/http"
)

type Handler struct {
	Lifecycle      commands.LifecycleUseCase
	UpdateShipping commands.UpdateShippingUseCase
	Queries        queries.QueryUseCase
	Logger         *slog.Logger
}

func (h Handler) CreateApplicationHandler(ctx context.Context, creatorID string, req httptransport.CreateApplicationRequest) (httptransport.ApplicationResponse, error) {
	item, err := h.Lifecycle.Apply(ctx, commands.ApplyCommand{
		CreatorID:  creatorID,
		CampaignID: req.CampaignID,
	})
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Application: mapApplication(item)}, nil
}

func (h Handler) HireHandler(ctx context.Context, actorID string, applicationID string) (httptransport.ApplicationResponse, error) {
	item, err := h.Lifecycle.Hire(ctx, commands.HireCommand{ActorID: actorID, ApplicationID: applicationID})
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Application: mapApplication(item)}, nil
}

func (h Handler) ShortlistHandler(ctx context.Context, actorID string, applicationID string) (httptransport.ApplicationResponse, error) {
	item, err := h.Lifecycle.Shortlist(ctx, commands.ShortlistCommand{ActorID: actorID, ApplicationID: applicationID})
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Application: mapApplication(item)}, nil
}

func (h Handler) RejectHandler(ctx context.Context, actorID string, applicationID string) (httptransport.ApplicationResponse, error) {
	item, err := h.Lifecycle.Reject(ctx, commands.RejectCommand{ActorID: actorID, ApplicationID: applicationID})
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Application: mapApplication(item)}, nil
}

func (h Handler) UpdateShippingHandler(
	ctx context.Context,
	actorID string,
	applicationID string,
	req httptransport.UpdateShippingRequest,
) (httptransport.ApplicationResponse, error) {
	item, err := h.UpdateShipping.Execute(ctx, commands.UpdateShippingCommand{
		ActorID:        actorID,
		ApplicationID:  applicationID,
		NewStatus:      entities.ShippingStatus(req.Status),
		CourierName:    req.CourierName,
		TrackingNumber: req.TrackingNumber,
		IssueNote:      req.IssueNote,
	})
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Application: mapApplication(item)}, nil
}

func (h Handler) GetApplicationHandler(ctx context.Context, applicationID string) (httptransport.ApplicationResponse, error) {
	item, err := h.Queries.GetApplication(ctx, applicationID)
	if err != nil {
		return httptransport.ApplicationResponse{}, err
	}
	return httptransport.ApplicationResponse{Application: mapApplication(item)}, nil
}

func (h Handler) ListApplicationsHandler(
	ctx context.Context,
	campaignID string,
	creatorID string,
	status string,
) (httptransport.ListApplicationsResponse, error) {
	items, err := h.Queries.ListApplications(ctx, queries.ListApplicationsQuery{
		CampaignID: campaignID,
		CreatorID:  creatorID,
		Status:     status,
	})
	if err != nil {
		return httptransport.ListApplicationsResponse{}, err
	}
	result := make([]httptransport.ApplicationDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapApplication(item))
	}
	return httptransport.ListApplicationsResponse{Items: result}, nil
}

func mapApplication(item entities.Application) httptransport.ApplicationDTO {
	dto := httptransport.ApplicationDTO{
		ApplicationID:  item.ApplicationID,
		CampaignID:     item.CampaignID,
		CreatorID:      item.CreatorID,
		Status:         string(item.Status),
		CourierName:    item.CourierName,
		TrackingNumber: item.TrackingNumber,
		IssueNote:      item.IssueNote,
		CreatedAt:      item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.Format(time.RFC3339),
	}
	if item.ShippingStatus != nil {
		dto.ShippingStatus = string(*item.ShippingStatus)
	}
	if item.HiredAt != nil {
		dto.HiredAt = item.HiredAt.Format(time.RFC3339)
	}
	if item.DeliveredAt != nil {
		dto.DeliveredAt = item.DeliveredAt.Format(time.RFC3339)
	}
	if item.CompletedAt != nil {
		dto.CompletedAt = item.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

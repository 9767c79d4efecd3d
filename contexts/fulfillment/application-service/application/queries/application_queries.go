package queries

import (
	"context"
	"log/slog"
	"strings"

	"kolab/contexts/fulfillment/application-service/application"
	"kolab/contexts/fulfillment/application-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	"kolab/contexts/fulfillment/application-service/ports"
)

type ListApplicationsQuery struct {
	CampaignID string
	CreatorID  string
	Status     string
}

type QueryUseCase struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetApplication(ctx context.Context, applicationID string) (entities.Application, error) {
	return uc.Repository.GetApplication(ctx, strings.TrimSpace(applicationID))
}

func (uc QueryUseCase) ListApplications(ctx context.Context, query ListApplicationsQuery) ([]entities.Application, error) {
	return uc.Repository.ListApplications(ctx, ports.ApplicationFilter{
		CampaignID: strings.TrimSpace(query.CampaignID),
		CreatorID:  strings.TrimSpace(query.CreatorID),
		Status:     entities.ApplicationStatus(query.Status),
	})
}

// CanSubmit is the shipping-gate predicate: a digital campaign is always
// open; a physical campaign opens only once the hire's shipment is
// delivered. A locked gate reports the current shipping status.
func (uc QueryUseCase) CanSubmit(ctx context.Context, campaignID string, creatorID string) error {
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return err
	}
	if campaign.ProductType != entities.ProductTypePhysical {
		return nil
	}

	item, err := uc.Repository.FindByCampaignAndCreator(ctx, strings.TrimSpace(campaignID), strings.TrimSpace(creatorID))
	if err != nil {
		return err
	}
	if item.Status != entities.ApplicationStatusHired && item.Status != entities.ApplicationStatusCompleted {
		return domainerrors.ErrApplicationNotHired
	}
	if item.ShippingStatus == nil || *item.ShippingStatus != entities.ShippingStatusDelivered {
		status := ""
		if item.ShippingStatus != nil {
			status = string(*item.ShippingStatus)
		}
		application.ResolveLogger(uc.Logger).Info("submission blocked by shipping gate",
			"event", "application_gate_locked",
			"module", "fulfillment/application-service",
			"layer", "application",
			"application_id", item.ApplicationID,
			"shipping_status", status,
		)
		return domainerrors.ShippingGateLockedError{ShippingStatus: status}
	}
	return nil
}

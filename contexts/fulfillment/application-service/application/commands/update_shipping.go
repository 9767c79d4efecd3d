package commands

import (
	"context"
	"log/slog"
	"strings"

	"kolab/contexts/fulfillment/application-service/application"
	"kolab/contexts/fulfillment/application-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	"kolab/contexts/fulfillment/application-service/ports"
)

type UpdateShippingCommand struct {
	ActorID        string
	ApplicationID  string
	NewStatus      entities.ShippingStatus
	CourierName    string
	TrackingNumber string
	IssueNote      string
}

// UpdateShippingUseCase drives the shipping gate. The brand handles the
// forward path; delivery confirmation may also come from the creator who
// received the package.
type UpdateShippingUseCase struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc UpdateShippingUseCase) Execute(ctx context.Context, cmd UpdateShippingCommand) (entities.Application, error) {
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.Application{}, domainerrors.ErrUnauthorizedActor
	}
	if !entities.IsSupportedShippingStatus(cmd.NewStatus) {
		return entities.Application{}, domainerrors.ErrInvalidShippingTransition
	}

	item, err := uc.Repository.GetApplication(ctx, strings.TrimSpace(cmd.ApplicationID))
	if err != nil {
		return entities.Application{}, err
	}
	if item.Status != entities.ApplicationStatusHired {
		return entities.Application{}, domainerrors.ErrApplicationNotHired
	}
	if item.ShippingStatus == nil {
		return entities.Application{}, domainerrors.ErrShippingNotApplicable
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, item.CampaignID)
	if err != nil {
		return entities.Application{}, err
	}
	creatorConfirmsDelivery := cmd.NewStatus == entities.ShippingStatusDelivered && actorID == item.CreatorID
	if campaign.BrandID != actorID && !creatorConfirmsDelivery {
		return entities.Application{}, domainerrors.ErrUnauthorizedActor
	}

	current := *item.ShippingStatus
	if !entities.CanTransitionShipping(current, cmd.NewStatus) {
		return entities.Application{}, domainerrors.ErrInvalidShippingTransition
	}

	now := uc.Clock.Now().UTC()
	switch cmd.NewStatus {
	case entities.ShippingStatusShipped:
		courier := strings.TrimSpace(cmd.CourierName)
		tracking := strings.TrimSpace(cmd.TrackingNumber)
		// Courier and tracking are set together, on the first shipment.
		// An issue branch entered before anything shipped still needs
		// them on the way out.
		if item.CourierName == "" || item.TrackingNumber == "" {
			if courier == "" || tracking == "" {
				return entities.Application{}, domainerrors.ErrCourierTrackingRequired
			}
			item.CourierName = courier
			item.TrackingNumber = tracking
		}
	case entities.ShippingStatusIssue:
		note := strings.TrimSpace(cmd.IssueNote)
		if note == "" {
			return entities.Application{}, domainerrors.ErrIssueNoteRequired
		}
		item.IssueNote = note
	case entities.ShippingStatusDelivered:
		item.DeliveredAt = &now
	}
	if current == entities.ShippingStatusIssue && cmd.NewStatus != entities.ShippingStatusIssue {
		item.IssueNote = ""
	}

	expected := []entities.ShippingStatus{current}
	next := cmd.NewStatus
	item.ShippingStatus = &next
	item.UpdatedAt = now
	if err := uc.Repository.UpdateShipping(ctx, expected, item); err != nil {
		return entities.Application{}, err
	}

	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "application.shipping_updated", now, item.CampaignID, map[string]any{
		"application_id":  item.ApplicationID,
		"campaign_id":     item.CampaignID,
		"creator_id":      item.CreatorID,
		"shipping_status": string(next),
		"courier_name":    item.CourierName,
		"tracking_number": item.TrackingNumber,
	}); err != nil {
		return entities.Application{}, err
	}

	application.ResolveLogger(uc.Logger).Info("shipping status updated",
		"event", "application_shipping_updated",
		"module", "fulfillment/application-service",
		"layer", "application",
		"application_id", item.ApplicationID,
		"shipping_status", string(next),
	)
	return item, nil
}

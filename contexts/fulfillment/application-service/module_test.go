package applicationservice_test

import (
	"context"
	"errors"
	"testing"

	applicationservice "kolab/contexts/fulfillment/application-service"
	"kolab/contexts/fulfillment/application-service/application/commands"
	"kolab/contexts/fulfillment/application-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/application-service/domain/errors"
)

func physicalCampaign() entities.Campaign {
	return entities.Campaign{
		CampaignID:   "campaign-1",
		BrandID:      "brand-1",
		Title:        "Launch unboxing",
		ProductType:  entities.ProductTypePhysical,
		CampaignType: entities.CampaignTypeDeal,
		Status:       entities.CampaignStatusActive,
		PayoutAmount: 100_000,
		Budget:       500_000,
	}
}

func digitalCampaign() entities.Campaign {
	return entities.Campaign{
		CampaignID:   "campaign-2",
		BrandID:      "brand-1",
		Title:        "App promo",
		ProductType:  entities.ProductTypeDigital,
		CampaignType: entities.CampaignTypeContest,
		Status:       entities.CampaignStatusActive,
		PayoutAmount: 50_000,
		Budget:       200_000,
	}
}

func hire(t *testing.T, module applicationservice.Module, campaignID string, creatorID string) entities.Application {
	t.Helper()
	created, err := module.Lifecycle.Apply(context.Background(), commands.ApplyCommand{
		CreatorID:  creatorID,
		CampaignID: campaignID,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	hired, err := module.Lifecycle.Hire(context.Background(), commands.HireCommand{
		ActorID:       "brand-1",
		ApplicationID: created.ApplicationID,
	})
	if err != nil {
		t.Fatalf("hire failed: %v", err)
	}
	return hired
}

func ship(t *testing.T, module applicationservice.Module, applicationID string, cmd commands.UpdateShippingCommand) entities.Application {
	t.Helper()
	cmd.ApplicationID = applicationID
	item, err := module.Handler.UpdateShipping.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("shipping update to %s failed: %v", cmd.NewStatus, err)
	}
	return item
}

func TestHirePhysicalCampaignArmsShippingGate(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)

	hired := hire(t, module, "campaign-1", "creator-1")
	if hired.Status != entities.ApplicationStatusHired {
		t.Fatalf("expected hired, got %s", hired.Status)
	}
	if hired.ShippingStatus == nil || *hired.ShippingStatus != entities.ShippingStatusNeedsAddress {
		t.Fatalf("expected shipping gate at needs_address, got %v", hired.ShippingStatus)
	}
}

func TestHireDigitalCampaignLeavesShippingUnset(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{digitalCampaign()}, nil)

	hired := hire(t, module, "campaign-2", "creator-1")
	if hired.ShippingStatus != nil {
		t.Fatalf("digital campaign must not have a shipping status, got %v", *hired.ShippingStatus)
	}
	if err := module.Queries.CanSubmit(context.Background(), "campaign-2", "creator-1"); err != nil {
		t.Fatalf("digital campaign gate must be open: %v", err)
	}
}

func TestShippingForwardPathUnlocksGate(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)
	hired := hire(t, module, "campaign-1", "creator-1")

	err := module.Queries.CanSubmit(context.Background(), "campaign-1", "creator-1")
	if !errors.Is(err, domainerrors.ErrShippingGateLocked) {
		t.Fatalf("gate should be locked before delivery, got %v", err)
	}
	var locked domainerrors.ShippingGateLockedError
	if !errors.As(err, &locked) || locked.ShippingStatus != string(entities.ShippingStatusNeedsAddress) {
		t.Fatalf("locked error should carry current status, got %v", err)
	}

	ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusProcessing,
	})
	shipped := ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:        "brand-1",
		NewStatus:      entities.ShippingStatusShipped,
		CourierName:    "JNE",
		TrackingNumber: "GX12345",
	})
	if shipped.CourierName != "JNE" || shipped.TrackingNumber != "GX12345" {
		t.Fatalf("courier/tracking not recorded: %+v", shipped)
	}

	delivered := ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "creator-1",
		NewStatus: entities.ShippingStatusDelivered,
	})
	if delivered.ShippingStatus == nil || *delivered.ShippingStatus != entities.ShippingStatusDelivered {
		t.Fatalf("expected delivered, got %v", delivered.ShippingStatus)
	}
	if delivered.DeliveredAt == nil {
		t.Fatal("delivered_at not stamped")
	}

	if err := module.Queries.CanSubmit(context.Background(), "campaign-1", "creator-1"); err != nil {
		t.Fatalf("gate should be open after delivery: %v", err)
	}
}

func TestShippedRequiresCourierAndTracking(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)
	hired := hire(t, module, "campaign-1", "creator-1")
	ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusProcessing,
	})

	_, err := module.Handler.UpdateShipping.Execute(context.Background(), commands.UpdateShippingCommand{
		ActorID:       "brand-1",
		ApplicationID: hired.ApplicationID,
		NewStatus:     entities.ShippingStatusShipped,
		CourierName:   "JNE",
	})
	if !errors.Is(err, domainerrors.ErrCourierTrackingRequired) {
		t.Fatalf("expected courier/tracking validation error, got %v", err)
	}
}

func TestIssueBranchResolvesBackToForwardPath(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)
	hired := hire(t, module, "campaign-1", "creator-1")
	ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusProcessing,
	})

	_, err := module.Handler.UpdateShipping.Execute(context.Background(), commands.UpdateShippingCommand{
		ActorID:       "brand-1",
		ApplicationID: hired.ApplicationID,
		NewStatus:     entities.ShippingStatusIssue,
	})
	if !errors.Is(err, domainerrors.ErrIssueNoteRequired) {
		t.Fatalf("expected issue note validation error, got %v", err)
	}

	flagged := ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusIssue,
		IssueNote: "package returned to sender",
	})
	if flagged.IssueNote == "" {
		t.Fatal("issue note not recorded")
	}

	// Delivered is not reachable from issue; the exception branch resolves
	// back onto the forward path first.
	_, err = module.Handler.UpdateShipping.Execute(context.Background(), commands.UpdateShippingCommand{
		ActorID:       "brand-1",
		ApplicationID: hired.ApplicationID,
		NewStatus:     entities.ShippingStatusDelivered,
	})
	if !errors.Is(err, domainerrors.ErrInvalidShippingTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	resolved := ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusProcessing,
	})
	if resolved.IssueNote != "" {
		t.Fatalf("issue note should clear on resolve, got %q", resolved.IssueNote)
	}
}

func TestIssueBeforeShipmentStillRequiresCourier(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)
	hired := hire(t, module, "campaign-1", "creator-1")
	ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusProcessing,
	})
	ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:   "brand-1",
		NewStatus: entities.ShippingStatusIssue,
		IssueNote: "address bounced",
	})

	// The shipment never left, so resolving the issue straight to shipped
	// still needs courier and tracking.
	_, err := module.Handler.UpdateShipping.Execute(context.Background(), commands.UpdateShippingCommand{
		ActorID:       "brand-1",
		ApplicationID: hired.ApplicationID,
		NewStatus:     entities.ShippingStatusShipped,
	})
	if !errors.Is(err, domainerrors.ErrCourierTrackingRequired) {
		t.Fatalf("expected courier/tracking requirement, got %v", err)
	}

	resolved := ship(t, module, hired.ApplicationID, commands.UpdateShippingCommand{
		ActorID:        "brand-1",
		NewStatus:      entities.ShippingStatusShipped,
		CourierName:    "JNE",
		TrackingNumber: "GX99001",
	})
	if resolved.CourierName != "JNE" || resolved.TrackingNumber != "GX99001" {
		t.Fatalf("courier/tracking not recorded on resolve, got %+v", resolved)
	}
}

func TestShippingUpdateRejectsForeignBrand(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)
	hired := hire(t, module, "campaign-1", "creator-1")

	_, err := module.Handler.UpdateShipping.Execute(context.Background(), commands.UpdateShippingCommand{
		ActorID:       "brand-2",
		ApplicationID: hired.ApplicationID,
		NewStatus:     entities.ShippingStatusProcessing,
	})
	if !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("expected unauthorized actor, got %v", err)
	}
}

func TestDuplicateApplicationRejected(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)

	if _, err := module.Lifecycle.Apply(context.Background(), commands.ApplyCommand{CreatorID: "creator-1", CampaignID: "campaign-1"}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	_, err := module.Lifecycle.Apply(context.Background(), commands.ApplyCommand{CreatorID: "creator-1", CampaignID: "campaign-1"})
	if !errors.Is(err, domainerrors.ErrDuplicateApplication) {
		t.Fatalf("expected duplicate application error, got %v", err)
	}
}

func TestCompleteRequiresHiredStatus(t *testing.T) {
	module := applicationservice.NewInMemoryModule([]entities.Campaign{physicalCampaign()}, nil)
	created, err := module.Lifecycle.Apply(context.Background(), commands.ApplyCommand{CreatorID: "creator-1", CampaignID: "campaign-1"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	_, err = module.Lifecycle.Complete(context.Background(), commands.CompleteCommand{ApplicationID: created.ApplicationID})
	if !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

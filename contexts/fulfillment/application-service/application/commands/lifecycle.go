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

type ApplyCommand struct {
	CreatorID  string
	CampaignID string
}

type HireCommand struct {
	ActorID       string
	ApplicationID string
}

type ShortlistCommand struct {
	ActorID       string
	ApplicationID string
}

type RejectCommand struct {
	ActorID       string
	ApplicationID string
}

type CompleteCommand struct {
	ApplicationID string
}

// LifecycleUseCase drives the applied/shortlisted/hired/rejected/completed
// machine. Hiring a creator for a physical-product campaign also arms the
// shipping gate at needs_address.
type LifecycleUseCase struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc LifecycleUseCase) Apply(ctx context.Context, cmd ApplyCommand) (entities.Application, error) {
	creatorID := strings.TrimSpace(cmd.CreatorID)
	campaignID := strings.TrimSpace(cmd.CampaignID)
	if creatorID == "" || campaignID == "" {
		return entities.Application{}, domainerrors.ErrInvalidApplicationInput
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return entities.Application{}, err
	}
	if campaign.Status != entities.CampaignStatusActive {
		return entities.Application{}, domainerrors.ErrInvalidApplicationInput
	}

	applicationID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Application{}, err
	}
	now := uc.Clock.Now().UTC()
	item := entities.Application{
		ApplicationID: strings.TrimSpace(applicationID),
		CampaignID:    campaignID,
		CreatorID:     creatorID,
		Status:        entities.ApplicationStatusApplied,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Repository.CreateApplication(ctx, item); err != nil {
		return entities.Application{}, err
	}

	application.ResolveLogger(uc.Logger).Info("application created",
		"event", "application_created",
		"module", "fulfillment/application-service",
		"layer", "application",
		"application_id", item.ApplicationID,
		"campaign_id", campaignID,
	)
	return item, nil
}

func (uc LifecycleUseCase) Shortlist(ctx context.Context, cmd ShortlistCommand) (entities.Application, error) {
	return uc.transition(ctx, cmd.ActorID, cmd.ApplicationID, entities.ApplicationStatusShortlisted)
}

func (uc LifecycleUseCase) Reject(ctx context.Context, cmd RejectCommand) (entities.Application, error) {
	return uc.transition(ctx, cmd.ActorID, cmd.ApplicationID, entities.ApplicationStatusRejected)
}

func (uc LifecycleUseCase) Hire(ctx context.Context, cmd HireCommand) (entities.Application, error) {
	item, campaign, err := uc.loadForBrand(ctx, cmd.ActorID, cmd.ApplicationID)
	if err != nil {
		return entities.Application{}, err
	}
	if !entities.CanTransitionStatus(item.Status, entities.ApplicationStatusHired) {
		return entities.Application{}, domainerrors.ErrInvalidStatusTransition
	}

	now := uc.Clock.Now().UTC()
	expected := []entities.ApplicationStatus{item.Status}
	item.Status = entities.ApplicationStatusHired
	item.HiredAt = &now
	item.UpdatedAt = now
	if campaign.ProductType == entities.ProductTypePhysical {
		shipping := entities.ShippingStatusNeedsAddress
		item.ShippingStatus = &shipping
	}

	if err := uc.Repository.UpdateStatus(ctx, expected, item); err != nil {
		return entities.Application{}, err
	}
	if err := appendOutbox(ctx, uc.Outbox, uc.IDGen, "application.hired", now, item.CampaignID, map[string]any{
		"application_id": item.ApplicationID,
		"campaign_id":    item.CampaignID,
		"creator_id":     item.CreatorID,
		"physical":       campaign.ProductType == entities.ProductTypePhysical,
	}); err != nil {
		return entities.Application{}, err
	}

	application.ResolveLogger(uc.Logger).Info("creator hired",
		"event", "application_hired",
		"module", "fulfillment/application-service",
		"layer", "application",
		"application_id", item.ApplicationID,
		"campaign_id", item.CampaignID,
		"creator_id", item.CreatorID,
	)
	return item, nil
}

// Complete marks a hired application completed. Invoked by settlement after
// escrow release, so it carries no actor check of its own.
func (uc LifecycleUseCase) Complete(ctx context.Context, cmd CompleteCommand) (entities.Application, error) {
	item, err := uc.Repository.GetApplication(ctx, strings.TrimSpace(cmd.ApplicationID))
	if err != nil {
		return entities.Application{}, err
	}
	if !entities.CanTransitionStatus(item.Status, entities.ApplicationStatusCompleted) {
		return entities.Application{}, domainerrors.ErrInvalidStatusTransition
	}

	now := uc.Clock.Now().UTC()
	expected := []entities.ApplicationStatus{item.Status}
	item.Status = entities.ApplicationStatusCompleted
	item.CompletedAt = &now
	item.UpdatedAt = now
	if err := uc.Repository.UpdateStatus(ctx, expected, item); err != nil {
		return entities.Application{}, err
	}

	application.ResolveLogger(uc.Logger).Info("application completed",
		"event", "application_completed",
		"module", "fulfillment/application-service",
		"layer", "application",
		"application_id", item.ApplicationID,
	)
	return item, nil
}

func (uc LifecycleUseCase) transition(ctx context.Context, actorID string, applicationID string, to entities.ApplicationStatus) (entities.Application, error) {
	item, _, err := uc.loadForBrand(ctx, actorID, applicationID)
	if err != nil {
		return entities.Application{}, err
	}
	if !entities.CanTransitionStatus(item.Status, to) {
		return entities.Application{}, domainerrors.ErrInvalidStatusTransition
	}

	now := uc.Clock.Now().UTC()
	expected := []entities.ApplicationStatus{item.Status}
	item.Status = to
	item.UpdatedAt = now
	if err := uc.Repository.UpdateStatus(ctx, expected, item); err != nil {
		return entities.Application{}, err
	}

	application.ResolveLogger(uc.Logger).Info("application status changed",
		"event", "application_status_changed",
		"module", "fulfillment/application-service",
		"layer", "application",
		"application_id", item.ApplicationID,
		"status", string(to),
	)
	return item, nil
}

func (uc LifecycleUseCase) loadForBrand(ctx context.Context, actorID string, applicationID string) (entities.Application, entities.Campaign, error) {
	if strings.TrimSpace(actorID) == "" {
		return entities.Application{}, entities.Campaign{}, domainerrors.ErrUnauthorizedActor
	}
	item, err := uc.Repository.GetApplication(ctx, strings.TrimSpace(applicationID))
	if err != nil {
		return entities.Application{}, entities.Campaign{}, err
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, item.CampaignID)
	if err != nil {
		return entities.Application{}, entities.Campaign{}, err
	}
	if campaign.BrandID != strings.TrimSpace(actorID) {
		return entities.Application{}, entities.Campaign{}, domainerrors.ErrUnauthorizedActor
	}
	return item, campaign, nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kolab/contexts/fulfillment/application-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	"kolab/contexts/fulfillment/application-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	applications map[string]entities.Application
	campaigns    map[string]entities.Campaign
	outbox       []ports.OutboxMessage
	published    map[string]bool
}

func NewStore(campaigns []entities.Campaign) *Store {
	seeded := make(map[string]entities.Campaign, len(campaigns))
	for _, campaign := range campaigns {
		seeded[campaign.CampaignID] = campaign
	}
	return &Store{
		applications: make(map[string]entities.Application),
		campaigns:    seeded,
		published:    make(map[string]bool),
	}
}

// SeedCampaign upserts a campaign projection row. Test helper.
func (s *Store) SeedCampaign(campaign entities.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[campaign.CampaignID] = campaign
}

func (s *Store) CreateApplication(_ context.Context, item entities.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.applications {
		if existing.CampaignID == item.CampaignID && existing.CreatorID == item.CreatorID {
			return domainerrors.ErrDuplicateApplication
		}
	}
	s.applications[item.ApplicationID] = item
	return nil
}

func (s *Store) GetApplication(_ context.Context, applicationID string) (entities.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.applications[strings.TrimSpace(applicationID)]
	if !exists {
		return entities.Application{}, domainerrors.ErrApplicationNotFound
	}
	return item, nil
}

func (s *Store) FindByCampaignAndCreator(_ context.Context, campaignID string, creatorID string) (entities.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.applications {
		if item.CampaignID == strings.TrimSpace(campaignID) && item.CreatorID == strings.TrimSpace(creatorID) {
			return item, nil
		}
	}
	return entities.Application{}, domainerrors.ErrApplicationNotFound
}

func (s *Store) UpdateStatus(_ context.Context, expected []entities.ApplicationStatus, item entities.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.applications[item.ApplicationID]
	if !exists {
		return domainerrors.ErrApplicationNotFound
	}
	for _, status := range expected {
		if current.Status == status {
			s.applications[item.ApplicationID] = item
			return nil
		}
	}
	return domainerrors.ErrConcurrentModification
}

func (s *Store) UpdateShipping(_ context.Context, expected []entities.ShippingStatus, item entities.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.applications[item.ApplicationID]
	if !exists {
		return domainerrors.ErrApplicationNotFound
	}
	if current.ShippingStatus == nil {
		return domainerrors.ErrConcurrentModification
	}
	for _, status := range expected {
		if *current.ShippingStatus == status {
			s.applications[item.ApplicationID] = item
			return nil
		}
	}
	return domainerrors.ErrConcurrentModification
}

func (s *Store) ListApplications(_ context.Context, filter ports.ApplicationFilter) ([]entities.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Application, 0, len(s.applications))
	for _, item := range s.applications {
		if strings.TrimSpace(filter.CampaignID) != "" && item.CampaignID != strings.TrimSpace(filter.CampaignID) {
			continue
		}
		if strings.TrimSpace(filter.CreatorID) != "" && item.CreatorID != strings.TrimSpace(filter.CreatorID) {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetCampaign(_ context.Context, campaignID string) (entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaign, exists := s.campaigns[strings.TrimSpace(campaignID)]
	if !exists {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	return campaign, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outbox = append(s.outbox, ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      append([]byte(nil), envelope.Data...),
		CreatedAt:    envelope.OccurredAt.UTC(),
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, message := range s.outbox {
		if s.published[message.OutboxID] {
			continue
		}
		items = append(items, message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published[strings.TrimSpace(outboxID)] = true
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

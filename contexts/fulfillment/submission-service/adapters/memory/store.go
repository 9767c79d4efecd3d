package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kolab/contexts/fulfillment/submission-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/submission-service/domain/errors"
	"kolab/contexts/fulfillment/submission-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	submissions map[string]entities.Submission
	campaigns   map[string]entities.Campaign
	outbox      []ports.OutboxMessage
	published   map[string]bool
}

func NewStore(campaigns []entities.Campaign) *Store {
	seeded := make(map[string]entities.Campaign, len(campaigns))
	for _, campaign := range campaigns {
		seeded[campaign.CampaignID] = campaign
	}
	return &Store{
		submissions: make(map[string]entities.Submission),
		campaigns:   seeded,
		published:   make(map[string]bool),
	}
}

// SeedCampaign upserts a campaign projection row. Test helper.
func (s *Store) SeedCampaign(campaign entities.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[campaign.CampaignID] = campaign
}

func (s *Store) CreateSubmission(_ context.Context, item entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.submissions {
		if existing.CampaignID == item.CampaignID && existing.CreatorID == item.CreatorID && existing.Active() {
			return domainerrors.ErrDuplicateSubmission
		}
	}
	s.submissions[item.SubmissionID] = item
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.submissions[strings.TrimSpace(submissionID)]
	if !exists {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return item, nil
}

func (s *Store) UpdateStatus(_ context.Context, expected []entities.SubmissionStatus, item entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.submissions[item.SubmissionID]
	if !exists {
		return domainerrors.ErrSubmissionNotFound
	}
	for _, status := range expected {
		if current.Status == status {
			s.submissions[item.SubmissionID] = item
			return nil
		}
	}
	return domainerrors.ErrConcurrentModification
}

func (s *Store) ListSubmissions(_ context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Submission, 0, len(s.submissions))
	for _, item := range s.submissions {
		if strings.TrimSpace(filter.CampaignID) != "" && item.CampaignID != strings.TrimSpace(filter.CampaignID) {
			continue
		}
		if strings.TrimSpace(filter.CreatorID) != "" && item.CreatorID != strings.TrimSpace(filter.CreatorID) {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.WinnerOnly && !item.Winner {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SubmittedAt.After(items[j].SubmittedAt)
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

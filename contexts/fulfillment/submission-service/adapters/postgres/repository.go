package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kolab/contexts/fulfillment/submission-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/submission-service/domain/errors"
	"kolab/contexts/fulfillment/submission-service/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateSubmission(ctx context.Context, item entities.Submission) error {
	row := submissionModelFromEntity(item)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A row lock cannot cover the pair before its first row exists, so
		// serialize creates for the pair on a transaction-scoped advisory
		// lock; it is released on commit or rollback.
		if err := tx.
			Exec("SELECT pg_advisory_xact_lock(hashtext(?), hashtext(?))", row.CampaignID, row.CreatorID).
			Error; err != nil {
			return err
		}
		var existing []submissionModel
		if err := tx.
			Where("campaign_id = ?", row.CampaignID).
			Where("creator_id = ?", row.CreatorID).
			Find(&existing).
			Error; err != nil {
			return err
		}
		for _, previous := range existing {
			if previous.Status != string(entities.SubmissionStatusDeclined) {
				return domainerrors.ErrDuplicateSubmission
			}
		}
		return tx.Create(&row).Error
	})
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, expected []entities.SubmissionStatus, item entities.Submission) error {
	guards := make([]string, 0, len(expected))
	for _, status := range expected {
		guards = append(guards, string(status))
	}
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("submission_id = ?", strings.TrimSpace(item.SubmissionID)).
		Where("status IN ?", guards).
		Updates(submissionUpdatesFromEntity(item))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.guardMiss(ctx, item.SubmissionID)
	}
	return nil
}

func (r *Repository) ListSubmissions(ctx context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	tx := r.db.WithContext(ctx).Model(&submissionModel{})
	if strings.TrimSpace(filter.CampaignID) != "" {
		tx = tx.Where("campaign_id = ?", strings.TrimSpace(filter.CampaignID))
	}
	if strings.TrimSpace(filter.CreatorID) != "" {
		tx = tx.Where("creator_id = ?", strings.TrimSpace(filter.CreatorID))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.WinnerOnly {
		tx = tx.Where("winner = ?", true)
	}

	var rows []submissionModel
	if err := tx.Order("submitted_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error) {
	var row campaignProjectionModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", strings.TrimSpace(campaignID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, err
	}
	return entities.Campaign{
		CampaignID:   row.CampaignID,
		BrandID:      row.BrandID,
		Title:        row.Title,
		ProductType:  entities.ProductType(row.ProductType),
		CampaignType: entities.CampaignType(row.CampaignType),
		Status:       entities.CampaignStatus(row.Status),
		PayoutAmount: row.PayoutAmount,
		Budget:       row.Budget,
	}, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      append([]byte(nil), envelope.Data...),
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidSubmissionInput
	}
	return nil
}

func (r *Repository) guardMiss(ctx context.Context, submissionID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Count(&count).
		Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return domainerrors.ErrConcurrentModification
}

type submissionModel struct {
	SubmissionID string `gorm:"column:submission_id;primaryKey"`
	CampaignID   string `gorm:"column:campaign_id;index:idx_submissions_campaign_creator"`
	CreatorID    string `gorm:"column:creator_id;index:idx_submissions_campaign_creator"`
	ContentURL   string `gorm:"column:content_url"`
	Caption      string `gorm:"column:caption"`
	Status       string `gorm:"column:status"`

	RedoCount     int        `gorm:"column:redo_count"`
	BrandFeedback string     `gorm:"column:brand_feedback"`
	FeedbackAt    *time.Time `gorm:"column:feedback_at"`
	DeclineReason string     `gorm:"column:decline_reason"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at"`

	Winner             bool       `gorm:"column:winner"`
	WinnerDesignatedAt *time.Time `gorm:"column:winner_designated_at"`

	SubmittedAt time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string {
	return "submissions"
}

func submissionModelFromEntity(item entities.Submission) submissionModel {
	return submissionModel{
		SubmissionID:       strings.TrimSpace(item.SubmissionID),
		CampaignID:         strings.TrimSpace(item.CampaignID),
		CreatorID:          strings.TrimSpace(item.CreatorID),
		ContentURL:         strings.TrimSpace(item.ContentURL),
		Caption:            strings.TrimSpace(item.Caption),
		Status:             string(item.Status),
		RedoCount:          item.RedoCount,
		BrandFeedback:      strings.TrimSpace(item.BrandFeedback),
		FeedbackAt:         normalizeOptionalTime(item.FeedbackAt),
		DeclineReason:      strings.TrimSpace(item.DeclineReason),
		ReviewedAt:         normalizeOptionalTime(item.ReviewedAt),
		Winner:             item.Winner,
		WinnerDesignatedAt: normalizeOptionalTime(item.WinnerDesignatedAt),
		SubmittedAt:        item.SubmittedAt.UTC(),
		CreatedAt:          item.CreatedAt.UTC(),
		UpdatedAt:          item.UpdatedAt.UTC(),
	}
}

func submissionUpdatesFromEntity(item entities.Submission) map[string]any {
	row := submissionModelFromEntity(item)
	return map[string]any{
		"status":               row.Status,
		"content_url":          row.ContentURL,
		"caption":              row.Caption,
		"redo_count":           row.RedoCount,
		"brand_feedback":       row.BrandFeedback,
		"feedback_at":          row.FeedbackAt,
		"decline_reason":       row.DeclineReason,
		"reviewed_at":          row.ReviewedAt,
		"winner":               row.Winner,
		"winner_designated_at": row.WinnerDesignatedAt,
		"submitted_at":         row.SubmittedAt,
		"updated_at":           row.UpdatedAt,
	}
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID:       m.SubmissionID,
		CampaignID:         m.CampaignID,
		CreatorID:          m.CreatorID,
		ContentURL:         m.ContentURL,
		Caption:            m.Caption,
		Status:             entities.SubmissionStatus(m.Status),
		RedoCount:          m.RedoCount,
		BrandFeedback:      m.BrandFeedback,
		FeedbackAt:         normalizeOptionalTime(m.FeedbackAt),
		DeclineReason:      m.DeclineReason,
		ReviewedAt:         normalizeOptionalTime(m.ReviewedAt),
		Winner:             m.Winner,
		WinnerDesignatedAt: normalizeOptionalTime(m.WinnerDesignatedAt),
		SubmittedAt:        m.SubmittedAt.UTC(),
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type campaignProjectionModel struct {
	CampaignID   string `gorm:"column:campaign_id;primaryKey"`
	BrandID      string `gorm:"column:brand_id"`
	Title        string `gorm:"column:title"`
	ProductType  string `gorm:"column:product_type"`
	CampaignType string `gorm:"column:campaign_type"`
	Status       string `gorm:"column:status"`
	PayoutAmount int64  `gorm:"column:payout_amount"`
	Budget       int64  `gorm:"column:budget"`
}

func (campaignProjectionModel) TableName() string {
	return "campaigns"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "submission_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kolab/contexts/fulfillment/application-service/domain/entities"
	domainerrors "kolab/contexts/fulfillment/application-service/domain/errors"
	"kolab/contexts/fulfillment/application-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) CreateApplication(ctx context.Context, item entities.Application) error {
	row := applicationModelFromEntity(item)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateApplication
		}
		return err
	}
	return nil
}

func (r *Repository) GetApplication(ctx context.Context, applicationID string) (entities.Application, error) {
	var row applicationModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", strings.TrimSpace(applicationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Application{}, domainerrors.ErrApplicationNotFound
		}
		return entities.Application{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByCampaignAndCreator(ctx context.Context, campaignID string, creatorID string) (entities.Application, error) {
	var row applicationModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", strings.TrimSpace(campaignID)).
		Where("creator_id = ?", strings.TrimSpace(creatorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Application{}, domainerrors.ErrApplicationNotFound
		}
		return entities.Application{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, expected []entities.ApplicationStatus, item entities.Application) error {
	guards := make([]string, 0, len(expected))
	for _, status := range expected {
		guards = append(guards, string(status))
	}
	result := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("application_id = ?", strings.TrimSpace(item.ApplicationID)).
		Where("status IN ?", guards).
		Updates(applicationUpdatesFromEntity(item))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.guardMiss(ctx, item.ApplicationID)
	}
	return nil
}

func (r *Repository) UpdateShipping(ctx context.Context, expected []entities.ShippingStatus, item entities.Application) error {
	guards := make([]string, 0, len(expected))
	for _, status := range expected {
		guards = append(guards, string(status))
	}
	result := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("application_id = ?", strings.TrimSpace(item.ApplicationID)).
		Where("shipping_status IN ?", guards).
		Updates(applicationUpdatesFromEntity(item))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.guardMiss(ctx, item.ApplicationID)
	}
	return nil
}

func (r *Repository) ListApplications(ctx context.Context, filter ports.ApplicationFilter) ([]entities.Application, error) {
	tx := r.db.WithContext(ctx).Model(&applicationModel{})
	if strings.TrimSpace(filter.CampaignID) != "" {
		tx = tx.Where("campaign_id = ?", strings.TrimSpace(filter.CampaignID))
	}
	if strings.TrimSpace(filter.CreatorID) != "" {
		tx = tx.Where("creator_id = ?", strings.TrimSpace(filter.CreatorID))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var rows []applicationModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Application, 0, len(rows))
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
		return domainerrors.ErrInvalidApplicationInput
	}
	return nil
}

func (r *Repository) guardMiss(ctx context.Context, applicationID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("application_id = ?", strings.TrimSpace(applicationID)).
		Count(&count).
		Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrApplicationNotFound
	}
	return domainerrors.ErrConcurrentModification
}

type applicationModel struct {
	ApplicationID  string     `gorm:"column:application_id;primaryKey"`
	CampaignID     string     `gorm:"column:campaign_id;uniqueIndex:idx_applications_campaign_creator"`
	CreatorID      string     `gorm:"column:creator_id;uniqueIndex:idx_applications_campaign_creator"`
	Status         string     `gorm:"column:status"`
	ShippingStatus *string    `gorm:"column:shipping_status"`
	CourierName    string     `gorm:"column:courier_name"`
	TrackingNumber string     `gorm:"column:tracking_number"`
	IssueNote      string     `gorm:"column:issue_note"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	HiredAt        *time.Time `gorm:"column:hired_at"`
	DeliveredAt    *time.Time `gorm:"column:delivered_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
}

func (applicationModel) TableName() string {
	return "applications"
}

func applicationModelFromEntity(item entities.Application) applicationModel {
	var shipping *string
	if item.ShippingStatus != nil {
		value := string(*item.ShippingStatus)
		shipping = &value
	}
	return applicationModel{
		ApplicationID:  strings.TrimSpace(item.ApplicationID),
		CampaignID:     strings.TrimSpace(item.CampaignID),
		CreatorID:      strings.TrimSpace(item.CreatorID),
		Status:         string(item.Status),
		ShippingStatus: shipping,
		CourierName:    strings.TrimSpace(item.CourierName),
		TrackingNumber: strings.TrimSpace(item.TrackingNumber),
		IssueNote:      strings.TrimSpace(item.IssueNote),
		CreatedAt:      item.CreatedAt.UTC(),
		UpdatedAt:      item.UpdatedAt.UTC(),
		HiredAt:        normalizeOptionalTime(item.HiredAt),
		DeliveredAt:    normalizeOptionalTime(item.DeliveredAt),
		CompletedAt:    normalizeOptionalTime(item.CompletedAt),
	}
}

func applicationUpdatesFromEntity(item entities.Application) map[string]any {
	row := applicationModelFromEntity(item)
	return map[string]any{
		"status":          row.Status,
		"shipping_status": row.ShippingStatus,
		"courier_name":    row.CourierName,
		"tracking_number": row.TrackingNumber,
		"issue_note":      row.IssueNote,
		"updated_at":      row.UpdatedAt,
		"hired_at":        row.HiredAt,
		"delivered_at":    row.DeliveredAt,
		"completed_at":    row.CompletedAt,
	}
}

func (m applicationModel) toEntity() entities.Application {
	var shipping *entities.ShippingStatus
	if m.ShippingStatus != nil {
		value := entities.ShippingStatus(*m.ShippingStatus)
		shipping = &value
	}
	return entities.Application{
		ApplicationID:  m.ApplicationID,
		CampaignID:     m.CampaignID,
		CreatorID:      m.CreatorID,
		Status:         entities.ApplicationStatus(m.Status),
		ShippingStatus: shipping,
		CourierName:    m.CourierName,
		TrackingNumber: m.TrackingNumber,
		IssueNote:      m.IssueNote,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
		HiredAt:        normalizeOptionalTime(m.HiredAt),
		DeliveredAt:    normalizeOptionalTime(m.DeliveredAt),
		CompletedAt:    normalizeOptionalTime(m.CompletedAt),
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
	return "application_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"errors"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SpecialOrderRepo interface {
	Create(ctx context.Context, so *models.SpecialOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SpecialOrder, error)
	GetBySession(ctx context.Context, sessionID string) (*models.SpecialOrder, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, f OrderListFilter) ([]models.SpecialOrder, int64, error)
}

type specialOrderRepo struct{ db *gorm.DB }

func NewSpecialOrderRepo(db *gorm.DB) SpecialOrderRepo { return &specialOrderRepo{db: db} }

func (r *specialOrderRepo) Create(ctx context.Context, so *models.SpecialOrder) error {
	return r.db.WithContext(ctx).Create(so).Error
}

func (r *specialOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SpecialOrder, error) {
	var so models.SpecialOrder
	err := r.db.WithContext(ctx).First(&so, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &so, err
}

func (r *specialOrderRepo) GetBySession(ctx context.Context, sessionID string) (*models.SpecialOrder, error) {
	var so models.SpecialOrder
	err := r.db.WithContext(ctx).First(&so, "checkout_session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &so, err
}

func (r *specialOrderRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.SpecialOrder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *specialOrderRepo) List(ctx context.Context, f OrderListFilter) ([]models.SpecialOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SpecialOrder{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.SpecialOrder
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

// WebhookEventRepo deduplicates gateway webhook deliveries.
type WebhookEventRepo interface {
	// MarkProcessed records the event id; it reports false when the id was
	// already present (the event must be skipped).
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}

type webhookEventRepo struct{ db *gorm.DB }

func NewWebhookEventRepo(db *gorm.DB) WebhookEventRepo { return &webhookEventRepo{db: db} }

func (r *webhookEventRepo) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
INSERT INTO webhook_events (event_id, event_type, created_at)
VALUES (@id, @type, now())
ON CONFLICT (event_id) DO NOTHING
`, map[string]any{
		"id":   eventID,
		"type": eventType,
	})
	return tx.RowsAffected > 0, tx.Error
}

package repository

import (
	"context"
	"errors"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReturnRepo interface {
	Create(ctx context.Context, req *models.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	ExistsForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, userID *uuid.UUID) ([]models.ReturnRequest, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepo(db *gorm.DB) ReturnRepo { return &returnRepo{db: db} }

func (r *returnRepo) Create(ctx context.Context, req *models.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *returnRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	err := r.db.WithContext(ctx).Preload("Items").First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &req, err
}

func (r *returnRepo) ExistsForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.ReturnItem{}).
		Where("order_item_id = ?", orderItemID).Count(&cnt).Error
	return cnt > 0, err
}

func (r *returnRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.ReturnRequest{}).Where("id = ?", id).Updates(fields).Error
}

func (r *returnRepo) List(ctx context.Context, userID *uuid.UUID) ([]models.ReturnRequest, error) {
	q := r.db.WithContext(ctx).Model(&models.ReturnRequest{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var list []models.ReturnRequest
	err := q.Order("created_at DESC").Preload("Items").Find(&list).Error
	return list, err
}

func (r *returnRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.ReturnRequest{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

package repository

import (
	"context"
	"errors"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepo interface {
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error)
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, size models.Size, quantity uint32) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity uint32) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&cart, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	return &cart, err
}

func (r *cartRepo) GetItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	var it models.CartItem
	err := r.db.WithContext(ctx).First(&it, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, size models.Size, quantity uint32) error {
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		First(&existing, "cart_id = ? AND product_id = ? AND size = ?", cartID, productID, size).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&existing).
		Update("quantity", existing.Quantity+quantity).Error
}

func (r *cartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity uint32) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).Update("quantity", quantity).Error
}

func (r *cartRepo) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *cartRepo) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductListFilter struct {
	Query  string
	Limit  int
	Offset int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.Query != "" {
		q = q.Where("name ILIKE ?", "%"+f.Query+"%")
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

	var list []models.Product
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Variants").Find(&list).Error
	return list, total, err
}

func (r *productRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

type VariantRepo interface {
	BulkCreate(ctx context.Context, vs []models.ProductVariant) error
	GetByProductAndSize(ctx context.Context, productID uuid.UUID, size models.Size) (*models.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)
	SetStock(ctx context.Context, productID uuid.UUID, size models.Size, stock int32) (bool, error)
	SetPrice(ctx context.Context, productID uuid.UUID, size models.Size, priceCents int64) (bool, error)

	// AdjustStock atomically applies delta and refuses to drive stock negative.
	AdjustStock(ctx context.Context, productID uuid.UUID, size models.Size, delta int32) (bool, error)
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepo(db *gorm.DB) VariantRepo { return &variantRepo{db: db} }

func (r *variantRepo) BulkCreate(ctx context.Context, vs []models.ProductVariant) error {
	if len(vs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&vs).Error
}

func (r *variantRepo) GetByProductAndSize(ctx context.Context, productID uuid.UUID, size models.Size) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := r.db.WithContext(ctx).First(&v, "product_id = ? AND size = ?", productID, size).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &v, err
}

func (r *variantRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var list []models.ProductVariant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("size").Find(&list).Error
	return list, err
}

func (r *variantRepo) SetStock(ctx context.Context, productID uuid.UUID, size models.Size, stock int32) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND size = ?", productID, size).
		Update("stock", stock)
	return tx.RowsAffected > 0, tx.Error
}

func (r *variantRepo) SetPrice(ctx context.Context, productID uuid.UUID, size models.Size, priceCents int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND size = ?", productID, size).
		Update("price_cents", priceCents)
	return tx.RowsAffected > 0, tx.Error
}

func (r *variantRepo) AdjustStock(ctx context.Context, productID uuid.UUID, size models.Size, delta int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET stock = stock + @delta,
    updated_at = now()
WHERE product_id = @pid
  AND size = @size
  AND stock + @delta >= 0
`, map[string]any{
		"pid":   productID,
		"size":  size,
		"delta": delta,
	})
	return tx.RowsAffected > 0, tx.Error
}

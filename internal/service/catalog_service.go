package service

import (
	"context"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"

	"github.com/google/uuid"
)

type VariantInput struct {
	Size       models.Size
	PriceCents int64
	Stock      int32
}

type CreateProductInput struct {
	Name        string
	Description string
	ImageURL    string
	Variants    []VariantInput
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	ImageURL    *string
}

type CatalogService interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, query string, limit, offset int) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetPrice(ctx context.Context, productID uuid.UUID, size models.Size, priceCents int64) error
	SetStock(ctx context.Context, productID uuid.UUID, size models.Size, stock int32) error
	AdjustStock(ctx context.Context, productID uuid.UUID, size models.Size, delta int32) error
}

type catalogService struct {
	repo *repository.Repository
	tx   repository.TxManager
}

func NewCatalogService(repo *repository.Repository, tx repository.TxManager) CatalogService {
	return &catalogService{repo: repo, tx: tx}
}

func (s *catalogService) requireAdmin(ctx context.Context) error {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// CreateProduct creates the product and one stock row per size. Sizes not
// listed get a zero-stock, zero-price row so every product carries the full
// size range.
func (s *catalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	given := make(map[models.Size]VariantInput, len(in.Variants))
	for _, v := range in.Variants {
		if !models.IsValidSize(v.Size) {
			return nil, ErrInvalidSize
		}
		if v.Stock < 0 || v.PriceCents < 0 {
			return nil, ErrPriceInvalid
		}
		given[v.Size] = v
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	err := s.tx.WithTx(func(tx *repository.Repository) error {
		if err := tx.Products.Create(ctx, product); err != nil {
			return err
		}
		variants := make([]models.ProductVariant, 0, len(models.Sizes))
		for _, size := range models.Sizes {
			v := given[size]
			variants = append(variants, models.ProductVariant{
				ProductID:  product.ID,
				Size:       size,
				PriceCents: v.PriceCents,
				Stock:      v.Stock,
			})
		}
		return tx.Variants.BulkCreate(ctx, variants)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Products.GetByID(ctx, product.ID)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, query string, limit, offset int) ([]models.Product, int64, error) {
	return s.repo.Products.List(ctx, repository.ProductListFilter{
		Query:  query,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if len(fields) > 0 {
		if err := s.repo.Products.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (s *catalogService) SetPrice(ctx context.Context, productID uuid.UUID, size models.Size, priceCents int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if !models.IsValidSize(size) {
		return ErrInvalidSize
	}
	if priceCents < 0 {
		return ErrPriceInvalid
	}
	ok, err := s.repo.Variants.SetPrice(ctx, productID, size, priceCents)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVariantNotFound
	}
	return nil
}

func (s *catalogService) SetStock(ctx context.Context, productID uuid.UUID, size models.Size, stock int32) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if !models.IsValidSize(size) {
		return ErrInvalidSize
	}
	if stock < 0 {
		return ErrQuantityInvalid
	}
	ok, err := s.repo.Variants.SetStock(ctx, productID, size, stock)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVariantNotFound
	}
	return nil
}

func (s *catalogService) AdjustStock(ctx context.Context, productID uuid.UUID, size models.Size, delta int32) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if !models.IsValidSize(size) {
		return ErrInvalidSize
	}
	ok, err := s.repo.Variants.AdjustStock(ctx, productID, size, delta)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOutOfStock
	}
	return nil
}

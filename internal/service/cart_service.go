package service

import (
	"context"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"

	"github.com/google/uuid"
)

// maxItemQuantity caps a single line so quantities stay safely inside the
// signed 32-bit range used by the stock ledger deltas.
const maxItemQuantity = 1000

type AddCartItemInput struct {
	ProductID uuid.UUID
	Size      models.Size
	Quantity  uint32
}

type CartService interface {
	Get(ctx context.Context) (*models.Cart, error)
	AddItem(ctx context.Context, in AddCartItemInput) (*models.Cart, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity uint32) (*models.Cart, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	repo *repository.Repository
}

func NewCartService(repo *repository.Repository) CartService {
	return &cartService{repo: repo}
}

func (s *cartService) Get(ctx context.Context) (*models.Cart, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Carts.GetOrCreateByUser(ctx, userID)
}

func (s *cartService) AddItem(ctx context.Context, in AddCartItemInput) (*models.Cart, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if in.Quantity == 0 || in.Quantity > maxItemQuantity {
		return nil, ErrQuantityInvalid
	}
	if !models.IsValidSize(in.Size) {
		return nil, ErrInvalidSize
	}

	variant, err := s.repo.Variants.GetByProductAndSize(ctx, in.ProductID, in.Size)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	// Advisory only; the final check happens when payment confirms.
	if variant.Stock < int32(in.Quantity) {
		return nil, ErrOutOfStock
	}

	cart, err := s.repo.Carts.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Carts.UpsertItem(ctx, cart.ID, in.ProductID, in.Size, in.Quantity); err != nil {
		return nil, err
	}
	return s.repo.Carts.GetOrCreateByUser(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity uint32) (*models.Cart, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if quantity == 0 || quantity > maxItemQuantity {
		return nil, ErrQuantityInvalid
	}
	if _, err := s.ownItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Carts.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}
	return s.repo.Carts.GetOrCreateByUser(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) (*models.Cart, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Carts.RemoveItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.Carts.GetOrCreateByUser(ctx, userID)
}

func (s *cartService) ownItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	item, err := s.repo.Carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	cart, err := s.repo.Carts.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, ErrForbidden
	}
	return cart, nil
}

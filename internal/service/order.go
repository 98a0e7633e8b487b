package service

import (
	"context"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
)

type CheckoutInput struct {
	ContactName  string
	ContactPhone string
	Address      string
}

type CancelInput struct {
	Reason      *string
	RefundCents *int64
}

type ListFilter struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type OrderService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*models.Order, string, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, requested models.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, in CancelInput) (*models.Order, error)
	ConfirmPayment(ctx context.Context, ev PaymentEvent) error
}

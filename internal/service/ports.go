package service

import (
	"context"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
)

// CheckoutItem is one line of a hosted-checkout session.
type CheckoutItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent is a verified, gateway-agnostic webhook event.
type PaymentEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	Metadata        map[string]string
}

const EventCheckoutCompleted = "checkout.session.completed"

// PaymentGate wraps the external payment processor. Refund and IsPaid are
// called best-effort by the services; a gateway failure never rolls back a
// committed status change.
type PaymentGate interface {
	CreateCheckout(ctx context.Context, metadata map[string]string, items []CheckoutItem) (*CheckoutSession, error)
	Refund(ctx context.Context, paymentIntentID string, amountCents *int64) (string, error)
	IsPaid(ctx context.Context, paymentIntentID string) (bool, error)
}

// Notifier sends transactional mail. All calls are fire-and-forget with
// logging at the call sites.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, email string, o *models.Order) error
	SpecialOrderStatusChanged(ctx context.Context, email string, so *models.SpecialOrder) error
	ReturnReviewed(ctx context.Context, email string, req *models.ReturnRequest) error
	SignupOTP(ctx context.Context, email, code string) error
}

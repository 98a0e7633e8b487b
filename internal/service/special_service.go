package service

import (
	"context"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateSpecialOrderInput struct {
	Name        string
	Phone       string
	Email       string
	Address     string
	Description string
	Quantity    uint32
	Size        string
	Notes       string
}

type SpecialOrderService interface {
	Create(ctx context.Context, in CreateSpecialOrderInput) (*models.SpecialOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SpecialOrder, error)
	List(ctx context.Context, f ListFilter) ([]models.SpecialOrder, int64, error)
	SetPrice(ctx context.Context, id uuid.UUID, priceCents int64) (*models.SpecialOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, requested models.OrderStatus) (*models.SpecialOrder, error)
	Cancel(ctx context.Context, id uuid.UUID, in CancelInput) (*models.SpecialOrder, error)
	ConfirmPayment(ctx context.Context, ev PaymentEvent) error
}

type specialOrderService struct {
	repo     *repository.Repository
	tx       repository.TxManager
	gate     PaymentGate
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewSpecialOrderService(repo *repository.Repository, tx repository.TxManager, gate PaymentGate, notifier Notifier, log *zap.Logger) SpecialOrderService {
	return &specialOrderService{
		repo:     repo,
		tx:       tx,
		gate:     gate,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Create records a bespoke request. It starts awaiting payment but cannot be
// paid until an admin sets a price and a checkout session exists.
func (s *specialOrderService) Create(ctx context.Context, in CreateSpecialOrderInput) (*models.SpecialOrder, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if in.Quantity == 0 || in.Quantity > maxItemQuantity {
		return nil, ErrQuantityInvalid
	}

	so := &models.SpecialOrder{
		UserID:      userID,
		Status:      models.OrderStatusAwaitingPayment,
		Name:        in.Name,
		Phone:       in.Phone,
		Email:       in.Email,
		Address:     in.Address,
		Description: in.Description,
		Quantity:    in.Quantity,
		Size:        in.Size,
		Notes:       in.Notes,
	}
	if err := s.repo.Specials.Create(ctx, so); err != nil {
		return nil, err
	}
	return so, nil
}

func (s *specialOrderService) Get(ctx context.Context, id uuid.UUID) (*models.SpecialOrder, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	so, err := s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if so == nil {
		return nil, ErrSpecialOrderNotFound
	}
	if role != models.RoleAdmin && so.UserID != userID {
		return nil, ErrForbidden
	}
	return so, nil
}

func (s *specialOrderService) List(ctx context.Context, f ListFilter) ([]models.SpecialOrder, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if role != models.RoleAdmin {
		f.UserID = &userID
	}
	return s.repo.Specials.List(ctx, repository.OrderListFilter{
		UserID: f.UserID,
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

// SetPrice is the admin approval step: it fixes the quote and opens the
// hosted checkout session the customer pays through.
func (s *specialOrderService) SetPrice(ctx context.Context, id uuid.UUID, priceCents int64) (*models.SpecialOrder, error) {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if priceCents <= 0 {
		return nil, ErrPriceInvalid
	}

	so, err := s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if so == nil {
		return nil, ErrSpecialOrderNotFound
	}
	if so.Status == models.OrderStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if so.IsPaid {
		return nil, ErrTransitionNotAllowed
	}

	session, err := s.gate.CreateCheckout(ctx,
		map[string]string{"special_order_id": so.ID.String()},
		[]CheckoutItem{{
			Name:            "Custom order: " + so.Description,
			UnitAmountCents: priceCents,
			Quantity:        1,
		}})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Specials.UpdateFields(ctx, id, map[string]any{
		"price_cents":         priceCents,
		"is_approved":         true,
		"payment_url":         session.URL,
		"checkout_session_id": session.ID,
	}); err != nil {
		return nil, err
	}

	so, err = s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, so)
	return so, nil
}

func (s *specialOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, requested models.OrderStatus) (*models.SpecialOrder, error) {
	if requested == models.OrderStatusCancelled {
		return s.Cancel(ctx, id, CancelInput{})
	}

	_, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	so, err := s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if so == nil {
		return nil, ErrSpecialOrderNotFound
	}

	// The paid flag can lag a webhook delivery; fall back to asking the
	// gateway directly before refusing the transition.
	isPaid := so.IsPaid
	if !isPaid && so.PaymentIntentID != nil {
		if paid, err := s.gate.IsPaid(ctx, *so.PaymentIntentID); err == nil && paid {
			isPaid = true
			if err := s.repo.Specials.UpdateFields(ctx, id, map[string]any{"is_paid": true}); err != nil {
				return nil, err
			}
		}
	}

	if err := ValidateTransition(so.Status, requested, isPaid); err != nil {
		return nil, err
	}

	fields := map[string]any{"status": requested}
	if requested == models.OrderStatusDelivered {
		fields["delivered_at"] = s.now()
	}
	if err := s.repo.Specials.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	so, err = s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, so)
	return so, nil
}

func (s *specialOrderService) Cancel(ctx context.Context, id uuid.UUID, in CancelInput) (*models.SpecialOrder, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin := role == models.RoleAdmin

	so, err := s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if so == nil {
		return nil, ErrSpecialOrderNotFound
	}
	if !isAdmin && so.UserID != userID {
		return nil, ErrForbidden
	}
	if err := ValidateCancel(so.Status); err != nil {
		return nil, err
	}

	fields := map[string]any{"status": models.OrderStatusCancelled}
	if in.Reason != nil {
		fields["cancel_reason"] = *in.Reason
	}
	if err := s.repo.Specials.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	if so.IsPaid && so.PaymentIntentID != nil {
		var amount *int64
		if isAdmin {
			amount = in.RefundCents
		}
		if _, err := s.gate.Refund(ctx, *so.PaymentIntentID, amount); err != nil {
			s.log.Error("special-order refund failed",
				zap.String("special_order_id", so.ID.String()),
				zap.String("payment_intent", *so.PaymentIntentID),
				zap.Error(err))
		}
	}

	so, err = s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, so)
	return so, nil
}

// ConfirmPayment applies a verified checkout-completed event for a special
// order. There is no stock to move; the order is marked paid and advanced.
// The event id is claimed in the same transaction as the update so a failed
// effect leaves the event retryable.
func (s *specialOrderService) ConfirmPayment(ctx context.Context, ev PaymentEvent) error {
	if ev.Type != EventCheckoutCompleted {
		return nil
	}
	// Ordinary-order checkouts arrive on the same event stream. Events not
	// addressed to a special order are acknowledged without claiming the id.
	idStr, ok := ev.Metadata["special_order_id"]
	if !ok {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return ErrSpecialOrderNotFound
	}
	so, err := s.repo.Specials.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if so == nil {
		return ErrSpecialOrderNotFound
	}
	if so.IsPaid {
		return nil
	}

	var first bool
	err = s.tx.WithTx(func(tx *repository.Repository) error {
		first, err = tx.Webhooks.MarkProcessed(ctx, ev.ID, ev.Type)
		if err != nil || !first {
			return err
		}
		fields := map[string]any{
			"is_paid":     true,
			"status":      models.OrderStatusPending,
			"tracking_id": newTrackingID(),
		}
		if ev.PaymentIntentID != "" {
			fields["payment_intent_id"] = ev.PaymentIntentID
		}
		return tx.Specials.UpdateFields(ctx, so.ID, fields)
	})
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	so, err = s.repo.Specials.GetByID(ctx, so.ID)
	if err != nil {
		return err
	}
	s.notify(ctx, so)
	return nil
}

func (s *specialOrderService) notify(ctx context.Context, so *models.SpecialOrder) {
	if so == nil {
		return
	}
	if err := s.notifier.SpecialOrderStatusChanged(ctx, so.Email, so); err != nil {
		s.log.Warn("special-order email failed",
			zap.String("special_order_id", so.ID.String()),
			zap.Error(err))
	}
}

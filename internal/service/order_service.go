package service

import (
	"context"
	"strings"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderService struct {
	repo     *repository.Repository
	tx       repository.TxManager
	gate     PaymentGate
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(repo *repository.Repository, tx repository.TxManager, gate PaymentGate, notifier Notifier, log *zap.Logger) OrderService {
	return &orderService{
		repo:     repo,
		tx:       tx,
		gate:     gate,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func newTrackingID() string {
	return "TT" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Checkout snapshots the caller's cart into an awaiting-payment order and
// opens a hosted checkout session. Stock is not touched here; it is
// decremented once, when the gateway confirms payment.
func (s *orderService) Checkout(ctx context.Context, in CheckoutInput) (*models.Order, string, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, "", err
	}

	cart, err := s.repo.Carts.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if len(cart.Items) == 0 {
		return nil, "", ErrCartEmpty
	}

	now := s.now()
	var (
		itemsDB  []models.OrderItem
		checkout []CheckoutItem
		total    int64
	)
	for _, it := range cart.Items {
		if it.Quantity == 0 || it.Quantity > maxItemQuantity {
			return nil, "", ErrQuantityInvalid
		}
		product, err := s.repo.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, "", err
		}
		if product == nil {
			return nil, "", ErrProductNotFound
		}
		variant, err := s.repo.Variants.GetByProductAndSize(ctx, it.ProductID, it.Size)
		if err != nil {
			return nil, "", err
		}
		if variant == nil {
			return nil, "", ErrVariantNotFound
		}
		// Advisory pre-check only; the authoritative check is the conditional
		// decrement at payment confirmation.
		if variant.Stock < int32(it.Quantity) {
			return nil, "", ErrOutOfStock
		}

		line := int64(it.Quantity) * variant.PriceCents
		total += line
		itemsDB = append(itemsDB, models.OrderItem{
			ProductID:      it.ProductID,
			ProductName:    product.Name,
			Size:           it.Size,
			Quantity:       it.Quantity,
			UnitPriceCents: variant.PriceCents,
			LineTotalCents: line,
			CreatedAt:      now,
		})
		checkout = append(checkout, CheckoutItem{
			Name:            product.Name + " (" + string(it.Size) + ")",
			UnitAmountCents: variant.PriceCents,
			Quantity:        int64(it.Quantity),
		})
	}

	order := &models.Order{
		UserID:       userID,
		Status:       models.OrderStatusAwaitingPayment,
		TotalCents:   total,
		ContactName:  in.ContactName,
		ContactPhone: in.ContactPhone,
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.WithTx(func(tx *repository.Repository) error {
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range itemsDB {
			itemsDB[i].OrderID = order.ID
		}
		return tx.Orders.BulkCreateItems(ctx, itemsDB)
	})
	if err != nil {
		return nil, "", err
	}

	session, err := s.gate.CreateCheckout(ctx, map[string]string{"order_id": order.ID.String()}, checkout)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Orders.UpdateFields(ctx, order.ID, map[string]any{
		"checkout_session_id": session.ID,
	}); err != nil {
		return nil, "", err
	}

	order, err = s.repo.Orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, "", err
	}
	return order, session.URL, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var ord *models.Order
	if role == models.RoleAdmin {
		ord, err = s.repo.Orders.GetByID(ctx, id)
	} else {
		ord, err = s.repo.Orders.GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if role != models.RoleAdmin {
		f.UserID = &userID
	}
	return s.repo.Orders.List(ctx, repository.OrderListFilter{
		UserID: f.UserID,
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

// UpdateStatus advances an order one step along the fixed sequence. A
// requested cancellation is routed through the cancel flow so the restock
// and refund rules apply.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, requested models.OrderStatus) (*models.Order, error) {
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

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	if err := ValidateTransition(ord.Status, requested, ord.IsPaid); err != nil {
		return nil, err
	}

	fields := map[string]any{"status": requested}
	if requested == models.OrderStatusDelivered {
		fields["delivered_at"] = s.now()
	}
	if err := s.repo.Orders.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, id)

	return s.repo.Orders.GetByID(ctx, id)
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, in CancelInput) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin := role == models.RoleAdmin

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && ord.UserID != userID {
		return nil, ErrForbidden
	}
	if err := ValidateCancel(ord.Status); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(func(tx *repository.Repository) error {
		fields := map[string]any{"status": models.OrderStatusCancelled}
		if in.Reason != nil {
			fields["cancel_reason"] = *in.Reason
		}
		if err := tx.Orders.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		if !ord.IsPaid {
			// Stock was never decremented for an unpaid order.
			return nil
		}
		for _, it := range ord.Items {
			ok, err := tx.Variants.AdjustStock(ctx, it.ProductID, it.Size, int32(it.Quantity))
			if err != nil {
				return err
			}
			if !ok {
				return ErrVariantNotFound
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ord.IsPaid && ord.PaymentIntentID != nil {
		var amount *int64
		if isAdmin {
			amount = in.RefundCents
		}
		if _, err := s.gate.Refund(ctx, *ord.PaymentIntentID, amount); err != nil {
			s.log.Error("refund failed",
				zap.String("order_id", ord.ID.String()),
				zap.String("payment_intent", *ord.PaymentIntentID),
				zap.Error(err))
		}
	}

	s.notifyStatus(ctx, id)

	return s.repo.Orders.GetByID(ctx, id)
}

// ConfirmPayment applies a verified checkout-completed event: marks the order
// paid, decrements stock, clears the cart and advances to pending, all in one
// transaction. Replayed events are skipped by event id; the id is claimed
// inside the transaction so a failed effect leaves the event retryable.
func (s *orderService) ConfirmPayment(ctx context.Context, ev PaymentEvent) error {
	if ev.Type != EventCheckoutCompleted {
		return nil
	}
	// Special-order checkouts arrive on the same event stream. Events not
	// addressed to an ordinary order are acknowledged without claiming the id.
	idStr, ok := ev.Metadata["order_id"]
	if !ok {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return ErrOrderNotFound
	}
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ord == nil {
		return ErrOrderNotFound
	}
	if ord.IsPaid {
		return nil
	}

	tracking := newTrackingID()
	var first bool
	err = s.tx.WithTx(func(tx *repository.Repository) error {
		first, err = tx.Webhooks.MarkProcessed(ctx, ev.ID, ev.Type)
		if err != nil || !first {
			return err
		}
		for _, it := range ord.Items {
			ok, err := tx.Variants.AdjustStock(ctx, it.ProductID, it.Size, -int32(it.Quantity))
			if err != nil {
				return err
			}
			if !ok {
				return ErrOutOfStock
			}
		}
		fields := map[string]any{
			"is_paid":     true,
			"status":      models.OrderStatusPending,
			"tracking_id": tracking,
		}
		if ev.PaymentIntentID != "" {
			fields["payment_intent_id"] = ev.PaymentIntentID
		}
		if err := tx.Orders.UpdateFields(ctx, ord.ID, fields); err != nil {
			return err
		}
		cart, err := tx.Carts.GetOrCreateByUser(ctx, ord.UserID)
		if err != nil {
			return err
		}
		return tx.Carts.Clear(ctx, cart.ID)
	})
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	s.notifyStatus(ctx, ord.ID)
	return nil
}

func (s *orderService) notifyStatus(ctx context.Context, orderID uuid.UUID) {
	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil || ord == nil {
		return
	}
	user, err := s.repo.Users.GetByID(ctx, ord.UserID)
	if err != nil || user == nil {
		return
	}
	if err := s.notifier.OrderStatusChanged(ctx, user.Email, ord); err != nil {
		s.log.Warn("status email failed",
			zap.String("order_id", ord.ID.String()),
			zap.Error(err))
	}
}

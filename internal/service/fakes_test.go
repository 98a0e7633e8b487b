package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repo fakes backing the service tests. They implement the repo
// interfaces with maps and no locking; tests are single-goroutine.

type fakeStore struct {
	users    map[uuid.UUID]*models.User
	signups  map[uuid.UUID]*models.PendingSignup
	products map[uuid.UUID]*models.Product
	variants map[string]*models.ProductVariant // key: productID|size
	carts    map[uuid.UUID]*models.Cart        // key: userID
	orders   map[uuid.UUID]*models.Order
	returns  map[uuid.UUID]*models.ReturnRequest
	specials map[uuid.UUID]*models.SpecialOrder
	webhooks map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uuid.UUID]*models.User{},
		signups:  map[uuid.UUID]*models.PendingSignup{},
		products: map[uuid.UUID]*models.Product{},
		variants: map[string]*models.ProductVariant{},
		carts:    map[uuid.UUID]*models.Cart{},
		orders:   map[uuid.UUID]*models.Order{},
		returns:  map[uuid.UUID]*models.ReturnRequest{},
		specials: map[uuid.UUID]*models.SpecialOrder{},
		webhooks: map[string]bool{},
	}
}

func variantKey(productID uuid.UUID, size models.Size) string {
	return productID.String() + "|" + string(size)
}

func (s *fakeStore) repo() *repository.Repository {
	return &repository.Repository{
		Users:    &fakeUserRepo{s},
		Signups:  &fakeSignupRepo{s},
		Products: &fakeProductRepo{s},
		Variants: &fakeVariantRepo{s},
		Carts:    &fakeCartRepo{s},
		Orders:   &fakeOrderRepo{s},
		Returns:  &fakeReturnRepo{s},
		Specials: &fakeSpecialRepo{s},
		Webhooks: &fakeWebhookRepo{s},
	}
}

// fakeTx runs the closure against the same store. Full rollback is not
// modeled, but event-id claims are released on error so retry paths behave
// like the real transaction.
type fakeTx struct{ s *fakeStore }

func (t *fakeTx) WithTx(fn func(tx *repository.Repository) error) error {
	claimed := make(map[string]bool, len(t.s.webhooks))
	for k, v := range t.s.webhooks {
		claimed[k] = v
	}
	if err := fn(t.s.repo()); err != nil {
		t.s.webhooks = claimed
		return err
	}
	return nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.s.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeSignupRepo struct{ s *fakeStore }

func (r *fakeSignupRepo) Upsert(_ context.Context, p *models.PendingSignup) error {
	for tok, existing := range r.s.signups {
		if existing.Email == p.Email {
			delete(r.s.signups, tok)
		}
	}
	r.s.signups[p.Token] = p
	return nil
}

func (r *fakeSignupRepo) GetByToken(_ context.Context, token uuid.UUID) (*models.PendingSignup, error) {
	return r.s.signups[token], nil
}

func (r *fakeSignupRepo) Delete(_ context.Context, token uuid.UUID) error {
	delete(r.s.signups, token)
	return nil
}

func (r *fakeSignupRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for tok, p := range r.s.signups {
		if p.ExpiresAt.Before(now) {
			delete(r.s.signups, tok)
			n++
		}
	}
	return n, nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return r.s.products[id], nil
}

func (r *fakeProductRepo) List(_ context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := fields["description"]; ok {
		p.Description = v.(string)
	}
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	delete(r.s.products, id)
	return true, nil
}

type fakeVariantRepo struct{ s *fakeStore }

func (r *fakeVariantRepo) BulkCreate(_ context.Context, vs []models.ProductVariant) error {
	for i := range vs {
		v := vs[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		r.s.variants[variantKey(v.ProductID, v.Size)] = &v
	}
	return nil
}

func (r *fakeVariantRepo) GetByProductAndSize(_ context.Context, productID uuid.UUID, size models.Size) (*models.ProductVariant, error) {
	return r.s.variants[variantKey(productID, size)], nil
}

func (r *fakeVariantRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var out []models.ProductVariant
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVariantRepo) SetStock(_ context.Context, productID uuid.UUID, size models.Size, stock int32) (bool, error) {
	v, ok := r.s.variants[variantKey(productID, size)]
	if !ok {
		return false, nil
	}
	v.Stock = stock
	return true, nil
}

func (r *fakeVariantRepo) SetPrice(_ context.Context, productID uuid.UUID, size models.Size, priceCents int64) (bool, error) {
	v, ok := r.s.variants[variantKey(productID, size)]
	if !ok {
		return false, nil
	}
	v.PriceCents = priceCents
	return true, nil
}

func (r *fakeVariantRepo) AdjustStock(_ context.Context, productID uuid.UUID, size models.Size, delta int32) (bool, error) {
	v, ok := r.s.variants[variantKey(productID, size)]
	if !ok || v.Stock+delta < 0 {
		return false, nil
	}
	v.Stock += delta
	return true, nil
}

type fakeCartRepo struct{ s *fakeStore }

func (r *fakeCartRepo) GetOrCreateByUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if c, ok := r.s.carts[userID]; ok {
		return c, nil
	}
	c := &models.Cart{ID: uuid.New(), UserID: userID}
	r.s.carts[userID] = c
	return c, nil
}

func (r *fakeCartRepo) GetItem(_ context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	for _, c := range r.s.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				return &c.Items[i], nil
			}
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) UpsertItem(_ context.Context, cartID, productID uuid.UUID, size models.Size, quantity uint32) error {
	for _, c := range r.s.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ProductID == productID && c.Items[i].Size == size {
				c.Items[i].Quantity += quantity
				return nil
			}
		}
		c.Items = append(c.Items, models.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
		})
		return nil
	}
	return fmt.Errorf("cart %s not found", cartID)
}

func (r *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity uint32) error {
	for _, c := range r.s.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return nil
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, itemID uuid.UUID) error {
	for _, c := range r.s.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, cartID uuid.UUID) error {
	for _, c := range r.s.carts {
		if c.ID == cartID {
			c.Items = nil
		}
	}
	return nil
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusAwaitingPayment
	}
	r.s.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) BulkCreateItems(_ context.Context, items []models.OrderItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		o, ok := r.s.orders[items[i].OrderID]
		if !ok {
			return fmt.Errorf("order %s not found", items[i].OrderID)
		}
		o.Items = append(o.Items, items[i])
	}
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	return r.s.orders[id], nil
}

func (r *fakeOrderRepo) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	return o, nil
}

func (r *fakeOrderRepo) GetBySession(_ context.Context, sessionID string) (*models.Order, error) {
	for _, o := range r.s.orders {
		if o.CheckoutSessionID != nil && *o.CheckoutSessionID == sessionID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	o, ok := r.s.orders[id]
	if !ok {
		return nil
	}
	applyOrderFields(fields,
		&o.Status, &o.IsPaid, &o.TrackingID, &o.PaymentIntentID,
		&o.CheckoutSessionID, &o.CancelReason, &o.DeliveredAt)
	return nil
}

func (r *fakeOrderRepo) List(_ context.Context, f repository.OrderListFilter) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.s.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

type fakeReturnRepo struct{ s *fakeStore }

func (r *fakeReturnRepo) Create(_ context.Context, req *models.ReturnRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = models.ReturnStatusPending
	}
	for i := range req.Items {
		if req.Items[i].ID == uuid.Nil {
			req.Items[i].ID = uuid.New()
		}
		req.Items[i].ReturnRequestID = req.ID
	}
	r.s.returns[req.ID] = req
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	return r.s.returns[id], nil
}

func (r *fakeReturnRepo) ExistsForOrderItem(_ context.Context, orderItemID uuid.UUID) (bool, error) {
	for _, req := range r.s.returns {
		for _, it := range req.Items {
			if it.OrderItemID == orderItemID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeReturnRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	req, ok := r.s.returns[id]
	if !ok {
		return nil
	}
	if v, ok := fields["status"]; ok {
		req.Status = v.(models.ReturnStatus)
	}
	if v, ok := fields["admin_note"]; ok {
		note := v.(string)
		req.AdminNote = &note
	}
	return nil
}

func (r *fakeReturnRepo) List(_ context.Context, userID *uuid.UUID) ([]models.ReturnRequest, error) {
	var out []models.ReturnRequest
	for _, req := range r.s.returns {
		if userID == nil || req.UserID == *userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.s.returns[id]; !ok {
		return false, nil
	}
	delete(r.s.returns, id)
	return true, nil
}

type fakeSpecialRepo struct{ s *fakeStore }

func (r *fakeSpecialRepo) Create(_ context.Context, so *models.SpecialOrder) error {
	if so.ID == uuid.Nil {
		so.ID = uuid.New()
	}
	if so.Status == "" {
		so.Status = models.OrderStatusAwaitingPayment
	}
	r.s.specials[so.ID] = so
	return nil
}

func (r *fakeSpecialRepo) GetByID(_ context.Context, id uuid.UUID) (*models.SpecialOrder, error) {
	return r.s.specials[id], nil
}

func (r *fakeSpecialRepo) GetBySession(_ context.Context, sessionID string) (*models.SpecialOrder, error) {
	for _, so := range r.s.specials {
		if so.CheckoutSessionID != nil && *so.CheckoutSessionID == sessionID {
			return so, nil
		}
	}
	return nil, nil
}

func (r *fakeSpecialRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	so, ok := r.s.specials[id]
	if !ok {
		return nil
	}
	applyOrderFields(fields,
		&so.Status, &so.IsPaid, &so.TrackingID, &so.PaymentIntentID,
		&so.CheckoutSessionID, &so.CancelReason, &so.DeliveredAt)
	if v, ok := fields["price_cents"]; ok {
		p := v.(int64)
		so.PriceCents = &p
	}
	if v, ok := fields["is_approved"]; ok {
		so.IsApproved = v.(bool)
	}
	if v, ok := fields["payment_url"]; ok {
		u := v.(string)
		so.PaymentURL = &u
	}
	return nil
}

func (r *fakeSpecialRepo) List(_ context.Context, f repository.OrderListFilter) ([]models.SpecialOrder, int64, error) {
	var out []models.SpecialOrder
	for _, so := range r.s.specials {
		if f.UserID != nil && so.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && so.Status != *f.Status {
			continue
		}
		out = append(out, *so)
	}
	return out, int64(len(out)), nil
}

type fakeWebhookRepo struct{ s *fakeStore }

func (r *fakeWebhookRepo) MarkProcessed(_ context.Context, eventID, eventType string) (bool, error) {
	if r.s.webhooks[eventID] {
		return false, nil
	}
	r.s.webhooks[eventID] = true
	return true, nil
}

func applyOrderFields(fields map[string]any,
	status *models.OrderStatus, isPaid *bool,
	trackingID, paymentIntentID, checkoutSessionID, cancelReason **string,
	deliveredAt **time.Time,
) {
	if v, ok := fields["status"]; ok {
		*status = v.(models.OrderStatus)
	}
	if v, ok := fields["is_paid"]; ok {
		*isPaid = v.(bool)
	}
	if v, ok := fields["tracking_id"]; ok {
		t := v.(string)
		*trackingID = &t
	}
	if v, ok := fields["payment_intent_id"]; ok {
		p := v.(string)
		*paymentIntentID = &p
	}
	if v, ok := fields["checkout_session_id"]; ok {
		c := v.(string)
		*checkoutSessionID = &c
	}
	if v, ok := fields["cancel_reason"]; ok {
		reason := v.(string)
		*cancelReason = &reason
	}
	if v, ok := fields["delivered_at"]; ok {
		at := v.(time.Time)
		*deliveredAt = &at
	}
}

// fakeGate records calls; CreateCheckout hands out deterministic session ids.
type fakeGate struct {
	sessions    int
	refunds     []string
	refundAmts  []*int64
	refundErr   error
	checkoutErr error
	paid        map[string]bool
}

func newFakeGate() *fakeGate {
	return &fakeGate{paid: map[string]bool{}}
}

func (g *fakeGate) CreateCheckout(_ context.Context, metadata map[string]string, items []CheckoutItem) (*CheckoutSession, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	g.sessions++
	id := fmt.Sprintf("cs_test_%d", g.sessions)
	return &CheckoutSession{ID: id, URL: "https://pay.example.com/" + id}, nil
}

func (g *fakeGate) Refund(_ context.Context, paymentIntentID string, amountCents *int64) (string, error) {
	if g.refundErr != nil {
		return "", g.refundErr
	}
	g.refunds = append(g.refunds, paymentIntentID)
	g.refundAmts = append(g.refundAmts, amountCents)
	return "re_" + paymentIntentID, nil
}

func (g *fakeGate) IsPaid(_ context.Context, paymentIntentID string) (bool, error) {
	return g.paid[paymentIntentID], nil
}

type fakeNotifier struct {
	orderMails   int
	specialMails int
	returnMails  int
	otpCodes     []string
	err          error
}

func (n *fakeNotifier) OrderStatusChanged(_ context.Context, _ string, _ *models.Order) error {
	n.orderMails++
	return n.err
}

func (n *fakeNotifier) SpecialOrderStatusChanged(_ context.Context, _ string, _ *models.SpecialOrder) error {
	n.specialMails++
	return n.err
}

func (n *fakeNotifier) ReturnReviewed(_ context.Context, _ string, _ *models.ReturnRequest) error {
	n.returnMails++
	return n.err
}

func (n *fakeNotifier) SignupOTP(_ context.Context, _ string, code string) error {
	n.otpCodes = append(n.otpCodes, code)
	return n.err
}

func testLogger() *zap.Logger { return zap.NewNop() }

func customerCtx(userID uuid.UUID) context.Context {
	ctx := WithUserID(context.Background(), userID)
	return WithRole(ctx, models.RoleCustomer)
}

func adminCtx(userID uuid.UUID) context.Context {
	ctx := WithUserID(context.Background(), userID)
	return WithRole(ctx, models.RoleAdmin)
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type specialFixture struct {
	store    *fakeStore
	gate     *fakeGate
	notifier *fakeNotifier
	svc      *specialOrderService

	userID  uuid.UUID
	adminID uuid.UUID
}

func newSpecialFixture(t *testing.T) *specialFixture {
	t.Helper()

	store := newFakeStore()
	gate := newFakeGate()
	notifier := &fakeNotifier{}

	userID := uuid.New()
	store.users[userID] = &models.User{ID: userID, Email: "customer@example.com"}
	adminID := uuid.New()
	store.users[adminID] = &models.User{ID: adminID, Email: "admin@example.com", Role: models.RoleAdmin}

	svc := NewSpecialOrderService(store.repo(), &fakeTx{s: store}, gate, notifier, testLogger()).(*specialOrderService)

	return &specialFixture{
		store:    store,
		gate:     gate,
		notifier: notifier,
		svc:      svc,
		userID:   userID,
		adminID:  adminID,
	}
}

func (f *specialFixture) create(t *testing.T) *models.SpecialOrder {
	t.Helper()
	so, err := f.svc.Create(customerCtx(f.userID), CreateSpecialOrderInput{
		Name:        "Somchai",
		Phone:       "0812345678",
		Email:       "customer@example.com",
		Address:     "Bangkok",
		Description: "oversized hoodie",
		Quantity:    1,
		Size:        "5XL",
	})
	require.NoError(t, err)
	return so
}

func (f *specialFixture) priceAndPay(t *testing.T, so *models.SpecialOrder, eventID string) {
	t.Helper()
	_, err := f.svc.SetPrice(adminCtx(f.adminID), so.ID, 250000)
	require.NoError(t, err)
	err = f.svc.ConfirmPayment(context.Background(), PaymentEvent{
		ID:              eventID,
		Type:            EventCheckoutCompleted,
		PaymentIntentID: "pi_sp",
		Metadata:        map[string]string{"special_order_id": so.ID.String()},
	})
	require.NoError(t, err)
}

func TestSpecialOrder_CreateStartsAwaitingPayment(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)

	assert.Equal(t, models.OrderStatusAwaitingPayment, so.Status)
	assert.False(t, so.IsApproved)
	assert.Nil(t, so.PriceCents)
	assert.Nil(t, so.PaymentURL)
}

func TestSpecialOrder_SetPriceOpensCheckout(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)

	out, err := f.svc.SetPrice(adminCtx(f.adminID), so.ID, 250000)
	require.NoError(t, err)

	assert.True(t, out.IsApproved)
	require.NotNil(t, out.PriceCents)
	assert.Equal(t, int64(250000), *out.PriceCents)
	require.NotNil(t, out.PaymentURL)
	assert.NotEmpty(t, *out.PaymentURL)
	require.NotNil(t, out.CheckoutSessionID)
	assert.Equal(t, 1, f.notifier.specialMails)
}

func TestSpecialOrder_SetPriceValidation(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)

	_, err := f.svc.SetPrice(adminCtx(f.adminID), so.ID, 0)
	assert.True(t, errors.Is(err, ErrPriceInvalid))

	_, err = f.svc.SetPrice(customerCtx(f.userID), so.ID, 1000)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestSpecialOrder_CannotAdvanceWhileUnpaid(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	_, err := f.svc.SetPrice(adminCtx(f.adminID), so.ID, 250000)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(adminCtx(f.adminID), so.ID, models.OrderStatusPending)
	assert.True(t, errors.Is(err, ErrOrderUnpaid))
}

func TestSpecialOrder_PaymentAdvancesToPending(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	f.priceAndPay(t, so, "evt_sp1")

	paid, err := f.store.repo().Specials.GetByID(context.Background(), so.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, models.OrderStatusPending, paid.Status)
	require.NotNil(t, paid.TrackingID)
	assert.True(t, strings.HasPrefix(*paid.TrackingID, "TT"))
	require.NotNil(t, paid.PaymentIntentID)
	assert.Equal(t, "pi_sp", *paid.PaymentIntentID)
}

func TestSpecialOrder_ReplayedPaymentEventIsNoop(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	f.priceAndPay(t, so, "evt_sp1")
	mails := f.notifier.specialMails

	err := f.svc.ConfirmPayment(context.Background(), PaymentEvent{
		ID:              "evt_sp1",
		Type:            EventCheckoutCompleted,
		PaymentIntentID: "pi_sp",
		Metadata:        map[string]string{"special_order_id": so.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, mails, f.notifier.specialMails)
}

func TestSpecialOrder_EventForOtherFlowLeavesIDUnclaimed(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	_, err := f.svc.SetPrice(adminCtx(f.adminID), so.ID, 250000)
	require.NoError(t, err)

	orders := NewOrderService(f.store.repo(), &fakeTx{s: f.store}, f.gate, f.notifier, testLogger())
	ev := PaymentEvent{
		ID:              "evt_shared_sp",
		Type:            EventCheckoutCompleted,
		PaymentIntentID: "pi_sp",
		Metadata:        map[string]string{"special_order_id": so.ID.String()},
	}

	// The ordinary-order route sees the same delivery first and must not
	// consume the event id.
	require.NoError(t, orders.ConfirmPayment(context.Background(), ev))
	require.NoError(t, f.svc.ConfirmPayment(context.Background(), ev))

	paid, err := f.store.repo().Specials.GetByID(context.Background(), so.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, models.OrderStatusPending, paid.Status)
}

func TestSpecialOrder_AdvancesAfterPayment(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	f.priceAndPay(t, so, "evt_sp1")

	for _, next := range []models.OrderStatus{
		models.OrderStatusPreparing,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		out, err := f.svc.UpdateStatus(adminCtx(f.adminID), so.ID, next)
		require.NoError(t, err, "advance to %s", next)
		assert.Equal(t, next, out.Status)
	}

	final, err := f.store.repo().Specials.GetByID(context.Background(), so.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.DeliveredAt)
}

func TestSpecialOrder_LiveGateFallbackWhenFlagLags(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	_, err := f.svc.SetPrice(adminCtx(f.adminID), so.ID, 250000)
	require.NoError(t, err)

	// Webhook has not landed yet, but the gateway already reports the
	// payment intent as succeeded.
	pi := "pi_lagging"
	require.NoError(t, f.store.repo().Specials.UpdateFields(context.Background(), so.ID, map[string]any{
		"payment_intent_id": pi,
	}))
	f.gate.paid[pi] = true

	out, err := f.svc.UpdateStatus(adminCtx(f.adminID), so.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, out.Status)
	assert.True(t, out.IsPaid)
}

func TestSpecialOrder_CancelRefundsWhenPaid(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)
	f.priceAndPay(t, so, "evt_sp1")

	out, err := f.svc.Cancel(customerCtx(f.userID), so.ID, CancelInput{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, out.Status)
	require.Len(t, f.gate.refunds, 1)
	assert.Equal(t, "pi_sp", f.gate.refunds[0])
}

func TestSpecialOrder_CancelUnpaidNoRefund(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)

	out, err := f.svc.Cancel(customerCtx(f.userID), so.ID, CancelInput{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, out.Status)
	assert.Empty(t, f.gate.refunds)
}

func TestSpecialOrder_SetPriceAfterCancelRejected(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)

	_, err := f.svc.Cancel(customerCtx(f.userID), so.ID, CancelInput{})
	require.NoError(t, err)

	_, err = f.svc.SetPrice(adminCtx(f.adminID), so.ID, 250000)
	assert.True(t, errors.Is(err, ErrAlreadyCancelled))
}

func TestSpecialOrder_VisibilityScoped(t *testing.T) {
	f := newSpecialFixture(t)
	so := f.create(t)

	_, err := f.svc.Get(customerCtx(uuid.New()), so.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	got, err := f.svc.Get(adminCtx(f.adminID), so.ID)
	require.NoError(t, err)
	assert.Equal(t, so.ID, got.ID)

	list, total, err := f.svc.List(customerCtx(f.userID), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
}

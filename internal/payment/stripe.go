package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Jeng2004/t-double-project-sub000/internal/service"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/refund"
	"github.com/stripe/stripe-go/v79/webhook"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// StripeGate implements the payment port against Stripe hosted checkout.
// Amounts are satang (THB cents) throughout.
type StripeGate struct {
	cfg Config
}

func NewStripeGate(cfg Config) *StripeGate {
	stripe.Key = cfg.SecretKey
	return &StripeGate{cfg: cfg}
}

func (g *StripeGate) CreateCheckout(ctx context.Context, metadata map[string]string, items []service.CheckoutItem) (*service.CheckoutSession, error) {
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("thb"),
				UnitAmount: stripe.Int64(it.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		LineItems:  lines,
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &service.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGate) Refund(ctx context.Context, paymentIntentID string, amountCents *int64) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	if amountCents != nil {
		params.Amount = stripe.Int64(*amountCents)
	}
	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("create refund: %w", err)
	}
	return r.ID, nil
}

func (g *StripeGate) IsPaid(ctx context.Context, paymentIntentID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(paymentIntentID, params)
	if err != nil {
		return false, fmt.Errorf("get payment intent: %w", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// ParseEvent verifies the webhook signature and flattens the event into the
// gateway-agnostic form the services consume.
func (g *StripeGate) ParseEvent(payload []byte, sigHeader string) (service.PaymentEvent, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, g.cfg.WebhookSecret)
	if err != nil {
		return service.PaymentEvent{}, fmt.Errorf("verify webhook: %w", err)
	}

	out := service.PaymentEvent{
		ID:   ev.ID,
		Type: string(ev.Type),
	}
	if ev.Type == stripe.EventTypeCheckoutSessionCompleted {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return service.PaymentEvent{}, fmt.Errorf("decode session payload: %w", err)
		}
		out.SessionID = sess.ID
		out.Metadata = sess.Metadata
		if sess.PaymentIntent != nil {
			out.PaymentIntentID = sess.PaymentIntent.ID
		}
	}
	return out, nil
}

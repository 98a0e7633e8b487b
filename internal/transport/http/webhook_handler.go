package http

import (
	"context"
	"io"
	"net/http"

	"github.com/Jeng2004/t-double-project-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventParser verifies a raw webhook payload against its signature header.
type EventParser interface {
	ParseEvent(payload []byte, sigHeader string) (service.PaymentEvent, error)
}

type WebhookHandler struct {
	parser   EventParser
	orders   service.OrderService
	specials service.SpecialOrderService
	log      *zap.Logger
}

func NewWebhookHandler(parser EventParser, orders service.OrderService, specials service.SpecialOrderService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{parser: parser, orders: orders, specials: specials, log: log}
}

// HandleOrders processes payment events for regular orders.
func (h *WebhookHandler) HandleOrders(c *gin.Context) {
	h.handle(c, h.orders.ConfirmPayment)
}

// HandleSpecialOrders processes payment events for special orders.
func (h *WebhookHandler) HandleSpecialOrders(c *gin.Context) {
	h.handle(c, h.specials.ConfirmPayment)
}

func (h *WebhookHandler) handle(c *gin.Context, confirm func(context.Context, service.PaymentEvent) error) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read payload"})
		return
	}

	ev, err := h.parser.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	if err := confirm(c.Request.Context(), ev); err != nil {
		// The gateway retries on non-2xx; a lookup miss for an event that can
		// never succeed must not cause endless redelivery.
		h.log.Error("payment confirmation failed",
			zap.String("event_id", ev.ID),
			zap.String("event_type", ev.Type),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

package service

import (
	"fmt"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
)

// forwardChain is the single authoritative progression of an order. Special
// orders start at the head; ordinary orders enter the chain at awaiting
// payment too and move to pending when the gateway confirms payment.
var forwardChain = []models.OrderStatus{
	models.OrderStatusAwaitingPayment,
	models.OrderStatusPending,
	models.OrderStatusPreparing,
	models.OrderStatusShipping,
	models.OrderStatusDelivered,
}

func IsValidStatus(s models.OrderStatus) bool {
	if s == models.OrderStatusCancelled {
		return true
	}
	for _, v := range forwardChain {
		if v == s {
			return true
		}
	}
	return false
}

// NextStatus returns the immediate successor in the forward chain.
func NextStatus(s models.OrderStatus) (models.OrderStatus, bool) {
	for i, v := range forwardChain {
		if v == s && i+1 < len(forwardChain) {
			return forwardChain[i+1], true
		}
	}
	return "", false
}

// ValidateTransition enforces the forward rules: no skipping, no repeating,
// no going backward, no progression of an unpaid order, terminal states are
// immutable. Cancellation goes through ValidateCancel instead.
func ValidateTransition(current, requested models.OrderStatus, isPaid bool) error {
	if !IsValidStatus(requested) || requested == models.OrderStatusCancelled {
		if requested == models.OrderStatusCancelled {
			return fmt.Errorf("%w: cancellation uses the cancel flow", ErrStatusNotSettable)
		}
		return ErrInvalidStatus
	}

	switch current {
	case models.OrderStatusDelivered, models.OrderStatusCancelled:
		return fmt.Errorf("%w: order is already %s", ErrTransitionNotAllowed, current)
	}

	if requested == current {
		return fmt.Errorf("%w: order is already %s", ErrTransitionNotAllowed, current)
	}

	next, ok := NextStatus(current)
	if !ok || requested != next {
		return fmt.Errorf("%w: from %s the next status must be %s", ErrTransitionNotAllowed, current, next)
	}

	if !isPaid {
		return ErrOrderUnpaid
	}
	return nil
}

// ValidateCancel allows cancellation from awaiting payment, pending and
// preparing only. Once shipping has started the order cannot be cancelled.
func ValidateCancel(current models.OrderStatus) error {
	switch current {
	case models.OrderStatusCancelled:
		return ErrAlreadyCancelled
	case models.OrderStatusShipping, models.OrderStatusDelivered:
		return fmt.Errorf("%w: order is already %s", ErrTransitionNotAllowed, current)
	}
	return nil
}

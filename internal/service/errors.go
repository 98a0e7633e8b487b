package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrVariantNotFound      = errors.New("product size not available")
	ErrSpecialOrderNotFound = errors.New("special order not found")
	ErrCartItemNotFound     = errors.New("cart item not found")

	ErrCartEmpty       = errors.New("cart is empty")
	ErrQuantityInvalid = errors.New("quantity must be > 0")
	ErrInvalidSize     = errors.New("invalid size")
	ErrOutOfStock      = errors.New("not enough stock")

	ErrInvalidStatus        = errors.New("invalid status value")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrStatusNotSettable    = errors.New("status cannot be set via this endpoint")
	ErrAlreadyCancelled     = errors.New("order already cancelled")
	ErrOrderUnpaid          = errors.New("order is not paid")

	ErrPriceInvalid = errors.New("price must be > 0")

	ErrReturnNotFound        = errors.New("return request not found")
	ErrReturnNotEligible     = errors.New("order is not eligible for return")
	ErrReturnWindowClosed    = errors.New("return window has closed")
	ErrReturnItemDuplicate   = errors.New("order item already has a return request")
	ErrReturnQuantityInvalid = errors.New("return quantity exceeds purchased quantity")
	ErrReturnAlreadyReviewed = errors.New("return request already reviewed")
	ErrImagesInvalid         = errors.New("between 1 and 5 images are required")

	ErrEmailTaken         = errors.New("email already registered")
	ErrSignupNotFound     = errors.New("pending signup not found")
	ErrOTPInvalid         = errors.New("invalid otp code")
	ErrOTPExpired         = errors.New("otp code expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

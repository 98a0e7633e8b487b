package http

import (
	"errors"
	"net/http"

	"github.com/Jeng2004/t-double-project-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto the status taxonomy; anything
// unexpected becomes a logged 500 with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrOrderUnpaid):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrOrderItemNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrVariantNotFound),
		errors.Is(err, service.ErrSpecialOrderNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrReturnNotFound),
		errors.Is(err, service.ErrSignupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrReturnItemDuplicate),
		errors.Is(err, service.ErrReturnAlreadyReviewed),
		errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrTransitionNotAllowed),
		errors.Is(err, service.ErrStatusNotSettable),
		errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrInvalidSize),
		errors.Is(err, service.ErrPriceInvalid),
		errors.Is(err, service.ErrReturnNotEligible),
		errors.Is(err, service.ErrReturnWindowClosed),
		errors.Is(err, service.ErrReturnQuantityInvalid),
		errors.Is(err, service.ErrImagesInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

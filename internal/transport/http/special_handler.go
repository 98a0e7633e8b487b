package http

import (
	"net/http"
	"strconv"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SpecialOrderHandler struct {
	specials service.SpecialOrderService
	log      *zap.Logger
}

func NewSpecialOrderHandler(specials service.SpecialOrderService, log *zap.Logger) *SpecialOrderHandler {
	return &SpecialOrderHandler{specials: specials, log: log}
}

type createSpecialOrderRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
	Description string `json:"description" binding:"required"`
	Quantity    uint32 `json:"quantity" binding:"required"`
	Size        string `json:"size"`
	Notes       string `json:"notes"`
}

func (h *SpecialOrderHandler) Create(c *gin.Context) {
	var req createSpecialOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	so, err := h.specials.Create(c.Request.Context(), service.CreateSpecialOrderInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		Description: req.Description,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": so})
}

func (h *SpecialOrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid special order id"})
		return
	}
	so, err := h.specials.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": so})
}

func (h *SpecialOrderHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	f := service.ListFilter{Limit: limit, Offset: offset}
	if st := c.Query("status"); st != "" {
		status := models.OrderStatus(st)
		if !service.IsValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		f.Status = &status
	}

	orders, total, err := h.specials.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

type setPriceRequest struct {
	ID         string `json:"id" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required"`
}

// SetPrice fixes the quote and returns the order with its payment URL.
func (h *SpecialOrderHandler) SetPrice(c *gin.Context) {
	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid special order id"})
		return
	}

	so, err := h.specials.SetPrice(c.Request.Context(), id, req.PriceCents)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": so})
}

func (h *SpecialOrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid special order id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	requested := models.OrderStatus(req.Status)
	if !service.IsValidStatus(requested) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}

	so, err := h.specials.UpdateStatus(c.Request.Context(), id, requested)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": so})
}

type cancelSpecialOrderRequest struct {
	ID           string  `json:"id" binding:"required"`
	CancelReason *string `json:"cancel_reason"`
	RefundCents  *int64  `json:"refund_cents"`
}

func (h *SpecialOrderHandler) Cancel(c *gin.Context) {
	var req cancelSpecialOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid special order id"})
		return
	}

	so, err := h.specials.Cancel(c.Request.Context(), id, service.CancelInput{
		Reason:      req.CancelReason,
		RefundCents: req.RefundCents,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": so})
}

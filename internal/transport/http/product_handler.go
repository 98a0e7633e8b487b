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

type ProductHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewProductHandler(catalog service.CatalogService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

type variantRequest struct {
	Size       models.Size `json:"size" binding:"required"`
	PriceCents int64       `json:"price_cents"`
	Stock      int32       `json:"stock"`
}

type createProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	Variants    []variantRequest `json:"variants"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, service.VariantInput{
			Size:       v.Size,
			PriceCents: v.PriceCents,
			Stock:      v.Stock,
		})
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	products, total, err := h.catalog.ListProducts(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type stockRequest struct {
	Size       models.Size `json:"size" binding:"required"`
	Stock      *int32      `json:"stock"`
	Delta      *int32      `json:"delta"`
	PriceCents *int64      `json:"price_cents"`
}

// UpdateStock applies an absolute stock value, a relative delta, or a price
// change for one size.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	switch {
	case req.Stock != nil:
		err = h.catalog.SetStock(ctx, id, req.Size, *req.Stock)
	case req.Delta != nil:
		err = h.catalog.AdjustStock(ctx, id, req.Size, *req.Delta)
	case req.PriceCents != nil:
		err = h.catalog.SetPrice(ctx, id, req.Size, *req.PriceCents)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "specify stock, delta or price_cents"})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

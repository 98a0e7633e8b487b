package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReturnHandler struct {
	returns   service.ReturnService
	uploadDir string
	log       *zap.Logger
}

func NewReturnHandler(returns service.ReturnService, uploadDir string, log *zap.Logger) *ReturnHandler {
	return &ReturnHandler{returns: returns, uploadDir: uploadDir, log: log}
}

type returnItemPayload struct {
	OrderItemID string `json:"order_item_id"`
	Quantity    uint32 `json:"quantity"`
}

// Create accepts a multipart form: order_id (or special_order_id), reason,
// items (a JSON array), and 1 to 5 image files stored under the upload dir.
func (h *ReturnHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	in := service.CreateReturnInput{
		Reason: c.PostForm("reason"),
	}
	if v := c.PostForm("order_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		in.OrderID = &id
	}
	if v := c.PostForm("special_order_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid special order id"})
			return
		}
		in.SpecialOrderID = &id
	}
	if (in.OrderID == nil) == (in.SpecialOrderID == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "specify exactly one of order_id or special_order_id"})
		return
	}

	if raw := c.PostForm("items"); raw != "" {
		var payload []returnItemPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid items payload"})
			return
		}
		for _, it := range payload {
			itemID, err := uuid.Parse(it.OrderItemID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order item id"})
				return
			}
			in.Items = append(in.Items, service.ReturnItemInput{
				OrderItemID: itemID,
				Quantity:    it.Quantity,
			})
		}
	}

	files := form.File["images"]
	if len(files) < 1 || len(files) > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "between 1 and 5 images are required"})
		return
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		respondError(c, h.log, err)
		return
	}
	for _, f := range files {
		name := fmt.Sprintf("%s%s", uuid.NewString(), safeExt(f.Filename))
		dst := filepath.Join(h.uploadDir, name)
		if err := c.SaveUploadedFile(f, dst); err != nil {
			h.removeImages(in.Images)
			respondError(c, h.log, err)
			return
		}
		in.Images = append(in.Images, dst)
	}

	req, err := h.returns.Create(c.Request.Context(), in)
	if err != nil {
		// A rejected request must not leave its images behind.
		h.removeImages(in.Images)
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

func (h *ReturnHandler) removeImages(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			h.log.Warn("upload cleanup failed", zap.String("path", p), zap.Error(err))
		}
	}
}

func (h *ReturnHandler) List(c *gin.Context) {
	list, err := h.returns.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *ReturnHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id"})
		return
	}
	req, err := h.returns.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

type reviewReturnRequest struct {
	Status    string  `json:"status" binding:"required"`
	AdminNote *string `json:"admin_note"`
}

func (h *ReturnHandler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id"})
		return
	}
	var req reviewReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var approve bool
	switch models.ReturnStatus(req.Status) {
	case models.ReturnStatusApproved:
		approve = true
	case models.ReturnStatusRejected:
		approve = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}

	out, err := h.returns.Review(c.Request.Context(), id, approve, req.AdminNote)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": out})
}

func (h *ReturnHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id"})
		return
	}
	if err := h.returns.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}

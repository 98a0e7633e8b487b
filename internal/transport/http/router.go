package http

import (
	"net/http"

	"github.com/Jeng2004/t-double-project-sub000/internal/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Returns  *ReturnHandler
	Specials *SpecialOrderHandler
	Webhooks *WebhookHandler
}

func Router(h Handlers, tokens *token.Manager, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/verify-otp", h.Auth.VerifyOTP)
	r.POST("/auth/login", h.Auth.Login)

	r.GET("/products", h.Products.List)
	r.GET("/products/:id", h.Products.Get)

	// Webhooks are signature-verified, not token-authenticated.
	r.POST("/webhook", h.Webhooks.HandleOrders)
	r.POST("/special-orders/stripe/webhook", h.Webhooks.HandleSpecialOrders)

	authed := r.Group("/", AuthRequired(tokens, log))
	{
		authed.GET("/cart", h.Cart.Get)
		authed.POST("/cart/items", h.Cart.AddItem)
		authed.PATCH("/cart/items/:id", h.Cart.UpdateItem)
		authed.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		authed.POST("/orders", h.Orders.Checkout)
		authed.GET("/orders", h.Orders.List)
		authed.GET("/orders/:id", h.Orders.Get)
		authed.PATCH("/orders/:id", h.Orders.UpdateStatus)

		authed.POST("/orders/return", h.Returns.Create)
		authed.GET("/orders/return", h.Returns.List)
		authed.GET("/orders/return/:id", h.Returns.Get)
		authed.DELETE("/orders/return/:id", h.Returns.Delete)

		authed.POST("/special-orders", h.Specials.Create)
		authed.GET("/special-orders", h.Specials.List)
		authed.GET("/special-orders/:id", h.Specials.Get)
		authed.PATCH("/special-orders/cancel", h.Specials.Cancel)
	}

	admin := authed.Group("/", AdminOnly())
	{
		admin.POST("/products", h.Products.Create)
		admin.PUT("/products/:id", h.Products.Update)
		admin.DELETE("/products/:id", h.Products.Delete)
		admin.PATCH("/products/:id/stock", h.Products.UpdateStock)

		admin.PATCH("/cancel-orders", h.Orders.CancelWithRefund)
		admin.PATCH("/orders/return/:id", h.Returns.Review)

		admin.PUT("/special-orders", h.Specials.SetPrice)
		admin.PATCH("/special-orders/:id", h.Specials.UpdateStatus)
	}

	return r
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/handlers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/middleware"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupPaymentRoutes configures invoice and webhook routes.
func SetupPaymentRoutes(api *gin.RouterGroup, cfg *PaymentRouteConfig) {
	api.POST("/webhooks/payments", cfg.AuthMiddleware.RequireCallbackToken(), cfg.PaymentHandler.HandleWebhook)

	invoices := api.Group("/invoices")
	invoices.Use(cfg.AuthMiddleware.RequireUser())
	if cfg.RateLimiter != nil {
		invoices.Use(cfg.RateLimiter.Limit())
	}
	{
		invoices.POST("", cfg.PaymentHandler.CreateInvoice)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/handlers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/middleware"
)

// SubscriptionRouteConfig holds dependencies for subscription routes.
type SubscriptionRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimiter         *middleware.RateLimiter
}

// SetupSubscriptionRoutes configures the subscription management routes.
func SetupSubscriptionRoutes(api *gin.RouterGroup, cfg *SubscriptionRouteConfig) {
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(cfg.AuthMiddleware.RequireUser())
	if cfg.RateLimiter != nil {
		subscriptions.Use(cfg.RateLimiter.Limit())
	}
	{
		subscriptions.POST("", cfg.SubscriptionHandler.StartSubscription)
		subscriptions.GET("/:id", cfg.SubscriptionHandler.GetSubscription)
		subscriptions.GET("/:id/payments", cfg.SubscriptionHandler.ListPayments)
		subscriptions.GET("/:id/history", cfg.SubscriptionHandler.ListHistory)
		subscriptions.POST("/:id/cancel", cfg.SubscriptionHandler.CancelSubscription)
		subscriptions.POST("/:id/resume", cfg.SubscriptionHandler.ResumeSubscription)
	}
}

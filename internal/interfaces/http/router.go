package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/handlers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/middleware"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/routes"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/config"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine              *gin.Engine
	subscriptionHandler *handlers.SubscriptionHandler
	paymentHandler      *handlers.PaymentHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimiter         *middleware.RateLimiter
	allowedOrigins      []string
	logger              logger.Interface
}

func NewRouter(
	subscriptionHandler *handlers.SubscriptionHandler,
	paymentHandler *handlers.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	serverCfg config.ServerConfig,
	log logger.Interface,
) *Router {
	return &Router{
		engine:              gin.New(),
		subscriptionHandler: subscriptionHandler,
		paymentHandler:      paymentHandler,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		allowedOrigins:      serverCfg.AllowedOrigins,
		logger:              log,
	}
}

// SetupRoutes registers middleware and every route.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.CustomLogger(r.logger, "/health"))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.CORS(r.allowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	routes.SetupSubscriptionRoutes(api, &routes.SubscriptionRouteConfig{
		SubscriptionHandler: r.subscriptionHandler,
		AuthMiddleware:      r.authMiddleware,
		RateLimiter:         r.rateLimiter,
	})

	routes.SetupPaymentRoutes(api, &routes.PaymentRouteConfig{
		PaymentHandler: r.paymentHandler,
		AuthMiddleware: r.authMiddleware,
		RateLimiter:    r.rateLimiter,
	})
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

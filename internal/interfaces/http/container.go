package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/paymentprovider"
	paymentUsecases "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/usecases"
	subscriptionUsecases "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/cache"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/config"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/email"
	providerclient "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/paymentprovider"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/repository"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/scheduler"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/handlers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/middleware"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

// Container wires repositories, use cases, handlers and middleware together
// and owns the resources that must be released on shutdown.
type Container struct {
	db    *gorm.DB
	cfg   *config.Config
	log   logger.Interface
	redis *redis.Client

	router    *Router
	scheduler *scheduler.SchedulerManager
}

// NewContainer builds the full dependency graph. A redis failure is logged and
// the service runs without webhook deduplication and rate limiting.
func NewContainer(gormDB *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		db:  gormDB,
		cfg: cfg,
		log: log,
	}

	c.initRedis()

	subscriptionRepo := repository.NewSubscriptionRepository(gormDB, log)
	paymentRepo := repository.NewPaymentRepository(gormDB, log)
	historyRepo := repository.NewSubscriptionHistoryRepository(gormDB)
	txManager := db.NewTransactionManager(gormDB)

	provider := c.newPaymentProvider()

	historyRecorder := subscriptionUsecases.NewHistoryRecorder(historyRepo, txManager, log)
	failureMonitor := subscriptionUsecases.NewFailureMonitor(paymentRepo, subscriptionRepo, historyRecorder, log)
	if len(cfg.Notification.AdminEmails) > 0 {
		failureMonitor.SetAdminNotifier(email.NewSMTPNotifier(cfg.Email, cfg.Notification.AdminEmails, log))
	}

	retries := cfg.Billing.ConflictRetries

	startUC := subscriptionUsecases.NewStartSubscriptionUseCase(txManager, subscriptionRepo, paymentRepo, provider, historyRecorder, log)
	getUC := subscriptionUsecases.NewGetSubscriptionUseCase(subscriptionRepo, paymentRepo, historyRepo, log)

	cancelUC := subscriptionUsecases.NewCancelSubscriptionUseCase(txManager, subscriptionRepo, historyRecorder, log)
	cancelUC.SetRetryAttempts(retries)

	resumeUC := subscriptionUsecases.NewResumeSubscriptionUseCase(txManager, subscriptionRepo, paymentRepo, provider, historyRecorder, log)
	resumeUC.SetRetryAttempts(retries)

	webhookUC := subscriptionUsecases.NewProcessWebhookUseCase(txManager, subscriptionRepo, paymentRepo, historyRecorder, failureMonitor, log)
	webhookUC.SetRetryAttempts(retries)

	invoiceUC := paymentUsecases.NewCreateInvoiceUseCase(paymentRepo, provider, log)

	expireUC := subscriptionUsecases.NewExpireLapsedSubscriptionsUseCase(
		txManager, subscriptionRepo, historyRecorder,
		time.Duration(cfg.Billing.ExpiryGraceHours)*time.Hour, log,
	)
	expireUC.SetRetryAttempts(retries)

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		c.Shutdown()
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	sweepInterval := time.Duration(cfg.Billing.ExpirySweepMinutes) * time.Minute
	c.scheduler = schedulerManager
	if err := schedulerManager.RegisterSubscriptionJobs(expireUC, sweepInterval); err != nil {
		c.Shutdown()
		return nil, fmt.Errorf("failed to register subscription jobs: %w", err)
	}

	var rateLimiter *middleware.RateLimiter
	if c.redis != nil {
		ttl := time.Duration(cfg.Billing.WebhookDedupTTLHours) * time.Hour
		webhookUC.SetDeduplicator(cache.NewWebhookDeduplicator(c.redis, ttl))
		if cfg.Server.RateLimitPerMinute > 0 {
			rateLimiter = middleware.NewRateLimiter(c.redis, cfg.Server.RateLimitPerMinute, time.Minute)
		}
	}

	subscriptionHandler := handlers.NewSubscriptionHandler(startUC, getUC, cancelUC, resumeUC, log)
	paymentHandler := handlers.NewPaymentHandler(invoiceUC, webhookUC, log)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Provider.CallbackToken, log)

	c.router = NewRouter(subscriptionHandler, paymentHandler, authMiddleware, rateLimiter, cfg.Server, log)
	c.router.SetupRoutes()

	return c, nil
}

func (c *Container) initRedis() {
	if !c.cfg.Redis.Enabled {
		c.log.Infow("redis disabled, webhook deduplication relies on the database only")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.GetAddr(),
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warnw("redis unreachable, continuing without it", "addr", c.cfg.Redis.GetAddr(), "error", err)
		_ = client.Close()
		return
	}

	c.redis = client
	c.log.Infow("redis connected", "addr", c.cfg.Redis.GetAddr())
}

func (c *Container) newPaymentProvider() paymentprovider.PaymentProvider {
	if c.cfg.Provider.Driver == "http" {
		c.log.Infow("using http payment provider", "base_url", c.cfg.Provider.BaseURL)
		return providerclient.NewHTTPClient(c.cfg.Provider, c.log)
	}
	c.log.Warnw("using mock payment provider")
	return paymentprovider.NewMockProvider(true)
}

// Router returns the configured HTTP router.
func (c *Container) Router() *Router {
	return c.router
}

// StartBackgroundJobs starts the scheduled maintenance jobs.
func (c *Container) StartBackgroundJobs() {
	c.scheduler.Start()
}

// Shutdown releases resources owned by the container. The database is closed by its owner.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		if err := c.scheduler.Stop(); err != nil {
			c.log.Warnw("failed to stop scheduler", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}

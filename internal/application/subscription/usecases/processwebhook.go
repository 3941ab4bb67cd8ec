package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/webhook"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

type ProcessWebhookCommand struct {
	Event webhook.Event
}

type ProcessWebhookResult struct {
	Outcome        webhook.Outcome
	SubscriptionID uint
	PaymentID      uint
}

// ProcessWebhookUseCase routes provider events to the subscription state machine. Each event
// is applied in one transaction that locks the subscription row; version conflicts are retried.
// A returned error is transient and should be surfaced to the provider so that it redelivers.
type ProcessWebhookUseCase struct {
	txManager        db.Transactor
	subscriptionRepo subscription.Repository
	paymentRepo      payment.PaymentRepository
	history          *HistoryRecorder
	failureMonitor   *FailureMonitor
	deduplicator     WebhookDeduplicator // Optional
	retryAttempts    int
	now              func() time.Time
	logger           logger.Interface
}

func NewProcessWebhookUseCase(
	txManager db.Transactor,
	subscriptionRepo subscription.Repository,
	paymentRepo payment.PaymentRepository,
	history *HistoryRecorder,
	failureMonitor *FailureMonitor,
	logger logger.Interface,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		history:          history,
		failureMonitor:   failureMonitor,
		retryAttempts:    defaultConflictRetries,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

// SetDeduplicator sets the delivery deduplicator (optional dependency injection)
func (uc *ProcessWebhookUseCase) SetDeduplicator(d WebhookDeduplicator) {
	uc.deduplicator = d
}

// SetRetryAttempts overrides how many times a version conflict is attempted.
func (uc *ProcessWebhookUseCase) SetRetryAttempts(attempts int) {
	if attempts > 0 {
		uc.retryAttempts = attempts
	}
}

// SetClock overrides the time source.
func (uc *ProcessWebhookUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// eventScope carries per-attempt state through a handler. afterCommit callbacks only run
// once the transaction has committed.
type eventScope struct {
	event       webhook.Event
	now         time.Time
	result      ProcessWebhookResult
	afterCommit []func()
}

func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, cmd ProcessWebhookCommand) (*ProcessWebhookResult, error) {
	ev := cmd.Event
	start := time.Now()
	log := uc.logger.With("event", ev.Name, "data_id", ev.Data.ID)

	if ev.Kind == webhook.EventUnknown {
		log.Warnw("unhandled webhook event")
		return &ProcessWebhookResult{Outcome: webhook.OutcomeUnhandled}, nil
	}
	if ev.Data.ID == "" || (ev.Kind.IsCycle() && ev.Data.PlanID == "") {
		log.Warnw("webhook event missing correlation id", "plan_id", ev.Data.PlanID)
		return &ProcessWebhookResult{Outcome: webhook.OutcomeIgnored}, nil
	}

	acquired := uc.acquire(ctx, ev, log)
	if !acquired {
		log.Infow("webhook delivery already accepted", "outcome", webhook.OutcomeDuplicate)
		return &ProcessWebhookResult{Outcome: webhook.OutcomeDuplicate}, nil
	}

	var scope *eventScope
	err := withConflictRetry(ctx, uc.retryAttempts, func(ctx context.Context) error {
		scope = &eventScope{event: ev, now: uc.now()}
		return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			outcome, err := uc.dispatch(txCtx, scope)
			scope.result.Outcome = outcome
			return err
		})
	})
	if err != nil {
		uc.release(ev, log)
		log.Errorw("failed to process webhook event",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("failed to process webhook event %s: %w", ev.Name, err)
	}

	for _, fn := range scope.afterCommit {
		fn()
	}

	// Only applied deliveries stay remembered; a miss may resolve once the payment row exists.
	if scope.result.Outcome == webhook.OutcomeNotFound {
		uc.release(ev, log)
	}

	log.Infow("webhook event processed",
		"outcome", scope.result.Outcome,
		"subscription_id", scope.result.SubscriptionID,
		"payment_id", scope.result.PaymentID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	result := scope.result
	return &result, nil
}

func (uc *ProcessWebhookUseCase) dispatch(ctx context.Context, scope *eventScope) (webhook.Outcome, error) {
	switch scope.event.Kind {
	case webhook.EventPlanActivated:
		return uc.handlePlanActivated(ctx, scope)
	case webhook.EventPlanInactivated, webhook.EventPlanStopped:
		return uc.handlePlanDeactivated(ctx, scope)
	case webhook.EventCycleCreated:
		return uc.handleCycleCreated(ctx, scope)
	case webhook.EventCycleSucceeded:
		return uc.handleCycleSucceeded(ctx, scope)
	case webhook.EventCycleFailed:
		return uc.handleCycleFailed(ctx, scope)
	case webhook.EventUnknown:
		return webhook.OutcomeUnhandled, nil
	}
	return webhook.OutcomeUnhandled, nil
}

func (uc *ProcessWebhookUseCase) acquire(ctx context.Context, ev webhook.Event, log logger.Interface) bool {
	if uc.deduplicator == nil {
		return true
	}
	ok, err := uc.deduplicator.TryAcquire(ctx, ev.Name, ev.Data.ID)
	if err != nil {
		log.Warnw("webhook deduplication unavailable, processing anyway", "error", err)
		return true
	}
	return ok
}

func (uc *ProcessWebhookUseCase) release(ev webhook.Event, log logger.Interface) {
	if uc.deduplicator == nil {
		return
	}
	// The request context may already be cancelled when processing failed.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := uc.deduplicator.Release(ctx, ev.Name, ev.Data.ID); err != nil {
		log.Warnw("failed to release webhook deduplication key", "error", err)
	}
}

// lockPlan resolves a plan correlation key to its plan payment and the subscription it bills.
// The subscription is read under a row lock and the payment is re-read afterwards, so both
// reflect every write committed before the lock was granted. Either result is nil on a miss.
func (uc *ProcessWebhookUseCase) lockPlan(ctx context.Context, planExternalID string) (*payment.Payment, *subscription.Subscription, error) {
	plan, err := uc.paymentRepo.GetByExternalID(ctx, planSource, planExternalID)
	if err != nil {
		return nil, nil, err
	}
	if plan == nil || plan.SubscriptionID() == nil {
		return nil, nil, nil
	}

	sub, err := uc.subscriptionRepo.GetByIDForUpdate(ctx, *plan.SubscriptionID())
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, nil
	}

	plan, err = uc.paymentRepo.GetByID(ctx, plan.ID())
	if err != nil {
		return nil, nil, err
	}
	return plan, sub, nil
}

// isCurrentPlan reports whether plan is the newest plan payment of its subscription.
// Plans superseded by a resume must not drive the subscription any more.
func (uc *ProcessWebhookUseCase) isCurrentPlan(ctx context.Context, plan *payment.Payment) (bool, error) {
	latest, err := uc.paymentRepo.GetLatestPlanPayment(ctx, *plan.SubscriptionID())
	if err != nil {
		return false, err
	}
	return latest != nil && latest.ID() == plan.ID(), nil
}

package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

const (
	DefaultExpiryGrace = 72 * time.Hour
	expireBatchSize    = 100
)

// ExpireLapsedSubscriptionsUseCase expires ACTIVE subscriptions whose paid period ended more
// than the grace period ago without a successful cycle. It runs as a scheduled batch job and
// catches renewals the provider never reported.
type ExpireLapsedSubscriptionsUseCase struct {
	txManager        db.Transactor
	subscriptionRepo subscription.Repository
	history          *HistoryRecorder
	grace            time.Duration
	retryAttempts    int
	now              func() time.Time
	logger           logger.Interface
}

func NewExpireLapsedSubscriptionsUseCase(
	txManager db.Transactor,
	subscriptionRepo subscription.Repository,
	history *HistoryRecorder,
	grace time.Duration,
	logger logger.Interface,
) *ExpireLapsedSubscriptionsUseCase {
	if grace <= 0 {
		grace = DefaultExpiryGrace
	}
	return &ExpireLapsedSubscriptionsUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		history:          history,
		grace:            grace,
		retryAttempts:    defaultConflictRetries,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

// SetClock overrides the time source.
func (uc *ExpireLapsedSubscriptionsUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// SetRetryAttempts overrides how many times a version conflict is attempted.
func (uc *ExpireLapsedSubscriptionsUseCase) SetRetryAttempts(attempts int) {
	if attempts > 0 {
		uc.retryAttempts = attempts
	}
}

// Execute processes one batch and returns how many subscriptions were expired.
func (uc *ExpireLapsedSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := uc.now().Add(-uc.grace)

	ids, err := uc.subscriptionRepo.ListLapsedIDs(ctx, cutoff, expireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find lapsed subscriptions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	uc.logger.Infow("found lapsed subscriptions to process", "count", len(ids))

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}

		done, err := uc.expireOne(ctx, id)
		if err != nil {
			uc.logger.Errorw("failed to expire lapsed subscription",
				"subscription_id", id,
				"error", err,
			)
			continue
		}
		if done {
			expired++
		}
	}

	return expired, nil
}

// expireOne re-checks the subscription under its row lock, since a cycle may have
// renewed it after the batch was listed.
func (uc *ExpireLapsedSubscriptionsUseCase) expireOne(ctx context.Context, id uint) (bool, error) {
	var expired bool

	err := withConflictRetry(ctx, uc.retryAttempts, func(ctx context.Context) error {
		expired = false
		return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			now := uc.now()

			sub, err := uc.subscriptionRepo.GetByIDForUpdate(txCtx, id)
			if err != nil {
				return err
			}
			if sub == nil || sub.Status() != vo.StatusActive {
				return nil
			}
			paidThrough := sub.PaidThrough()
			if paidThrough == nil || !paidThrough.Before(now.Add(-uc.grace)) {
				return nil
			}

			oldStatus := sub.Status()
			if err := sub.Expire(now); err != nil {
				return err
			}
			if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
				return err
			}
			uc.history.Record(txCtx, sub, subscription.ActionExpired, oldStatus, subscription.ReasonBillingPeriodLapsed, now)

			uc.logger.Infow("lapsed subscription expired",
				"subscription_id", sub.ID(),
				"user_id", sub.UserID(),
				"paid_through", paidThrough,
			)
			expired = true
			return nil
		})
	})

	return expired, err
}

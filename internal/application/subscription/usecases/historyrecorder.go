package usecases

import (
	"context"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

// HistoryRecorder appends audit entries without ever failing the transition that produced them.
// Inside a transaction the write runs in its own savepoint, so it commits or rolls back with
// the transition while its own failure is discarded.
type HistoryRecorder struct {
	historyRepo subscription.HistoryRepository
	txManager   db.Transactor
	logger      logger.Interface
}

func NewHistoryRecorder(
	historyRepo subscription.HistoryRepository,
	txManager db.Transactor,
	logger logger.Interface,
) *HistoryRecorder {
	return &HistoryRecorder{
		historyRepo: historyRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

func (r *HistoryRecorder) Record(
	ctx context.Context,
	sub *subscription.Subscription,
	action string,
	oldStatus vo.SubscriptionStatus,
	reason string,
	now time.Time,
) {
	entry, err := subscription.NewSubscriptionHistory(sub.ID(), action, oldStatus, sub.Status(), reason, now)
	if err != nil {
		r.logger.Warnw("failed to build subscription history",
			"subscription_id", sub.ID(),
			"action", action,
			"error", err,
		)
		return
	}

	err = r.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return r.historyRepo.Create(txCtx, entry)
	})
	if err != nil {
		r.logger.Warnw("failed to record subscription history",
			"subscription_id", sub.ID(),
			"action", action,
			"old_status", oldStatus,
			"new_status", sub.Status(),
			"error", err,
		)
	}
}

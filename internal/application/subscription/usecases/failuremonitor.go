package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/goroutine"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

const (
	// FailureThreshold failed cycles inside FailureWindow expire a subscription.
	FailureThreshold = 3
	FailureWindow    = 30 * 24 * time.Hour

	notifyTimeout = 30 * time.Second
)

// FailureVerdict is the result of evaluating a subscription after a failed cycle.
type FailureVerdict struct {
	Failures int64
	Expired  bool
}

// FailureMonitor expires subscriptions that keep failing to pay.
type FailureMonitor struct {
	paymentRepo      payment.PaymentRepository
	subscriptionRepo subscription.Repository
	history          *HistoryRecorder
	adminNotifier    AdminNotifier // Optional
	logger           logger.Interface
}

func NewFailureMonitor(
	paymentRepo payment.PaymentRepository,
	subscriptionRepo subscription.Repository,
	history *HistoryRecorder,
	logger logger.Interface,
) *FailureMonitor {
	return &FailureMonitor{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		history:          history,
		logger:           logger,
	}
}

// SetAdminNotifier sets the admin notifier (optional dependency injection)
func (m *FailureMonitor) SetAdminNotifier(notifier AdminNotifier) {
	m.adminNotifier = notifier
}

// Evaluate counts the failed cycles of planExternalID in the trailing window, including one
// recorded in the current transaction, and expires the subscription once the threshold is reached.
// Failures of a plan replaced by a resume do not count against its successor.
// The caller must hold the subscription row lock.
func (m *FailureMonitor) Evaluate(ctx context.Context, sub *subscription.Subscription, planExternalID string, now time.Time) (FailureVerdict, error) {
	since := now.Add(-FailureWindow)
	failures, err := m.paymentRepo.CountByPlanAndStatusSince(ctx, sub.ID(), planExternalID, vo.PaymentStatusFailed, since)
	if err != nil {
		return FailureVerdict{}, fmt.Errorf("failed to count failed payments: %w", err)
	}

	verdict := FailureVerdict{Failures: failures}
	if failures < FailureThreshold || !sub.Status().IsLive() {
		return verdict, nil
	}

	oldStatus := sub.Status()
	if err := sub.Expire(now); err != nil {
		return verdict, err
	}
	if err := m.subscriptionRepo.Update(ctx, sub); err != nil {
		return verdict, err
	}
	m.history.Record(ctx, sub, subscription.ActionExpired, oldStatus, subscription.ReasonMultiplePaymentFailures, now)

	m.logger.Warnw("subscription expired after repeated payment failures",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"plan_external_id", planExternalID,
		"failures", failures,
		"window_days", int(FailureWindow.Hours()/24),
	)

	verdict.Expired = true
	return verdict, nil
}

// NotifySuspended tells admins about a suspension. It must be called after the transaction
// that expired the subscription has committed; delivery is asynchronous and failures are only logged.
func (m *FailureMonitor) NotifySuspended(notice SubscriptionSuspendedNotice) {
	if m.adminNotifier == nil {
		return
	}

	goroutine.Detached(m.logger, "failure-monitor-notify-admins", notifyTimeout, func(ctx context.Context) {
		if err := m.adminNotifier.NotifySubscriptionSuspended(ctx, notice); err != nil {
			m.logger.Warnw("failed to notify admins about suspended subscription",
				"subscription_id", notice.SubscriptionID,
				"error", err,
			)
		}
	})
}

package usecases

import (
	"context"
	"time"
)

// AdminNotifier is told about subscriptions the failure monitor suspended.
type AdminNotifier interface {
	NotifySubscriptionSuspended(ctx context.Context, notice SubscriptionSuspendedNotice) error
}

// SubscriptionSuspendedNotice contains data for a suspension notification
type SubscriptionSuspendedNotice struct {
	SubscriptionID    uint
	UserID            uint
	Plan              string
	FailedPayments    int64
	Window            time.Duration
	LastFailureReason string
	SuspendedAt       time.Time
}

// WebhookDeduplicator remembers deliveries that were already accepted. It is an
// optimization in front of the database idempotency checks, never a replacement for them.
type WebhookDeduplicator interface {
	// TryAcquire returns false when the delivery was seen before.
	TryAcquire(ctx context.Context, event, id string) (bool, error)
	// Release forgets a delivery so that a provider retry is processed again.
	Release(ctx context.Context, event, id string) error
}

package subscription

import (
	"context"
	"time"
)

// Repository persists Subscription aggregates. Get methods return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	// GetByIDForUpdate reads the row under a row lock; it must run inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*Subscription, error)
	// GetLiveByUserID returns the user's TRIAL or ACTIVE subscription, if any.
	GetLiveByUserID(ctx context.Context, userID uint) (*Subscription, error)
	// Update persists sub when its stored version is sub.Version()-1, otherwise ErrVersionConflict.
	Update(ctx context.Context, sub *Subscription) error
	// ListLapsedIDs returns ACTIVE subscriptions whose paid period ended before the given instant.
	ListLapsedIDs(ctx context.Context, before time.Time, limit int) ([]uint, error)
}

type HistoryRepository interface {
	Create(ctx context.Context, history *SubscriptionHistory) error
	ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*SubscriptionHistory, error)
}

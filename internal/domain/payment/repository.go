package payment

import (
	"context"
	"time"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
)

// PaymentRepository persists the payment ledger. Get methods return (nil, nil) when no row matches.
type PaymentRepository interface {
	// Create returns ErrDuplicateExternalID when (source, external_id) is already recorded.
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetByExternalID(ctx context.Context, source vo.Source, externalID string) (*Payment, error)
	// GetLatestPlanPayment returns the newest plan payment of a subscription.
	GetLatestPlanPayment(ctx context.Context, subscriptionID uint) (*Payment, error)
	// ListBySubscriptionID returns payments newest first.
	ListBySubscriptionID(ctx context.Context, subscriptionID uint, limit, offset int) ([]*Payment, int64, error)
	// CountByPlanAndStatusSince counts the subscription's cycle payments billed under one plan.
	CountByPlanAndStatusSince(ctx context.Context, subscriptionID uint, planExternalID string, status vo.PaymentStatus, since time.Time) (int64, error)
}

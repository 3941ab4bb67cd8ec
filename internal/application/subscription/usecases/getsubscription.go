package usecases

import (
	"context"
	"fmt"

	paymentdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

type GetSubscriptionQuery struct {
	SubscriptionID uint
	UserID         uint
}

type ListSubscriptionPaymentsQuery struct {
	SubscriptionID uint
	UserID         uint
	Limit          int
	Offset         int
}

// GetSubscriptionUseCase serves the read surfaces of one subscription to its owner.
type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	paymentRepo      payment.PaymentRepository
	historyRepo      subscription.HistoryRepository
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	paymentRepo payment.PaymentRepository,
	historyRepo subscription.HistoryRepository,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, query GetSubscriptionQuery) (*dto.SubscriptionDTO, error) {
	sub, err := uc.load(ctx, query.SubscriptionID, query.UserID)
	if err != nil {
		return nil, err
	}
	return dto.ToSubscriptionDTO(sub), nil
}

// ListPayments returns the subscription's payments newest first with the total count.
func (uc *GetSubscriptionUseCase) ListPayments(ctx context.Context, query ListSubscriptionPaymentsQuery) ([]*paymentdto.PaymentDTO, int64, error) {
	if _, err := uc.load(ctx, query.SubscriptionID, query.UserID); err != nil {
		return nil, 0, err
	}

	payments, total, err := uc.paymentRepo.ListBySubscriptionID(ctx, query.SubscriptionID, query.Limit, query.Offset)
	if err != nil {
		uc.logger.Errorw("failed to list subscription payments", "error", err, "subscription_id", query.SubscriptionID)
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return paymentdto.ToPaymentDTOList(payments), total, nil
}

// ListHistory returns the subscription's audit trail oldest first.
func (uc *GetSubscriptionUseCase) ListHistory(ctx context.Context, query GetSubscriptionQuery) ([]*dto.HistoryDTO, error) {
	if _, err := uc.load(ctx, query.SubscriptionID, query.UserID); err != nil {
		return nil, err
	}

	entries, err := uc.historyRepo.ListBySubscriptionID(ctx, query.SubscriptionID)
	if err != nil {
		uc.logger.Errorw("failed to list subscription history", "error", err, "subscription_id", query.SubscriptionID)
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return dto.ToHistoryDTOList(entries), nil
}

func (uc *GetSubscriptionUseCase) load(ctx context.Context, subscriptionID, userID uint) (*subscription.Subscription, error) {
	sub, err := uc.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_id", subscriptionID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}
	if !sub.IsOwnedBy(userID) {
		return nil, apperrors.NewForbiddenError("subscription belongs to another user")
	}
	return sub, nil
}

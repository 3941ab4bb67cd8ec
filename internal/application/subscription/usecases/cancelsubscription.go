package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	SubscriptionID uint
	UserID         uint
	Reason         string
}

type CancelSubscriptionUseCase struct {
	txManager        db.Transactor
	subscriptionRepo subscription.Repository
	history          *HistoryRecorder
	retryAttempts    int
	now              func() time.Time
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	txManager db.Transactor,
	subscriptionRepo subscription.Repository,
	history *HistoryRecorder,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		history:          history,
		retryAttempts:    defaultConflictRetries,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

// SetClock overrides the time source.
func (uc *CancelSubscriptionUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// SetRetryAttempts overrides how many times a version conflict is attempted.
func (uc *CancelSubscriptionUseCase) SetRetryAttempts(attempts int) {
	if attempts > 0 {
		uc.retryAttempts = attempts
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	var sub *subscription.Subscription

	err := withConflictRetry(ctx, uc.retryAttempts, func(ctx context.Context) error {
		return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			now := uc.now()

			var err error
			sub, err = uc.subscriptionRepo.GetByIDForUpdate(txCtx, cmd.SubscriptionID)
			if err != nil {
				return err
			}
			if sub == nil {
				return apperrors.NewNotFoundError("subscription not found")
			}
			if !sub.IsOwnedBy(cmd.UserID) {
				return apperrors.NewForbiddenError("subscription belongs to another user")
			}
			if sub.Status() == vo.StatusCancelled {
				return nil
			}

			oldStatus := sub.Status()
			if err := sub.Cancel(cmd.Reason, now); err != nil {
				switch {
				case errors.Is(err, subscription.ErrCancelReasonRequired):
					return apperrors.NewValidationError("cancel reason is required")
				case errors.Is(err, subscription.ErrInvalidStatusTransition):
					return apperrors.NewInvalidStateError("subscription cannot be cancelled", err.Error())
				}
				return err
			}
			if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
				return err
			}
			uc.history.Record(txCtx, sub, subscription.ActionCancelled, oldStatus, cmd.Reason, now)
			return nil
		})
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to cancel subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	uc.logger.Infow("subscription cancelled",
		"subscription_id", sub.ID(),
		"reason", cmd.Reason,
		"status", sub.Status(),
	)

	return dto.ToSubscriptionDTO(sub), nil
}

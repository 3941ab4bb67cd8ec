package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	paymentdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/paymentprovider"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

type ResumeSubscriptionCommand struct {
	SubscriptionID uint
	UserID         uint
}

// ResumeSubscriptionUseCase re-bills an EXPIRED subscription. A new plan payment is issued
// from the latest plan payment's amount and the subscription returns to TRIAL until the new
// plan is activated.
type ResumeSubscriptionUseCase struct {
	txManager        db.Transactor
	subscriptionRepo subscription.Repository
	paymentRepo      payment.PaymentRepository
	provider         paymentprovider.PaymentProvider
	history          *HistoryRecorder
	retryAttempts    int
	now              func() time.Time
	logger           logger.Interface
}

func NewResumeSubscriptionUseCase(
	txManager db.Transactor,
	subscriptionRepo subscription.Repository,
	paymentRepo payment.PaymentRepository,
	provider paymentprovider.PaymentProvider,
	history *HistoryRecorder,
	logger logger.Interface,
) *ResumeSubscriptionUseCase {
	return &ResumeSubscriptionUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		provider:         provider,
		history:          history,
		retryAttempts:    defaultConflictRetries,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

// SetClock overrides the time source.
func (uc *ResumeSubscriptionUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// SetRetryAttempts overrides how many times a version conflict is attempted.
func (uc *ResumeSubscriptionUseCase) SetRetryAttempts(attempts int) {
	if attempts > 0 {
		uc.retryAttempts = attempts
	}
}

func (uc *ResumeSubscriptionUseCase) Execute(ctx context.Context, cmd ResumeSubscriptionCommand) (*dto.CheckoutDTO, error) {
	sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}
	if !sub.IsOwnedBy(cmd.UserID) {
		return nil, apperrors.NewForbiddenError("subscription belongs to another user")
	}
	if sub.Status() != vo.StatusExpired {
		return nil, apperrors.NewInvalidStateError("only expired subscriptions can be resumed",
			fmt.Sprintf("subscription is %s", sub.Status()))
	}

	template, err := uc.paymentRepo.GetLatestPlanPayment(ctx, sub.ID())
	if err != nil {
		uc.logger.Errorw("failed to get billing history", "error", err, "subscription_id", sub.ID())
		return nil, fmt.Errorf("failed to get billing history: %w", err)
	}
	if template == nil {
		return nil, apperrors.NewNotFoundError("no billing history to resume from")
	}

	// Nothing is written until the provider accepted the request.
	referenceID := uuid.NewString()
	interval, intervalCount := sub.Plan().BillingInterval()
	resp, err := uc.provider.CreatePaymentRequest(ctx, paymentprovider.CreatePaymentRequest{
		ReferenceID:   referenceID,
		UserID:        sub.UserID(),
		Amount:        template.Amount(),
		Interval:      interval,
		IntervalCount: intervalCount,
		Description:   fmt.Sprintf("%s subscription (resumed)", sub.Plan()),
	})
	if err != nil {
		uc.logger.Errorw("failed to create payment request for resume",
			"subscription_id", sub.ID(),
			"reference_id", referenceID,
			"error", err,
		)
		return nil, apperrors.NewProviderUnavailableError("payment provider unavailable", err.Error())
	}

	var newPayment *payment.Payment
	err = withConflictRetry(ctx, uc.retryAttempts, func(ctx context.Context) error {
		return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			now := uc.now()

			locked, err := uc.subscriptionRepo.GetByIDForUpdate(txCtx, cmd.SubscriptionID)
			if err != nil {
				return err
			}
			if locked == nil {
				return apperrors.NewNotFoundError("subscription not found")
			}
			if locked.Status() != vo.StatusExpired {
				return apperrors.NewInvalidStateError("only expired subscriptions can be resumed",
					fmt.Sprintf("subscription is %s", locked.Status()))
			}

			newPayment, err = payment.NewPlanPayment(locked.UserID(), locked.ID(), resp.ID, template.Amount(), resp.PaymentLink, now)
			if err != nil {
				return err
			}
			newPayment.AppendMetadata(metadataEventPlanRequested, map[string]any{
				"reference_id": referenceID,
				"plan":         locked.Plan().String(),
				"payment_link": resp.PaymentLink,
				"resumed_from": template.ExternalID(),
			}, now)
			if err := uc.paymentRepo.Create(txCtx, newPayment); err != nil {
				return err
			}

			oldStatus := locked.Status()
			if err := locked.RestartTrial(now); err != nil {
				return err
			}
			if err := uc.subscriptionRepo.Update(txCtx, locked); err != nil {
				return err
			}
			uc.history.Record(txCtx, locked, subscription.ActionResumed, oldStatus, "resumed by user", now)

			sub = locked
			return nil
		})
	})
	if err != nil {
		uc.logger.Errorw("failed to resume subscription after payment request was issued",
			"subscription_id", cmd.SubscriptionID,
			"reference_id", referenceID,
			"provider_plan_id", resp.ID,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		if errors.Is(err, payment.ErrDuplicateExternalID) {
			return nil, apperrors.NewConflictError("payment request already recorded", resp.ID)
		}
		return nil, fmt.Errorf("failed to resume subscription: %w", err)
	}

	uc.logger.Infow("subscription resumed",
		"subscription_id", sub.ID(),
		"payment_id", newPayment.ID(),
		"provider_plan_id", resp.ID,
		"template_payment_id", template.ID(),
	)

	return &dto.CheckoutDTO{
		Subscription: dto.ToSubscriptionDTO(sub),
		Payment:      paymentdto.ToPaymentDTO(newPayment),
		PaymentLink:  resp.PaymentLink,
	}, nil
}

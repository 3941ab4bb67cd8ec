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
	paymentvo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

const metadataEventPlanRequested = "plan.requested"

type StartSubscriptionCommand struct {
	UserID   uint
	Plan     string
	Amount   int64 // minor units
	Currency string
}

// StartSubscriptionUseCase issues the first payment request of a user and records the
// TRIAL subscription with its PENDING plan payment.
type StartSubscriptionUseCase struct {
	txManager        db.Transactor
	subscriptionRepo subscription.Repository
	paymentRepo      payment.PaymentRepository
	provider         paymentprovider.PaymentProvider
	history          *HistoryRecorder
	now              func() time.Time
	logger           logger.Interface
}

func NewStartSubscriptionUseCase(
	txManager db.Transactor,
	subscriptionRepo subscription.Repository,
	paymentRepo payment.PaymentRepository,
	provider paymentprovider.PaymentProvider,
	history *HistoryRecorder,
	logger logger.Interface,
) *StartSubscriptionUseCase {
	return &StartSubscriptionUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		provider:         provider,
		history:          history,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

// SetClock overrides the time source.
func (uc *StartSubscriptionUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *StartSubscriptionUseCase) Execute(ctx context.Context, cmd StartSubscriptionCommand) (*dto.CheckoutDTO, error) {
	plan, err := vo.NewPlan(cmd.Plan)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid plan", err.Error())
	}
	amount, err := paymentvo.NewMoney(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid amount", err.Error())
	}

	live, err := uc.subscriptionRepo.GetLiveByUserID(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to check existing subscription", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if live != nil {
		return nil, apperrors.NewInvalidStateError("user already has a live subscription",
			fmt.Sprintf("subscription %d is %s", live.ID(), live.Status()))
	}

	// The provider is called before anything is written, so a provider failure leaves no trace.
	referenceID := uuid.NewString()
	interval, intervalCount := plan.BillingInterval()
	resp, err := uc.provider.CreatePaymentRequest(ctx, paymentprovider.CreatePaymentRequest{
		ReferenceID:   referenceID,
		UserID:        cmd.UserID,
		Amount:        amount,
		Interval:      interval,
		IntervalCount: intervalCount,
		Description:   fmt.Sprintf("%s subscription", plan),
	})
	if err != nil {
		uc.logger.Errorw("failed to create payment request",
			"user_id", cmd.UserID,
			"reference_id", referenceID,
			"error", err,
		)
		return nil, apperrors.NewProviderUnavailableError("payment provider unavailable", err.Error())
	}

	var (
		sub         *subscription.Subscription
		planPayment *payment.Payment
	)
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := uc.now()

		existing, err := uc.subscriptionRepo.GetLiveByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.NewInvalidStateError("user already has a live subscription")
		}

		sub, err = subscription.NewSubscription(cmd.UserID, plan, now)
		if err != nil {
			return apperrors.NewValidationError("invalid subscription", err.Error())
		}
		if err := uc.subscriptionRepo.Create(txCtx, sub); err != nil {
			return err
		}

		planPayment, err = payment.NewPlanPayment(cmd.UserID, sub.ID(), resp.ID, amount, resp.PaymentLink, now)
		if err != nil {
			return apperrors.NewValidationError("invalid payment", err.Error())
		}
		planPayment.AppendMetadata(metadataEventPlanRequested, map[string]any{
			"reference_id": referenceID,
			"plan":         plan.String(),
			"payment_link": resp.PaymentLink,
		}, now)
		if err := uc.paymentRepo.Create(txCtx, planPayment); err != nil {
			return err
		}

		uc.history.Record(txCtx, sub, subscription.ActionCreated, "", "payment request issued", now)
		return nil
	})
	if err != nil {
		// The provider already holds a request nobody will pay; keep enough to reconcile it by hand.
		uc.logger.Errorw("failed to persist subscription after payment request was issued",
			"user_id", cmd.UserID,
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
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("subscription started",
		"subscription_id", sub.ID(),
		"user_id", cmd.UserID,
		"plan", plan,
		"payment_id", planPayment.ID(),
		"provider_plan_id", resp.ID,
	)

	return &dto.CheckoutDTO{
		Subscription: dto.ToSubscriptionDTO(sub),
		Payment:      paymentdto.ToPaymentDTO(planPayment),
		PaymentLink:  resp.PaymentLink,
	}, nil
}

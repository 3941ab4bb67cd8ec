package usecases

import (
	"context"
	"errors"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/webhook"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	paymentvo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
)

func (uc *ProcessWebhookUseCase) handleCycleCreated(ctx context.Context, scope *eventScope) (webhook.Outcome, error) {
	outcome, _, _, err := uc.recordCycle(ctx, scope, paymentvo.PaymentStatusPending)
	return outcome, err
}

// handleCycleSucceeded records the paid cycle and extends the subscription from its previous expiry.
func (uc *ProcessWebhookUseCase) handleCycleSucceeded(ctx context.Context, scope *eventScope) (webhook.Outcome, error) {
	outcome, _, sub, err := uc.recordCycle(ctx, scope, paymentvo.PaymentStatusPaid)
	if err != nil || outcome != webhook.OutcomeProcessed {
		return outcome, err
	}

	if sub.Status() == vo.StatusCancelled {
		uc.logger.Warnw("paid cycle recorded for a cancelled subscription",
			"subscription_id", sub.ID(),
			"cycle_id", scope.event.Data.ID,
		)
		return outcome, nil
	}

	oldStatus := sub.Status()
	if err := sub.ExtendByCycle(scope.now); err != nil {
		return "", err
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return "", err
	}

	action := subscription.ActionRenewed
	if oldStatus != vo.StatusActive {
		action = subscription.ActionActivated
	}
	uc.history.Record(ctx, sub, action, oldStatus, "cycle succeeded", scope.now)
	return outcome, nil
}

// handleCycleFailed records the failed cycle and lets the failure monitor decide on suspension.
func (uc *ProcessWebhookUseCase) handleCycleFailed(ctx context.Context, scope *eventScope) (webhook.Outcome, error) {
	outcome, cycle, sub, err := uc.recordCycle(ctx, scope, paymentvo.PaymentStatusFailed)
	if err != nil || outcome != webhook.OutcomeProcessed {
		return outcome, err
	}

	verdict, err := uc.failureMonitor.Evaluate(ctx, sub, cycle.PlanExternalID(), scope.now)
	if err != nil {
		return "", err
	}

	if verdict.Expired {
		notice := SubscriptionSuspendedNotice{
			SubscriptionID: sub.ID(),
			UserID:         sub.UserID(),
			Plan:           sub.Plan().String(),
			FailedPayments: verdict.Failures,
			Window:         FailureWindow,
			SuspendedAt:    scope.now,
		}
		if reason := cycle.FailureReason(); reason != nil {
			notice.LastFailureReason = *reason
		}
		scope.afterCommit = append(scope.afterCommit, func() {
			uc.failureMonitor.NotifySuspended(notice)
		})
	}
	return outcome, nil
}

// recordCycle appends a new ledger row for one cycle event. The row's source is the event class,
// so a redelivery of the same event finds its own row and is reported as a duplicate.
// Cycles of a plan superseded by a resume are recorded but reported as ignored, leaving the
// subscription to its current plan.
func (uc *ProcessWebhookUseCase) recordCycle(
	ctx context.Context,
	scope *eventScope,
	status paymentvo.PaymentStatus,
) (webhook.Outcome, *payment.Payment, *subscription.Subscription, error) {
	ev, now := scope.event, scope.now
	source := paymentvo.CycleSourceFor(status)

	plan, sub, err := uc.lockPlan(ctx, ev.Data.PlanID)
	if err != nil {
		return "", nil, nil, err
	}
	if plan == nil || sub == nil {
		return webhook.OutcomeNotFound, nil, nil, nil
	}
	scope.result.SubscriptionID = sub.ID()

	existing, err := uc.paymentRepo.GetByExternalID(ctx, source, ev.Data.ID)
	if err != nil {
		return "", nil, nil, err
	}
	if existing != nil {
		scope.result.PaymentID = existing.ID()
		return webhook.OutcomeDuplicate, nil, nil, nil
	}

	amount := plan.Amount()
	if ev.Data.Amount != "" {
		currency := ev.Data.Currency
		if currency == "" {
			currency = amount.Currency()
		}
		parsed, err := paymentvo.ParseMoney(ev.Data.Amount.String(), currency)
		if err != nil {
			uc.logger.Warnw("invalid cycle amount, using plan amount",
				"cycle_id", ev.Data.ID,
				"amount", ev.Data.Amount.String(),
				"currency", currency,
				"error", err,
			)
		} else {
			amount = parsed
		}
	}

	cycle, err := payment.NewCyclePayment(
		sub.UserID(), sub.ID(),
		ev.Data.ID, plan.ExternalID(),
		amount, status, ev.Data.FailureDescription(), now,
	)
	if err != nil {
		return "", nil, nil, err
	}
	cycle.AppendMetadata(ev.Name, ev.Data.Raw, now)

	if err := uc.paymentRepo.Create(ctx, cycle); err != nil {
		if errors.Is(err, payment.ErrDuplicateExternalID) {
			return webhook.OutcomeDuplicate, nil, nil, nil
		}
		return "", nil, nil, err
	}
	scope.result.PaymentID = cycle.ID()

	current, err := uc.isCurrentPlan(ctx, plan)
	if err != nil {
		return "", nil, nil, err
	}
	if !current {
		uc.logger.Warnw("cycle of a superseded plan recorded without touching the subscription",
			"event", ev.Name,
			"cycle_id", ev.Data.ID,
			"plan_external_id", plan.ExternalID(),
			"subscription_id", sub.ID(),
		)
		return webhook.OutcomeIgnored, cycle, sub, nil
	}

	return webhook.OutcomeProcessed, cycle, sub, nil
}

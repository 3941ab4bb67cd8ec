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

const planSource = paymentvo.SourcePlan

// handlePlanActivated opens the first billing period of a TRIAL (or late-activated EXPIRED)
// subscription and settles its plan payment.
func (uc *ProcessWebhookUseCase) handlePlanActivated(ctx context.Context, scope *eventScope) (webhook.Outcome, error) {
	ev, now := scope.event, scope.now

	plan, sub, err := uc.lockPlan(ctx, ev.Data.ID)
	if err != nil {
		return "", err
	}
	if plan == nil || sub == nil {
		return webhook.OutcomeNotFound, nil
	}
	scope.result.SubscriptionID = sub.ID()
	scope.result.PaymentID = plan.ID()

	current, err := uc.isCurrentPlan(ctx, plan)
	if err != nil {
		return "", err
	}
	if !current {
		return uc.enrichOnly(ctx, plan, scope, "plan superseded by a newer plan payment")
	}

	switch sub.Status() {
	case vo.StatusActive:
		if plan.Status().IsPaid() {
			return webhook.OutcomeDuplicate, nil
		}
		// A cycle succeeded before this activation arrived; the period is already open.
		if err := uc.settlePlanPayment(ctx, plan, scope); err != nil {
			return "", err
		}
		return webhook.OutcomeProcessed, nil

	case vo.StatusTrial, vo.StatusExpired:
		// An EXPIRED subscription reopens only when its current plan is still unpaid,
		// e.g. a resumed plan whose activation arrived after a later suspension.
		if sub.Status() == vo.StatusExpired && plan.Status().IsPaid() {
			return uc.enrichOnly(ctx, plan, scope, "plan already settled on an EXPIRED subscription")
		}
		oldStatus := sub.Status()
		if err := sub.Activate(now); err != nil {
			return "", err
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return "", err
		}
		if err := uc.settlePlanPayment(ctx, plan, scope); err != nil {
			return "", err
		}
		uc.history.Record(ctx, sub, subscription.ActionActivated, oldStatus, "plan activated", now)
		return webhook.OutcomeProcessed, nil

	default:
		return uc.enrichOnly(ctx, plan, scope, "plan activated on a "+sub.Status().String()+" subscription")
	}
}

func (uc *ProcessWebhookUseCase) settlePlanPayment(ctx context.Context, plan *payment.Payment, scope *eventScope) error {
	if err := plan.MarkAsPaid(scope.now); err != nil {
		if !errors.Is(err, payment.ErrPaymentFinalized) {
			return err
		}
		uc.logger.Warnw("plan payment already finalized, keeping status",
			"payment_id", plan.ID(),
			"status", plan.Status(),
		)
	}
	plan.AppendMetadata(scope.event.Name, scope.event.Data.Raw, scope.now)
	return uc.paymentRepo.Update(ctx, plan)
}

// handlePlanDeactivated expires the subscription of an inactivated or stopped plan.
func (uc *ProcessWebhookUseCase) handlePlanDeactivated(ctx context.Context, scope *eventScope) (webhook.Outcome, error) {
	ev, now := scope.event, scope.now

	plan, sub, err := uc.lockPlan(ctx, ev.Data.ID)
	if err != nil {
		return "", err
	}
	if plan == nil || sub == nil {
		return webhook.OutcomeNotFound, nil
	}
	scope.result.SubscriptionID = sub.ID()
	scope.result.PaymentID = plan.ID()

	current, err := uc.isCurrentPlan(ctx, plan)
	if err != nil {
		return "", err
	}
	if !current {
		return uc.enrichOnly(ctx, plan, scope, "plan superseded by a newer plan payment")
	}

	if !sub.Status().IsLive() {
		if _, seen := payment.Latest(plan.Metadata(), ev.Name); seen {
			return webhook.OutcomeDuplicate, nil
		}
		plan.AppendMetadata(ev.Name, ev.Data.Raw, now)
		if err := uc.paymentRepo.Update(ctx, plan); err != nil {
			return "", err
		}
		return webhook.OutcomeProcessed, nil
	}

	oldStatus := sub.Status()
	if err := sub.Expire(now); err != nil {
		return "", err
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return "", err
	}

	plan.AppendMetadata(ev.Name, ev.Data.Raw, now)
	if err := uc.paymentRepo.Update(ctx, plan); err != nil {
		return "", err
	}

	reason := "plan inactivated"
	if ev.Kind == webhook.EventPlanStopped {
		reason = "plan stopped"
	}
	uc.history.Record(ctx, sub, subscription.ActionExpired, oldStatus, reason, now)
	return webhook.OutcomeProcessed, nil
}

// enrichOnly records the event on the plan payment without touching the subscription.
func (uc *ProcessWebhookUseCase) enrichOnly(ctx context.Context, plan *payment.Payment, scope *eventScope, why string) (webhook.Outcome, error) {
	uc.logger.Warnw("webhook event does not apply to subscription state",
		"event", scope.event.Name,
		"payment_id", plan.ID(),
		"subscription_id", scope.result.SubscriptionID,
		"reason", why,
	)
	plan.AppendMetadata(scope.event.Name, scope.event.Data.Raw, scope.now)
	if err := uc.paymentRepo.Update(ctx, plan); err != nil {
		return "", err
	}
	return webhook.OutcomeIgnored, nil
}

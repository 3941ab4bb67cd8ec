package mappers

import (
	"fmt"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.SubscriptionStatus(model.Status)
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}
	plan, err := vo.NewPlan(model.Plan)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription plan: %w", err)
	}

	entity, err := subscription.ReconstructSubscription(
		model.ID,
		model.UserID,
		plan,
		status,
		model.StartedAt.UTC(),
		utcPtr(model.TrialEndsAt),
		utcPtr(model.ExpiresAt),
		utcPtr(model.CurrentPeriodStart),
		utcPtr(model.CurrentPeriodEnd),
		utcPtr(model.CancelledAt),
		model.CancelReason,
		model.AutoRenew,
		model.Version,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}

	return &models.SubscriptionModel{
		ID:                 entity.ID(),
		UserID:             entity.UserID(),
		Plan:               entity.Plan().String(),
		Status:             entity.Status().String(),
		StartedAt:          entity.StartedAt(),
		TrialEndsAt:        entity.TrialEndsAt(),
		ExpiresAt:          entity.ExpiresAt(),
		CurrentPeriodStart: entity.CurrentPeriodStart(),
		CurrentPeriodEnd:   entity.CurrentPeriodEnd(),
		AutoRenew:          entity.AutoRenew(),
		CancelledAt:        entity.CancelledAt(),
		CancelReason:       entity.CancelReason(),
		Version:            entity.Version(),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}
}

// utcPtr normalizes driver-returned times, which carry the connection location.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

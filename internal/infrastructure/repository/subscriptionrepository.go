package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/mappers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

var liveStatuses = []string{vo.StatusTrial.String(), vo.StatusActive.String()}

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model := r.mapper.ToModel(subscriptionEntity)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := subscriptionEntity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Debugw("subscription created", "id", model.ID, "user_id", model.UserID, "plan", model.Plan)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id), "id", id)
}

// GetByIDForUpdate reads the subscription under a row lock held until the surrounding transaction ends.
func (r *SubscriptionRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Scopes(db.ForUpdate()).Where("id = ?", id), "id", id)
}

func (r *SubscriptionRepositoryImpl) GetLiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status IN ?", userID, liveStatuses).
		Order("id DESC")
	return r.first(query, "user_id", userID)
}

// Update writes the aggregate only if the stored version is the one it was loaded with.
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model := r.mapper.ToModel(subscriptionEntity)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"started_at":           model.StartedAt,
			"trial_ends_at":        model.TrialEndsAt,
			"expires_at":           model.ExpiresAt,
			"current_period_start": model.CurrentPeriodStart,
			"current_period_end":   model.CurrentPeriodEnd,
			"auto_renew":           model.AutoRenew,
			"cancelled_at":         model.CancelledAt,
			"cancel_reason":        model.CancelReason,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Warnw("subscription version conflict", "id", model.ID, "version", model.Version)
		return subscription.ErrVersionConflict
	}

	return nil
}

// ListLapsedIDs finds ACTIVE rows whose expires_at, or current_period_end before the first
// renewal, is older than before. Oldest first.
func (r *SubscriptionRepositoryImpl) ListLapsedIDs(ctx context.Context, before time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("status = ? AND COALESCE(expires_at, current_period_end) < ?", vo.StatusActive.String(), before).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to list lapsed subscriptions", "before", before, "error", err)
		return nil, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}
	return ids, nil
}

func (r *SubscriptionRepositoryImpl) first(query *gorm.DB, key string, value any) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", key, value, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/mappers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
)

type SubscriptionHistoryRepository struct {
	db *gorm.DB
}

func NewSubscriptionHistoryRepository(db *gorm.DB) *SubscriptionHistoryRepository {
	return &SubscriptionHistoryRepository{db: db}
}

func (r *SubscriptionHistoryRepository) Create(ctx context.Context, h *subscription.SubscriptionHistory) error {
	model := mappers.SubscriptionHistoryToModel(h)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription history: %w", err)
	}
	return h.SetID(model.ID)
}

// ListBySubscriptionID returns the audit trail oldest first.
func (r *SubscriptionHistoryRepository) ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*subscription.SubscriptionHistory, error) {
	var rows []models.SubscriptionHistoryModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscription history: %w", err)
	}

	result := make([]*subscription.SubscriptionHistory, 0, len(rows))
	for i := range rows {
		h, err := mappers.SubscriptionHistoryToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/mappers"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

type PaymentRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: %s %s", payment.ErrDuplicateExternalID, model.Source, model.ExternalID)
		}
		r.logger.Errorw("failed to create payment", "source", model.Source, "external_id", model.ExternalID, "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	return p.SetID(model.ID)
}

// Update persists status and metadata changes. A payment may be touched several times per load,
// so the write is rejected only when the stored row has already reached the new version.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"paid_at":        model.PaidAt,
			"failure_reason": model.FailureReason,
			"metadata":       model.Metadata,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update payment", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrVersionConflict
	}

	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

func (r *PaymentRepository) GetByExternalID(ctx context.Context, source vo.Source, externalID string) (*payment.Payment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).
		Where("source = ? AND external_id = ?", source.String(), externalID))
}

// GetLatestPlanPayment returns the newest plan payment of a subscription.
func (r *PaymentRepository) GetLatestPlanPayment(ctx context.Context, subscriptionID uint) (*payment.Payment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ? AND source = ?", subscriptionID, vo.SourcePlan.String()).
		Order("id DESC"))
}

func (r *PaymentRepository) ListBySubscriptionID(ctx context.Context, subscriptionID uint, limit, offset int) ([]*payment.Payment, int64, error) {
	scoped := func() *gorm.DB {
		return db.GetTxFromContext(ctx, r.db).
			Model(&models.PaymentModel{}).
			Where("subscription_id = ?", subscriptionID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []models.PaymentModel
	page := scoped().Order("id DESC").Offset(offset)
	if limit > 0 {
		page = page.Limit(limit)
	}
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments, err := mappers.PaymentsToDomain(rows)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) CountByPlanAndStatusSince(ctx context.Context, subscriptionID uint, planExternalID string, status vo.PaymentStatus, since time.Time) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Scopes(db.CreatedSince("created_at", since)).
		Where("subscription_id = ? AND plan_external_id = ? AND status = ?", subscriptionID, planExternalID, status.String()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (r *PaymentRepository) first(query *gorm.DB) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

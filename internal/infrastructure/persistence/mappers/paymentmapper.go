package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) (*models.PaymentModel, error) {
	model := &models.PaymentModel{
		ID:             p.ID(),
		UserID:         p.UserID(),
		SubscriptionID: p.SubscriptionID(),
		Source:         p.Source().String(),
		ExternalID:     p.ExternalID(),
		Status:         p.Status().String(),
		Amount:         p.Amount().Amount(),
		Currency:       p.Amount().Currency(),
		PaymentLink:    p.PaymentLink(),
		Description:    p.Description(),
		FailureReason:  p.FailureReason(),
		PaidAt:         p.PaidAt(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
	if planID := p.PlanExternalID(); planID != "" {
		model.PlanExternalID = &planID
	}

	if len(p.Metadata()) > 0 {
		raw, err := json.Marshal(p.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payment metadata: %w", err)
		}
		model.Metadata = datatypes.JSON(raw)
	}

	return model, nil
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	if model == nil {
		return nil, nil
	}

	amount, err := vo.NewMoney(model.Amount, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid payment amount: %w", err)
	}

	var metadata []payment.MetadataEntry
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment metadata: %w", err)
		}
	}

	var planExternalID string
	if model.PlanExternalID != nil {
		planExternalID = *model.PlanExternalID
	}

	return payment.ReconstructPayment(
		model.ID,
		model.UserID,
		model.SubscriptionID,
		vo.Source(model.Source),
		model.ExternalID,
		planExternalID,
		vo.PaymentStatus(model.Status),
		amount,
		model.PaymentLink,
		model.Description,
		model.FailureReason,
		utcPtr(model.PaidAt),
		metadata,
		model.Version,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func PaymentsToDomain(rows []models.PaymentModel) ([]*payment.Payment, error) {
	result := make([]*payment.Payment, 0, len(rows))
	for i := range rows {
		p, err := PaymentToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

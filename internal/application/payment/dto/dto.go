package dto

import (
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
)

type PaymentDTO struct {
	ID             uint                    `json:"id"`
	UserID         uint                    `json:"user_id"`
	SubscriptionID *uint                   `json:"subscription_id,omitempty"`
	Source         string                  `json:"source"`
	ExternalID     string                  `json:"external_id"`
	PlanExternalID string                  `json:"plan_external_id,omitempty"`
	Status         string                  `json:"status"`
	Amount         int64                   `json:"amount"`         // minor units
	AmountDecimal  string                  `json:"amount_decimal"` // major units, e.g. "9.99"
	Currency       string                  `json:"currency"`
	PaymentLink    *string                 `json:"payment_link,omitempty"`
	Description    *string                 `json:"description,omitempty"`
	FailureReason  *string                 `json:"failure_reason,omitempty"`
	PaidAt         *time.Time              `json:"paid_at,omitempty"`
	Metadata       []payment.MetadataEntry `json:"metadata,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

func ToPaymentDTO(p *payment.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}

	return &PaymentDTO{
		ID:             p.ID(),
		UserID:         p.UserID(),
		SubscriptionID: p.SubscriptionID(),
		Source:         p.Source().String(),
		ExternalID:     p.ExternalID(),
		PlanExternalID: p.PlanExternalID(),
		Status:         p.Status().String(),
		Amount:         p.Amount().Amount(),
		AmountDecimal:  p.Amount().Decimal(),
		Currency:       p.Amount().Currency(),
		PaymentLink:    p.PaymentLink(),
		Description:    p.Description(),
		FailureReason:  p.FailureReason(),
		PaidAt:         p.PaidAt(),
		Metadata:       p.Metadata(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func ToPaymentDTOList(payments []*payment.Payment) []*PaymentDTO {
	result := make([]*PaymentDTO, 0, len(payments))
	for _, p := range payments {
		result = append(result, ToPaymentDTO(p))
	}
	return result
}

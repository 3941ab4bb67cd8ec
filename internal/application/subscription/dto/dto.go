package dto

import (
	"time"

	paymentdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
)

type SubscriptionDTO struct {
	ID                 uint       `json:"id"`
	UserID             uint       `json:"user_id"`
	Plan               string     `json:"plan"`
	Status             string     `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	AutoRenew          bool       `json:"auto_renew"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelReason       *string    `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type HistoryDTO struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckoutDTO is returned by flows that issue a new payment request.
type CheckoutDTO struct {
	Subscription *SubscriptionDTO       `json:"subscription"`
	Payment      *paymentdto.PaymentDTO `json:"payment"`
	PaymentLink  string                 `json:"payment_link"`
}

func ToSubscriptionDTO(sub *subscription.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}

	return &SubscriptionDTO{
		ID:                 sub.ID(),
		UserID:             sub.UserID(),
		Plan:               sub.Plan().String(),
		Status:             sub.Status().String(),
		StartedAt:          sub.StartedAt(),
		TrialEndsAt:        sub.TrialEndsAt(),
		ExpiresAt:          sub.ExpiresAt(),
		CurrentPeriodStart: sub.CurrentPeriodStart(),
		CurrentPeriodEnd:   sub.CurrentPeriodEnd(),
		AutoRenew:          sub.AutoRenew(),
		CancelledAt:        sub.CancelledAt(),
		CancelReason:       sub.CancelReason(),
		CreatedAt:          sub.CreatedAt(),
		UpdatedAt:          sub.UpdatedAt(),
	}
}

func ToHistoryDTOList(entries []*subscription.SubscriptionHistory) []*HistoryDTO {
	result := make([]*HistoryDTO, 0, len(entries))
	for _, h := range entries {
		result = append(result, &HistoryDTO{
			ID:        h.ID(),
			Action:    h.Action(),
			OldStatus: h.OldStatus().String(),
			NewStatus: h.NewStatus().String(),
			Reason:    h.Reason(),
			CreatedAt: h.CreatedAt(),
		})
	}
	return result
}

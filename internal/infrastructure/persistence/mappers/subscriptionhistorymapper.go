package mappers

import (
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
)

func SubscriptionHistoryToModel(h *subscription.SubscriptionHistory) *models.SubscriptionHistoryModel {
	model := &models.SubscriptionHistoryModel{
		ID:             h.ID(),
		SubscriptionID: h.SubscriptionID(),
		Action:         h.Action(),
		NewStatus:      h.NewStatus().String(),
		CreatedAt:      h.CreatedAt(),
	}
	if old := h.OldStatus(); old != "" {
		s := old.String()
		model.OldStatus = &s
	}
	if reason := h.Reason(); reason != "" {
		model.Reason = &reason
	}
	return model
}

func SubscriptionHistoryToDomain(model *models.SubscriptionHistoryModel) (*subscription.SubscriptionHistory, error) {
	var oldStatus vo.SubscriptionStatus
	if model.OldStatus != nil {
		oldStatus = vo.SubscriptionStatus(*model.OldStatus)
	}
	var reason string
	if model.Reason != nil {
		reason = *model.Reason
	}

	return subscription.ReconstructSubscriptionHistory(
		model.ID,
		model.SubscriptionID,
		model.Action,
		oldStatus,
		vo.SubscriptionStatus(model.NewStatus),
		reason,
		model.CreatedAt.UTC(),
	)
}

package subscription

import (
	"errors"
	"time"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
)

const (
	ActionCreated   = "created"
	ActionActivated = "activated"
	ActionRenewed   = "renewed"
	ActionExpired   = "expired"
	ActionCancelled = "cancelled"
	ActionResumed   = "resumed"
)

var ValidActions = map[string]bool{
	ActionCreated:   true,
	ActionActivated: true,
	ActionRenewed:   true,
	ActionExpired:   true,
	ActionCancelled: true,
	ActionResumed:   true,
}

const (
	ReasonMultiplePaymentFailures = "multiple payment failures"
	ReasonBillingPeriodLapsed     = "billing period lapsed"
)

var ErrInvalidAction = errors.New("invalid history action")

// SubscriptionHistory is an append-only audit record of one status transition.
type SubscriptionHistory struct {
	id             uint
	subscriptionID uint
	action         string
	oldStatus      vo.SubscriptionStatus
	newStatus      vo.SubscriptionStatus
	reason         string
	createdAt      time.Time
}

func NewSubscriptionHistory(
	subscriptionID uint,
	action string,
	oldStatus, newStatus vo.SubscriptionStatus,
	reason string,
	now time.Time,
) (*SubscriptionHistory, error) {
	if subscriptionID == 0 {
		return nil, errors.New("subscription ID cannot be zero")
	}
	if !ValidActions[action] {
		return nil, ErrInvalidAction
	}

	return &SubscriptionHistory{
		subscriptionID: subscriptionID,
		action:         action,
		oldStatus:      oldStatus,
		newStatus:      newStatus,
		reason:         reason,
		createdAt:      now,
	}, nil
}

func ReconstructSubscriptionHistory(
	id, subscriptionID uint,
	action string,
	oldStatus, newStatus vo.SubscriptionStatus,
	reason string,
	createdAt time.Time,
) (*SubscriptionHistory, error) {
	if id == 0 {
		return nil, errors.New("history ID cannot be zero")
	}
	if subscriptionID == 0 {
		return nil, errors.New("subscription ID cannot be zero")
	}

	return &SubscriptionHistory{
		id:             id,
		subscriptionID: subscriptionID,
		action:         action,
		oldStatus:      oldStatus,
		newStatus:      newStatus,
		reason:         reason,
		createdAt:      createdAt,
	}, nil
}

func (h *SubscriptionHistory) ID() uint                         { return h.id }
func (h *SubscriptionHistory) SubscriptionID() uint             { return h.subscriptionID }
func (h *SubscriptionHistory) Action() string                   { return h.action }
func (h *SubscriptionHistory) OldStatus() vo.SubscriptionStatus { return h.oldStatus }
func (h *SubscriptionHistory) NewStatus() vo.SubscriptionStatus { return h.newStatus }
func (h *SubscriptionHistory) Reason() string                   { return h.reason }
func (h *SubscriptionHistory) CreatedAt() time.Time             { return h.createdAt }

// SetID sets the history ID (only for persistence layer use)
func (h *SubscriptionHistory) SetID(id uint) error {
	if h.id != 0 {
		return ErrHistoryImmutable
	}
	h.id = id
	return nil
}

var ErrHistoryImmutable = errors.New("history record is immutable")

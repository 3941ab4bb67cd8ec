package subscription

import (
	"fmt"
	"time"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
)

// Subscription represents the subscription aggregate root
type Subscription struct {
	id                 uint
	userID             uint
	plan               vo.Plan
	status             vo.SubscriptionStatus
	startedAt          time.Time
	trialEndsAt        *time.Time
	expiresAt          *time.Time
	currentPeriodStart *time.Time
	currentPeriodEnd   *time.Time
	cancelledAt        *time.Time
	cancelReason       *string
	autoRenew          bool
	version            int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewSubscription creates a subscription in TRIAL starting at now
func NewSubscription(userID uint, plan vo.Plan, now time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if plan == "" {
		return nil, fmt.Errorf("plan is required")
	}

	trialEndsAt := TrialEnd(now)
	return &Subscription{
		userID:      userID,
		plan:        plan,
		status:      vo.StatusTrial,
		startedAt:   now,
		trialEndsAt: &trialEndsAt,
		autoRenew:   true,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructSubscription reconstructs a subscription from persistence
func ReconstructSubscription(
	id, userID uint,
	plan vo.Plan,
	status vo.SubscriptionStatus,
	startedAt time.Time,
	trialEndsAt, expiresAt *time.Time,
	currentPeriodStart, currentPeriodEnd *time.Time,
	cancelledAt *time.Time,
	cancelReason *string,
	autoRenew bool,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}

	return &Subscription{
		id:                 id,
		userID:             userID,
		plan:               plan,
		status:             status,
		startedAt:          startedAt,
		trialEndsAt:        trialEndsAt,
		expiresAt:          expiresAt,
		currentPeriodStart: currentPeriodStart,
		currentPeriodEnd:   currentPeriodEnd,
		cancelledAt:        cancelledAt,
		cancelReason:       cancelReason,
		autoRenew:          autoRenew,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

// ID returns the subscription ID
func (s *Subscription) ID() uint {
	return s.id
}

// UserID returns the owning user ID
func (s *Subscription) UserID() uint {
	return s.userID
}

// Plan returns the billing plan
func (s *Subscription) Plan() vo.Plan {
	return s.plan
}

// Status returns the subscription status
func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) StartedAt() time.Time {
	return s.startedAt
}

func (s *Subscription) TrialEndsAt() *time.Time {
	return s.trialEndsAt
}

func (s *Subscription) ExpiresAt() *time.Time {
	return s.expiresAt
}

func (s *Subscription) CurrentPeriodStart() *time.Time {
	return s.currentPeriodStart
}

func (s *Subscription) CurrentPeriodEnd() *time.Time {
	return s.currentPeriodEnd
}

func (s *Subscription) CancelledAt() *time.Time {
	return s.cancelledAt
}

func (s *Subscription) CancelReason() *string {
	return s.cancelReason
}

func (s *Subscription) AutoRenew() bool {
	return s.autoRenew
}

// Version returns the aggregate version for optimistic locking
func (s *Subscription) Version() int {
	return s.version
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// PaidThrough is the end of the last paid period: the cycle expiry when one was
// applied, otherwise the end of the first period.
func (s *Subscription) PaidThrough() *time.Time {
	if s.expiresAt != nil {
		return s.expiresAt
	}
	return s.currentPeriodEnd
}

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// IsOwnedBy reports whether userID owns the subscription
func (s *Subscription) IsOwnedBy(userID uint) bool {
	return s.userID == userID
}

// Activate moves a TRIAL subscription to ACTIVE and opens its first billing period at now.
// An EXPIRED subscription whose current plan is activated late is reopened the same way,
// dropping the expiry of its previous period. Activating an ACTIVE subscription is a no-op.
func (s *Subscription) Activate(now time.Time) error {
	if s.status == vo.StatusActive {
		return nil
	}
	if s.status != vo.StatusTrial && s.status != vo.StatusExpired {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	periodEnd := PeriodEnd(now, s.plan)
	s.expiresAt = nil
	s.status = vo.StatusActive
	s.startedAt = now
	s.currentPeriodStart = &now
	s.currentPeriodEnd = &periodEnd
	s.autoRenew = true
	s.touch(now)

	return nil
}

// ExtendByCycle applies a paid billing cycle. The new expiry is one period after the
// previous expiry so a cycle processed late does not shorten paid time; a subscription
// with no expiry yet, or one whose extended expiry would already be in the past, is
// extended from now. The subscription is forced to ACTIVE.
func (s *Subscription) ExtendByCycle(now time.Time) error {
	if s.status == vo.StatusCancelled {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	base := now
	if s.expiresAt != nil {
		base = *s.expiresAt
	}
	expiresAt := PeriodEnd(base, s.plan)
	if !expiresAt.After(now) {
		base = now
		expiresAt = PeriodEnd(base, s.plan)
	}

	s.expiresAt = &expiresAt
	s.currentPeriodStart = &base
	s.currentPeriodEnd = &expiresAt
	s.status = vo.StatusActive
	s.touch(now)

	return nil
}

// Expire moves a TRIAL or ACTIVE subscription to EXPIRED. Expiring an EXPIRED
// subscription is a no-op; a CANCELLED subscription cannot expire.
func (s *Subscription) Expire(now time.Time) error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusExpired) {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}

	s.status = vo.StatusExpired
	s.touch(now)

	return nil
}

// Cancel cancels a subscription with a reason. Cancelling twice is a no-op.
func (s *Subscription) Cancel(reason string, now time.Time) error {
	if s.status == vo.StatusCancelled {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return ErrInvalidTransition(s.status.String(), vo.StatusCancelled.String())
	}
	if reason == "" {
		return ErrCancelReasonRequired
	}

	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.cancelReason = &reason
	s.autoRenew = false
	s.touch(now)

	return nil
}

// RestartTrial moves an EXPIRED subscription back to TRIAL while a new payment request is pending.
func (s *Subscription) RestartTrial(now time.Time) error {
	if s.status != vo.StatusExpired {
		return ErrInvalidTransition(s.status.String(), vo.StatusTrial.String())
	}

	trialEndsAt := TrialEnd(now)
	s.status = vo.StatusTrial
	s.trialEndsAt = &trialEndsAt
	s.expiresAt = nil
	s.autoRenew = true
	s.touch(now)

	return nil
}

func (s *Subscription) touch(now time.Time) {
	s.updatedAt = now
	s.version++
}

// Validate checks the status-dependent field invariants
func (s *Subscription) Validate() error {
	if s.userID == 0 {
		return fmt.Errorf("user ID is required")
	}
	if !vo.ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}

	switch s.status {
	case vo.StatusTrial:
		if s.trialEndsAt == nil {
			return fmt.Errorf("trial subscription must have a trial end")
		}
		if s.expiresAt != nil {
			return fmt.Errorf("trial subscription must not have an expiry")
		}
	case vo.StatusActive:
		if s.currentPeriodEnd == nil {
			return fmt.Errorf("active subscription must have a current period end")
		}
	case vo.StatusCancelled:
		if s.autoRenew {
			return fmt.Errorf("cancelled subscription must not auto-renew")
		}
	}

	if s.currentPeriodStart != nil && s.currentPeriodEnd != nil && s.currentPeriodEnd.Before(*s.currentPeriodStart) {
		return fmt.Errorf("current period end must be after current period start")
	}
	return nil
}

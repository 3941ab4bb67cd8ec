package valueobjects

type SubscriptionStatus string

const (
	StatusTrial     SubscriptionStatus = "TRIAL"
	StatusActive    SubscriptionStatus = "ACTIVE"
	StatusExpired   SubscriptionStatus = "EXPIRED"
	StatusCancelled SubscriptionStatus = "CANCELLED"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsLive reports whether the subscription currently grants access.
func (s SubscriptionStatus) IsLive() bool {
	return s == StatusActive || s == StatusTrial
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var transitions = map[SubscriptionStatus][]SubscriptionStatus{
	StatusTrial:  {StatusActive, StatusExpired, StatusCancelled},
	StatusActive: {StatusActive, StatusExpired, StatusCancelled},
	// EXPIRED re-enters TRIAL through resume, or ACTIVE when a retried cycle is finally paid.
	StatusExpired:   {StatusTrial, StatusActive},
	StatusCancelled: {},
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusTrial:     true,
	StatusActive:    true,
	StatusExpired:   true,
	StatusCancelled: true,
}

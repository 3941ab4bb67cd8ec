package valueobjects

// PaymentStatus is the settlement state of a payment. PENDING is the only
// state that can move; PAID and FAILED are terminal.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
}

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusFailed
}

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

// CanTransitionTo reports whether a payment in s may be recorded as next.
// Repeating the current status is allowed so redelivered events stay no-ops.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

package valueobjects

// Source tells which flow or provider event class created a payment row.
// External IDs are unique per source, so the created, succeeded and failed
// events of one billing cycle each own a row under the same cycle ID.
type Source string

const (
	// SourcePlan is the payment request that opens a recurring plan. Its external ID is the plan correlation key.
	SourcePlan Source = "plan"
	// SourceInvoice is a one-time payment outside any subscription.
	SourceInvoice        Source = "invoice"
	SourceCycleCreated   Source = "cycle_created"
	SourceCycleSucceeded Source = "cycle_succeeded"
	SourceCycleFailed    Source = "cycle_failed"
)

func (s Source) IsValid() bool {
	switch s {
	case SourcePlan, SourceInvoice, SourceCycleCreated, SourceCycleSucceeded, SourceCycleFailed:
		return true
	default:
		return false
	}
}

// IsCycle reports whether the row records one recurring billing cycle event.
func (s Source) IsCycle() bool {
	return s == SourceCycleCreated || s == SourceCycleSucceeded || s == SourceCycleFailed
}

// CycleSourceFor maps a cycle outcome onto its source.
func CycleSourceFor(status PaymentStatus) Source {
	switch status {
	case PaymentStatusPaid:
		return SourceCycleSucceeded
	case PaymentStatusFailed:
		return SourceCycleFailed
	default:
		return SourceCycleCreated
	}
}

func (s Source) String() string {
	return string(s)
}

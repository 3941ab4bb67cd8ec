package valueobjects

import (
	"fmt"
	"strings"
)

// Plan is the billing plan of a subscription. The set of plans is deployment-defined;
// only MONTHLY and YEARLY have calendar-aware periods.
type Plan string

const (
	PlanMonthly Plan = "MONTHLY"
	PlanYearly  Plan = "YEARLY"
)

// maxPlanLength matches the width of the plan column.
const maxPlanLength = 32

func NewPlan(value string) (Plan, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if normalized == "" {
		return "", fmt.Errorf("plan is required")
	}
	if len(normalized) > maxPlanLength {
		return "", fmt.Errorf("plan must be at most %d characters", maxPlanLength)
	}
	return Plan(normalized), nil
}

func (p Plan) String() string {
	return string(p)
}

// IsCalendar reports whether the plan's period is measured in calendar units.
func (p Plan) IsCalendar() bool {
	return p == PlanMonthly || p == PlanYearly
}

// BillingInterval returns the provider schedule for the plan. Plans without a calendar
// period bill every 30 days.
func (p Plan) BillingInterval() (unit string, count int) {
	switch p {
	case PlanMonthly:
		return "MONTH", 1
	case PlanYearly:
		return "YEAR", 1
	default:
		return "DAY", 30
	}
}

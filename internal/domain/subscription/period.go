package subscription

import (
	"time"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
)

const (
	TrialDuration = 7 * 24 * time.Hour
	// fallbackPeriod applies to plans without a calendar period.
	fallbackPeriod = 30 * 24 * time.Hour
)

// TrialEnd returns the end of a trial that starts at start.
func TrialEnd(start time.Time) time.Time {
	return start.Add(TrialDuration)
}

// PeriodEnd returns the end of one billing period of plan starting at start.
// Month and year arithmetic follows time.AddDate, so Jan 31 + 1 month normalizes to early March.
func PeriodEnd(start time.Time, plan vo.Plan) time.Time {
	switch plan {
	case vo.PlanMonthly:
		return start.AddDate(0, 1, 0)
	case vo.PlanYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.Add(fallbackPeriod)
	}
}

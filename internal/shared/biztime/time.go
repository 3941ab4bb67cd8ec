// Package biztime holds the business timezone. Timestamps are stored and
// exchanged in UTC; the business zone only drives the scheduler clock and
// times rendered for operators.
package biztime

import (
	"fmt"
	"sync/atomic"
	"time"
)

// StampLayout is used for times shown to operators.
const StampLayout = "2006-01-02 15:04 MST"

var location atomic.Pointer[time.Location]

// Init sets the business timezone from an IANA name. An empty name means UTC.
func Init(tz string) error {
	if tz == "" {
		location.Store(time.UTC)
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	location.Store(loc)
	return nil
}

// Location returns the business timezone, UTC until Init is called.
func Location() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// Stamp renders t in the business timezone. Outside UTC the UTC time follows
// in parentheses.
func Stamp(t time.Time) string {
	local := t.In(Location()).Format(StampLayout)
	if Location() == time.UTC {
		return local
	}
	return local + " (" + t.UTC().Format(StampLayout) + ")"
}

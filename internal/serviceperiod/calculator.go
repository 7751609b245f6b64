package serviceperiod

import (
	"time"

	"github.com/orbitlinklabs/orbitlink/internal/period"
)

// Window is a paid service time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// CalculateOpenWindow computes the first paid window for a device.
//
// Activation inside the silent period anchors at now, treating the remaining
// silent time as already-consumed goodwill; activation after the silent
// period anchors at its boundary so no paid time is lost to the gap.
func CalculateOpenWindow(now, silentPeriodEnd time.Time, rule period.Rule, gift *period.Rule) Window {
	anchor := silentPeriodEnd
	if now.Before(silentPeriodEnd) {
		anchor = now
	}
	return Window{
		Start: anchor,
		End:   period.AddRule(anchor, rule, gift),
	}
}

// ExtendForRenewal advances the asset's paid-through time. Renewal always
// extends from the current end, never from now, so a late-processed renewal
// neither loses subscription time nor double-charges a gap.
func ExtendForRenewal(currentServiceEnd time.Time, rule period.Rule, gift *period.Rule) time.Time {
	return period.AddRule(currentServiceEnd, rule, gift)
}

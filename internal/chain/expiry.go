// Package chain narrows a raw option chain to the contracts a strategy
// cares about: it resolves a user's expiration preference to a concrete
// chain date and filters contracts down to that date.
package chain

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/occ"
)

// Mode is how a user expresses their expiration horizon.
type Mode string

const (
	// ModeWeekly counts horizons in weeks.
	ModeWeekly Mode = "weekly"
	// ModeMonthly counts horizons in months.
	ModeMonthly Mode = "monthly"
	// ModeYearly counts horizons in years.
	ModeYearly Mode = "yearly"
	// ModeCustom is an explicit days-ahead horizon.
	ModeCustom Mode = "custom"
)

// Interval lengths per mode. These are deliberate approximations, not
// calendar-accurate month/year arithmetic; the nearest-date search over
// real chain expirations absorbs the slack.
const (
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365

	// DefaultDaysAhead is used when a custom selection carries no usable
	// horizon and the fallback has none either.
	DefaultDaysAhead = 35
)

// Selection is a normalized expiration preference. Exactly one of Count
// (weekly/monthly/yearly) or DaysAhead (custom) is meaningful per mode.
type Selection struct {
	Mode      Mode `json:"mode" yaml:"mode"`
	Count     int  `json:"count,omitempty" yaml:"count,omitempty"`
	DaysAhead int  `json:"daysAhead,omitempty" yaml:"days_ahead,omitempty"`
}

// DefaultSelection is the global fallback: five weeks out.
var DefaultSelection = Selection{Mode: ModeWeekly, Count: 5}

// Valid reports whether the mode is one of the defined constants.
func (m Mode) Valid() bool {
	switch m {
	case ModeWeekly, ModeMonthly, ModeYearly, ModeCustom:
		return true
	default:
		return false
	}
}

// Normalize cleans a selection that may have come from arbitrary user
// input or a stale persisted preference. Invalid shapes never error; they
// fall back to a copy of the provided fallback.
func Normalize(sel Selection, fallback Selection) Selection {
	if !sel.Mode.Valid() {
		return fallback
	}
	if sel.Mode == ModeCustom {
		if sel.DaysAhead <= 0 {
			sel.DaysAhead = fallbackDays(fallback)
		}
		sel.Count = 0
		return sel
	}
	if sel.Count <= 0 {
		sel.Count = 1
	}
	sel.DaysAhead = 0
	return sel
}

// NormalizeRaw accepts the wire form of a persisted preference, which may
// be a bare positive number (meaning days ahead), a selection object, or
// garbage. Garbage falls back silently.
func NormalizeRaw(raw json.RawMessage, fallback Selection) Selection {
	if len(raw) == 0 {
		return fallback
	}

	var days float64
	if err := json.Unmarshal(raw, &days); err == nil {
		if days > 0 {
			return Selection{Mode: ModeCustom, DaysAhead: int(days)}
		}
		return fallback
	}

	var sel Selection
	if err := json.Unmarshal(raw, &sel); err == nil {
		return Normalize(sel, fallback)
	}
	return fallback
}

// DaysAheadOf converts a selection into an approximate day horizon.
func DaysAheadOf(sel Selection) int {
	switch sel.Mode {
	case ModeWeekly:
		return sel.Count * daysPerWeek
	case ModeMonthly:
		return sel.Count * daysPerMonth
	case ModeYearly:
		return sel.Count * daysPerYear
	case ModeCustom:
		if sel.DaysAhead > 0 {
			return sel.DaysAhead
		}
		return DefaultDaysAhead
	default:
		return DefaultDaysAhead
	}
}

func fallbackDays(fallback Selection) int {
	if d := DaysAheadOf(fallback); d > 0 {
		return d
	}
	return DefaultDaysAhead
}

// PickExpirationDate resolves a selection to the chain expiration closest
// to the target horizon. Only unique, strictly future dates (relative to
// now's calendar date) are considered. When two dates are equidistant the
// earlier one wins. Returns false when the chain holds no future
// expirations; callers must treat that as a hard not-found condition, not
// an empty result.
func PickExpirationDate(contracts []marketdata.OptionContract, ticker string, sel Selection, fallbackDaysAhead int, now time.Time) (time.Time, bool) {
	dates := futureExpirations(contracts, ticker, now)
	if len(dates) == 0 {
		return time.Time{}, false
	}

	if d, ok := nearestTo(dates, now.AddDate(0, 0, DaysAheadOf(sel))); ok {
		return d, true
	}
	// Retry once from the fallback horizon.
	return nearestTo(dates, now.AddDate(0, 0, fallbackDaysAhead))
}

// futureExpirations decodes each contract's embedded expiration and
// returns the unique future-only dates in ascending order.
func futureExpirations(contracts []marketdata.OptionContract, ticker string, now time.Time) []time.Time {
	today := now.Truncate(24 * time.Hour)
	seen := make(map[string]struct{})
	var dates []time.Time

	for _, c := range contracts {
		d, ok := occ.ExpirationDate(c.Symbol, ticker)
		if !ok || !d.After(today) {
			continue
		}
		key := occ.FormatDate(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// nearestTo returns the date with minimum absolute distance to target.
// Iterating the sorted slice with a strict less-than comparison means the
// first-encountered (earlier) date wins ties.
func nearestTo(dates []time.Time, target time.Time) (time.Time, bool) {
	if len(dates) == 0 {
		return time.Time{}, false
	}

	best := dates[0]
	bestDiff := math.Abs(dates[0].Sub(target).Hours())
	for _, d := range dates[1:] {
		diff := math.Abs(d.Sub(target).Hours())
		if diff < bestDiff {
			bestDiff = diff
			best = d
		}
	}
	return best, true
}

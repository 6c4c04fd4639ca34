// Package suggest selects option contracts by moneyness and turns them
// into strategy-specific suggestion rows. Selection prefers delta banding
// and degrades to strike-distance heuristics when the feed omits greeks;
// live feeds do that intermittently, so the fallback is a load-bearing
// path, not an afterthought.
package suggest

import (
	"math"
	"sort"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// deltaBand is the acceptance window and ranking target for one
// moneyness bucket on one side of the chain.
type deltaBand struct {
	low    float64
	high   float64
	target float64
}

// Call deltas live in [0,1]; put deltas in [-1,0], so the put bands are
// the negated mirrors of the call bands.
func bandFor(right models.Right, m models.Moneyness) deltaBand {
	switch right {
	case models.RightCall:
		switch m {
		case models.MoneynessOTM:
			return deltaBand{low: 0.25, high: 0.45, target: 0.35}
		case models.MoneynessATM:
			return deltaBand{low: 0.45, high: 0.55, target: 0.50}
		case models.MoneynessITM:
			return deltaBand{low: 0.55, high: 0.80, target: 0.65}
		}
	case models.RightPut:
		switch m {
		case models.MoneynessOTM:
			return deltaBand{low: -0.45, high: -0.25, target: -0.35}
		case models.MoneynessATM:
			return deltaBand{low: -0.55, high: -0.45, target: -0.50}
		case models.MoneynessITM:
			return deltaBand{low: -0.80, high: -0.55, target: -0.65}
		}
	}
	// Unreachable for valid inputs; ATM is the least surprising default.
	return deltaBand{low: -1, high: 1, target: 0}
}

// SelectByMoneyness picks up to count contracts from one expiration's
// contracts matching the requested moneyness bucket. The output length is
// always min(count, matching contracts). An empty input yields an empty
// output; this never fails.
func SelectByMoneyness(contracts []marketdata.OptionContract, currentPrice float64, right models.Right, m models.Moneyness, count int) []marketdata.OptionContract {
	if count <= 0 || len(contracts) == 0 {
		return nil
	}

	withDelta := make([]marketdata.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.Delta != nil {
			withDelta = append(withDelta, c)
		}
	}

	if len(withDelta) >= count {
		return selectByDelta(withDelta, right, m, count)
	}
	return selectByStrikeDistance(contracts, currentPrice, right, m, count)
}

// selectByDelta filters to the bucket's delta band and ranks by distance
// from the band target. An empty band falls back to the full
// delta-bearing set so thin chains still produce suggestions.
func selectByDelta(contracts []marketdata.OptionContract, right models.Right, m models.Moneyness, count int) []marketdata.OptionContract {
	band := bandFor(right, m)

	pool := make([]marketdata.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if *c.Delta >= band.low && *c.Delta <= band.high {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, contracts...)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return math.Abs(*pool[i].Delta-band.target) < math.Abs(*pool[j].Delta-band.target)
	})
	return pool[:min(count, len(pool))]
}

// selectByStrikeDistance approximates moneyness from strike position
// alone. Put ITM/OTM conditions are inverted relative to calls because
// put moneyness is inverted relative to the underlying: an OTM put sits
// at or below the price where an OTM call sits above it.
func selectByStrikeDistance(contracts []marketdata.OptionContract, currentPrice float64, right models.Right, m models.Moneyness, count int) []marketdata.OptionContract {
	sorted := make([]marketdata.OptionContract, len(contracts))
	copy(sorted, contracts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StrikePrice < sorted[j].StrikePrice
	})

	if m == models.MoneynessATM {
		sort.SliceStable(sorted, func(i, j int) bool {
			return math.Abs(sorted[i].StrikePrice-currentPrice) < math.Abs(sorted[j].StrikePrice-currentPrice)
		})
		return sorted[:min(count, len(sorted))]
	}

	var atOrBelow, above []marketdata.OptionContract
	for _, c := range sorted {
		if c.StrikePrice > currentPrice {
			above = append(above, c)
		} else {
			atOrBelow = append(atOrBelow, c)
		}
	}

	var pool []marketdata.OptionContract
	switch {
	case right == models.RightCall && m == models.MoneynessITM:
		pool = reversed(atOrBelow) // closest-to-price first
	case right == models.RightCall && m == models.MoneynessOTM:
		pool = above
	case right == models.RightPut && m == models.MoneynessITM:
		pool = above
	case right == models.RightPut && m == models.MoneynessOTM:
		pool = reversed(atOrBelow)
	}
	return pool[:min(count, len(pool))]
}

func reversed(contracts []marketdata.OptionContract) []marketdata.OptionContract {
	out := make([]marketdata.OptionContract, len(contracts))
	for i, c := range contracts {
		out[len(contracts)-1-i] = c
	}
	return out
}

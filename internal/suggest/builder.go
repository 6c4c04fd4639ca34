package suggest

import (
	"math"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/util"
)

// Suggestion holds the fields every strategy row shares. Rows are derived,
// read-only values: one per selected contract per request, never mutated
// after construction.
type Suggestion struct {
	Symbol            string   `json:"symbol"`
	Strike            float64  `json:"strike"`
	Premium           float64  `json:"premium"`
	Delta             *float64 `json:"delta,omitempty"`
	Theta             *float64 `json:"theta,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	Vega              *float64 `json:"vega,omitempty"`
	ImpliedVolatility *float64 `json:"implied_volatility,omitempty"`
	DTE               int      `json:"dte"`
}

// CoveredCall is a covered call suggestion row.
type CoveredCall struct {
	Suggestion
	YieldMonthly    float64 `json:"yield_monthly"`
	YieldAnnualized float64 `json:"yield_annualized"`
	// OTMPercent is reported from the requested factor, not the strike the
	// chain actually offered. The divergence is intentional: the label
	// answers "what did you ask for", the strike answers "what's tradable".
	OTMPercent float64 `json:"otm_percent,omitempty"`
}

// LongCall is a long call suggestion row.
type LongCall struct {
	Suggestion
	Intrinsic float64 `json:"intrinsic"`
	Extrinsic float64 `json:"extrinsic"`
	Breakeven float64 `json:"breakeven"`
}

// LongPut is a long put suggestion row.
type LongPut struct {
	Suggestion
	Intrinsic float64 `json:"intrinsic"`
	Extrinsic float64 `json:"extrinsic"`
	Breakeven float64 `json:"breakeven"`
}

// CashSecuredPut is a cash-secured put suggestion row.
type CashSecuredPut struct {
	Suggestion
	ReturnPct     float64 `json:"return_pct"`
	AnnualizedPct float64 `json:"annualized_pct"`
	CashRequired  float64 `json:"cash_required"`
	// AssignProb is a crude |delta|-based proxy, not a probability model.
	AssignProb int `json:"assign_prob"`
}

// StrikeTick is the grid the factor-based strike target is rounded to.
const StrikeTick = 5.0

// Premium returns the contract's premium: the bid/ask midpoint when both
// sides are quoted, one side when only one is, and zero when neither is.
// Missing quotes degrade the number rather than failing the request.
func Premium(c marketdata.OptionContract) float64 {
	switch {
	case c.Bid != nil && c.Ask != nil:
		return (*c.Bid + *c.Ask) / 2
	case c.Ask != nil:
		return *c.Ask
	case c.Bid != nil:
		return *c.Bid
	default:
		return 0
	}
}

// DaysToExpiration is the calendar day difference between expiration and
// now. It is deliberately not clamped at zero: a past expiration shows a
// negative DTE for display, and annualization guards divide-by-zero with
// max(1, dte) instead.
func DaysToExpiration(expiration, now time.Time) int {
	e := expiration.UTC().Truncate(24 * time.Hour)
	n := now.UTC().Truncate(24 * time.Hour)
	return int(e.Sub(n).Hours() / 24)
}

func annualizationDays(dte int) float64 {
	return float64(max(1, dte))
}

func base(c marketdata.OptionContract, expiration, now time.Time) Suggestion {
	return Suggestion{
		Symbol:            c.Symbol,
		Strike:            c.StrikePrice,
		Premium:           Premium(c),
		Delta:             c.Delta,
		Theta:             c.Theta,
		Gamma:             c.Gamma,
		Vega:              c.Vega,
		ImpliedVolatility: c.ImpliedVolatility,
		DTE:               DaysToExpiration(expiration, now),
	}
}

// BuildCoveredCalls computes yield rows for each selected call contract.
func BuildCoveredCalls(contracts []marketdata.OptionContract, currentPrice float64, expiration, now time.Time) []CoveredCall {
	out := make([]CoveredCall, 0, len(contracts))
	for _, c := range contracts {
		s := base(c, expiration, now)
		row := CoveredCall{Suggestion: s}
		if currentPrice > 0 {
			row.YieldMonthly = s.Premium / currentPrice * 100
			row.YieldAnnualized = row.YieldMonthly * 365 / annualizationDays(s.DTE)
		}
		out = append(out, row)
	}
	return out
}

// BuildCoveredCallFromFactor picks the single contract nearest a
// factor-derived target strike and builds its row. The target is
// currentPrice times factor, rounded to the nearest $5 strike; the chain
// may not list that exact strike, so the closest real one is used while
// OTMPercent still reports the requested factor.
func BuildCoveredCallFromFactor(contracts []marketdata.OptionContract, currentPrice, factor float64, expiration, now time.Time) (CoveredCall, bool) {
	if len(contracts) == 0 || currentPrice <= 0 {
		return CoveredCall{}, false
	}

	target := util.RoundToTick(currentPrice*factor, StrikeTick)
	best := contracts[0]
	bestDiff := math.Abs(contracts[0].StrikePrice - target)
	for _, c := range contracts[1:] {
		if diff := math.Abs(c.StrikePrice - target); diff < bestDiff {
			bestDiff = diff
			best = c
		}
	}

	rows := BuildCoveredCalls([]marketdata.OptionContract{best}, currentPrice, expiration, now)
	row := rows[0]
	row.OTMPercent = (factor - 1) * 100
	return row, true
}

// BuildLongCalls computes intrinsic/extrinsic decomposition and breakeven
// for each selected call contract.
func BuildLongCalls(contracts []marketdata.OptionContract, currentPrice float64, expiration, now time.Time) []LongCall {
	out := make([]LongCall, 0, len(contracts))
	for _, c := range contracts {
		s := base(c, expiration, now)
		intrinsic := math.Max(currentPrice-s.Strike, 0)
		out = append(out, LongCall{
			Suggestion: s,
			Intrinsic:  intrinsic,
			Extrinsic:  math.Max(s.Premium-intrinsic, 0),
			Breakeven:  s.Strike + s.Premium,
		})
	}
	return out
}

// BuildLongPuts computes intrinsic/extrinsic decomposition and breakeven
// for each selected put contract.
func BuildLongPuts(contracts []marketdata.OptionContract, currentPrice float64, expiration, now time.Time) []LongPut {
	out := make([]LongPut, 0, len(contracts))
	for _, c := range contracts {
		s := base(c, expiration, now)
		intrinsic := math.Max(s.Strike-currentPrice, 0)
		out = append(out, LongPut{
			Suggestion: s,
			Intrinsic:  intrinsic,
			Extrinsic:  math.Max(s.Premium-intrinsic, 0),
			Breakeven:  s.Strike - s.Premium,
		})
	}
	return out
}

// BuildCashSecuredPuts computes collateral and return rows for each
// selected put contract. CashRequired is per contract-multiplier, net of
// the premium collected.
func BuildCashSecuredPuts(contracts []marketdata.OptionContract, expiration, now time.Time) []CashSecuredPut {
	out := make([]CashSecuredPut, 0, len(contracts))
	for _, c := range contracts {
		s := base(c, expiration, now)
		row := CashSecuredPut{
			Suggestion:   s,
			CashRequired: s.Strike*100 - s.Premium*100,
		}
		if s.Strike > 0 {
			row.ReturnPct = s.Premium / s.Strike * 100
			row.AnnualizedPct = row.ReturnPct * 365 / annualizationDays(s.DTE)
		}
		if c.Delta != nil {
			row.AssignProb = int(math.Round(math.Abs(*c.Delta) * 100))
		}
		out = append(out, row)
	}
	return out
}

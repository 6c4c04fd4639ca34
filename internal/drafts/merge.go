package drafts

import "github.com/eddiefleurent/chain_scout/internal/models"

// confidenceHysteresis is the band within which an incoming observation
// is NOT allowed to overwrite an existing field. Repeated OCR passes over
// the same screenshot produce near-equal confidences that would otherwise
// flap fields back and forth.
const confidenceHysteresis = 0.05

// Merge folds a batch of incoming rows into an existing keyed set and
// returns a fresh map; neither input is mutated. Incoming rows are folded
// in order (upload order, then paragraph order, then line order), so the
// caller controls precedence among same-tier observations by ordering the
// batch.
//
// Precedence is three-tier:
//  1. detail view beats list view, in either arrival order;
//  2. a list row never displaces an existing detail row;
//  3. within the same tier, field-by-field overwrite requires the incoming
//     confidence to beat the existing by more than the hysteresis band.
func Merge(existing map[string]Row, incoming []Row) map[string]Row {
	out := make(map[string]Row, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}

	for _, in := range incoming {
		in = in.Sanitize()
		key := in.Key()
		cur, ok := out[key]
		if !ok {
			out[key] = in
			continue
		}
		out[key] = mergeRow(cur, in)
	}
	return out
}

func mergeRow(cur, in Row) Row {
	switch {
	case cur.ViewType == models.ViewList && in.ViewType == models.ViewDetail:
		// Detail pages are richer and more reliable: take all of the
		// incoming data, but keep the existing row's identity and the
		// user's selection state.
		merged := in
		merged.ID = cur.ID
		merged.Selected = cur.Selected
		merged.Confidence = maxFloat(cur.Confidence, in.Confidence)
		return merged

	case cur.ViewType == models.ViewDetail && in.ViewType == models.ViewList:
		// Detail never loses to list, regardless of confidence.
		return cur

	default:
		return mergeFields(cur, in)
	}
}

// mergeFields is the same-tier merge: each field keeps its existing value
// unless the incoming observation is non-nil and clears the hysteresis
// band.
func mergeFields(cur, in Row) Row {
	overwrite := in.Confidence > cur.Confidence+confidenceHysteresis

	takeNumber := func(curV, inV *float64) *float64 {
		if inV != nil && (curV == nil || overwrite) {
			return inV
		}
		return curV
	}

	cur.Shares = takeNumber(cur.Shares, in.Shares)
	cur.Contracts = takeNumber(cur.Contracts, in.Contracts)
	cur.OptionStrike = takeNumber(cur.OptionStrike, in.OptionStrike)
	cur.CostBasis = takeNumber(cur.CostBasis, in.CostBasis)
	cur.MarketValue = takeNumber(cur.MarketValue, in.MarketValue)

	if cur.OptionExpiration == "" {
		cur.OptionExpiration = in.OptionExpiration
	}
	if cur.OptionRight == "" {
		cur.OptionRight = in.OptionRight
	}
	if cur.BuySell == "" {
		cur.BuySell = in.BuySell
	}
	if cur.CostBasisSource == "" {
		cur.CostBasisSource = in.CostBasisSource
	}
	if cur.ViewType == models.ViewUnknown && in.ViewType != "" {
		cur.ViewType = in.ViewType
	}

	if in.Confidence > cur.Confidence && in.Source != "" {
		cur.Source = in.Source
	}
	cur.Confidence = maxFloat(cur.Confidence, in.Confidence)
	return cur
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

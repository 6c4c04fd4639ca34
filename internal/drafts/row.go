// Package drafts holds the candidate-holding model extracted from OCR and
// the reconciler that merges partial observations into one coherent row
// per position.
package drafts

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/eddiefleurent/chain_scout/internal/models"
)

// Row is a not-yet-committed candidate holding awaiting user review.
// Numeric fields are pointers: nil means "not observed", never zero.
// The ID is regenerated on every parse pass and is NOT the row's identity
// for merge purposes; Key() is.
type Row struct {
	ID               string                 `json:"id"`
	Ticker           string                 `json:"ticker"`
	AssetType        models.AssetType       `json:"asset_type"`
	Shares           *float64               `json:"shares,omitempty"`
	Contracts        *float64               `json:"contracts,omitempty"`
	OptionStrike     *float64               `json:"option_strike,omitempty"`
	OptionExpiration string                 `json:"option_expiration,omitempty"`
	OptionRight      models.Right           `json:"option_right,omitempty"`
	BuySell          string                 `json:"buy_sell,omitempty"`
	CostBasis        *float64               `json:"cost_basis,omitempty"`
	CostBasisSource  models.CostBasisSource `json:"cost_basis_source,omitempty"`
	MarketValue      *float64               `json:"market_value,omitempty"`
	ViewType         models.ViewType        `json:"view_type,omitempty"`
	Confidence       float64                `json:"confidence"`
	Source           string                 `json:"source,omitempty"`
	Selected         bool                   `json:"selected"`
}

// NewRow creates a row with a fresh ID and the unknown view type.
func NewRow(ticker string, assetType models.AssetType) Row {
	return Row{
		ID:        uuid.New().String(),
		Ticker:    strings.ToUpper(ticker),
		AssetType: assetType,
		ViewType:  models.ViewUnknown,
		Selected:  true,
	}
}

// Key is the grouping identity used to deduplicate and merge rows:
// ticker plus asset type, extended with strike/expiration/right for
// options so two different contracts on the same underlying stay
// distinct.
func (r Row) Key() string {
	if r.AssetType == models.AssetOption {
		strike := 0.0
		if r.OptionStrike != nil {
			strike = *r.OptionStrike
		}
		return fmt.Sprintf("%s|%s|%g|%s|%s", r.Ticker, r.AssetType, strike, r.OptionExpiration, r.OptionRight)
	}
	return fmt.Sprintf("%s|%s", r.Ticker, r.AssetType)
}

// validNumber reports whether a pointer field satisfies the pipeline-wide
// invariant: nil, or a finite non-negative number.
func validNumber(v *float64) bool {
	if v == nil {
		return true
	}
	return !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0
}

// Ready reports whether the row can be promoted to a holding: every
// numeric field is nil or finite and non-negative, quantities and strikes
// are strictly positive where present, and at least one quantity was
// observed.
func (r Row) Ready() bool {
	if r.Ticker == "" || !r.AssetType.Valid() {
		return false
	}
	for _, v := range []*float64{r.Shares, r.Contracts, r.OptionStrike, r.CostBasis, r.MarketValue} {
		if !validNumber(v) {
			return false
		}
	}
	switch r.AssetType {
	case models.AssetEquity:
		return r.Shares != nil && *r.Shares > 0
	case models.AssetOption:
		if r.Contracts == nil || *r.Contracts <= 0 {
			return false
		}
		return r.OptionStrike != nil && *r.OptionStrike > 0
	}
	return false
}

// Sanitize drops numeric fields that violate the pipeline invariant
// (non-finite or negative where that is never valid) so a noisy OCR read
// degrades to "not observed" instead of poisoning the merge.
func (r Row) Sanitize() Row {
	clean := func(v *float64) *float64 {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return nil
		}
		return v
	}
	positive := func(v *float64) *float64 {
		if v = clean(v); v == nil || *v == 0 {
			return nil
		}
		return v
	}
	r.Shares = positive(r.Shares)
	r.Contracts = positive(r.Contracts)
	r.OptionStrike = positive(r.OptionStrike)
	r.CostBasis = clean(r.CostBasis)
	r.MarketValue = clean(r.MarketValue)
	return r
}

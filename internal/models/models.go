// Package models defines the shared domain types: asset classes, option
// rights, moneyness buckets, and the persisted holding record.
package models

import (
	"fmt"
	"time"
)

// SharesPerContract is the standard US equity option multiplier.
const SharesPerContract = 100.0

// AssetType distinguishes plain share positions from option positions.
type AssetType string

const (
	// AssetEquity is a plain share holding.
	AssetEquity AssetType = "equity"
	// AssetOption is an option contract holding.
	AssetOption AssetType = "option"
)

// Valid returns true if the AssetType is one of the defined constants.
func (a AssetType) Valid() bool {
	switch a {
	case AssetEquity, AssetOption:
		return true
	default:
		return false
	}
}

// Right is the option side: call or put.
type Right string

const (
	// RightCall represents a call option.
	RightCall Right = "call"
	// RightPut represents a put option.
	RightPut Right = "put"
)

// Valid returns true if the Right is one of the defined constants.
func (r Right) Valid() bool {
	switch r {
	case RightCall, RightPut:
		return true
	default:
		return false
	}
}

// Moneyness buckets a strike relative to the current underlying price.
// Call and put conventions are inverted: an OTM call sits above the price,
// an OTM put below it.
type Moneyness string

const (
	// MoneynessITM selects in-the-money contracts.
	MoneynessITM Moneyness = "ITM"
	// MoneynessATM selects at-the-money contracts.
	MoneynessATM Moneyness = "ATM"
	// MoneynessOTM selects out-of-the-money contracts.
	MoneynessOTM Moneyness = "OTM"
)

// Valid returns true if the Moneyness is one of the defined constants.
func (m Moneyness) Valid() bool {
	switch m {
	case MoneynessITM, MoneynessATM, MoneynessOTM:
		return true
	default:
		return false
	}
}

// ParseMoneyness converts user input into a Moneyness bucket.
func ParseMoneyness(s string) (Moneyness, error) {
	m := Moneyness(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid moneyness %q (want ITM, ATM, or OTM)", s)
	}
	return m, nil
}

// ViewType classifies the kind of brokerage screen an OCR capture came from.
// Detail captures are richer and win merges against list captures.
type ViewType string

const (
	// ViewList is a multi-row positions screen with shallow per-row data.
	ViewList ViewType = "list"
	// ViewDetail is a single-position screen with labeled fields.
	ViewDetail ViewType = "detail"
	// ViewUnknown is a capture that could not be classified.
	ViewUnknown ViewType = "unknown"
)

// Valid returns true if the ViewType is one of the defined constants.
func (v ViewType) Valid() bool {
	switch v {
	case ViewList, ViewDetail, ViewUnknown:
		return true
	default:
		return false
	}
}

// CostBasisSource records where a holding's cost basis came from.
type CostBasisSource string

const (
	// CostBasisOCR means the value was read off a screenshot.
	CostBasisOCR CostBasisSource = "ocr"
	// CostBasisManual means the user typed it in.
	CostBasisManual CostBasisSource = "manual"
	// CostBasisHistory means it was backfilled from transaction history.
	CostBasisHistory CostBasisSource = "history"
	// CostBasisDerived means it was computed from other observed fields.
	CostBasisDerived CostBasisSource = "derived"
)

// Holding is an approved portfolio position, promoted from a reviewed draft.
type Holding struct {
	ID               string          `json:"id"`
	Ticker           string          `json:"ticker"`
	Name             string          `json:"name,omitempty"`
	AssetType        AssetType       `json:"asset_type"`
	Shares           float64         `json:"shares,omitempty"`
	Contracts        float64         `json:"contracts,omitempty"`
	OptionStrike     float64         `json:"option_strike,omitempty"`
	OptionExpiration string          `json:"option_expiration,omitempty"`
	OptionRight      Right           `json:"option_right,omitempty"`
	CostBasis        float64         `json:"cost_basis,omitempty"`
	CostBasisSource  CostBasisSource `json:"cost_basis_source,omitempty"`
	MarketValue      float64         `json:"market_value,omitempty"`
	AddedAt          time.Time       `json:"added_at"`
}

// Validate checks structural invariants before a holding is persisted.
func (h *Holding) Validate() error {
	if h.Ticker == "" {
		return fmt.Errorf("holding ticker is required")
	}
	if !h.AssetType.Valid() {
		return fmt.Errorf("invalid asset type %q", h.AssetType)
	}
	switch h.AssetType {
	case AssetEquity:
		if h.Shares <= 0 {
			return fmt.Errorf("equity holding %s requires positive shares", h.Ticker)
		}
	case AssetOption:
		if h.Contracts <= 0 {
			return fmt.Errorf("option holding %s requires positive contracts", h.Ticker)
		}
		if h.OptionStrike <= 0 {
			return fmt.Errorf("option holding %s requires positive strike", h.Ticker)
		}
		if !h.OptionRight.Valid() {
			return fmt.Errorf("option holding %s requires call or put right", h.Ticker)
		}
	}
	return nil
}

package drafts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eddiefleurent/chain_scout/internal/models"
)

// ToHolding promotes a reviewed row into a persistent holding. The row
// must be Ready; callers filter unselected rows before promoting.
func ToHolding(r Row, now time.Time) (models.Holding, error) {
	if !r.Ready() {
		return models.Holding{}, fmt.Errorf("row %s is not ready for promotion", r.Key())
	}

	h := models.Holding{
		ID:              uuid.New().String(),
		Ticker:          r.Ticker,
		AssetType:       r.AssetType,
		CostBasisSource: r.CostBasisSource,
		AddedAt:         now,
	}
	if r.Shares != nil {
		h.Shares = *r.Shares
	}
	if r.Contracts != nil {
		h.Contracts = *r.Contracts
	}
	if r.OptionStrike != nil {
		h.OptionStrike = *r.OptionStrike
	}
	h.OptionExpiration = r.OptionExpiration
	h.OptionRight = r.OptionRight
	if r.CostBasis != nil {
		h.CostBasis = *r.CostBasis
	}
	if r.MarketValue != nil {
		h.MarketValue = *r.MarketValue
	}

	if err := h.Validate(); err != nil {
		return models.Holding{}, err
	}
	return h, nil
}

package suggest

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// Property: when no contract carries a delta, out-of-the-money put
// selection only ever returns strikes at or below the underlying price,
// and never more rows than requested.
func TestProperty_PutOTMFallbackStaysAtOrBelowPrice(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("OTM put strikes never exceed the price", prop.ForAll(
		func(strikes []float64, price float64, count int) bool {
			contracts := make([]marketdata.OptionContract, len(strikes))
			for i, s := range strikes {
				contracts[i] = marketdata.OptionContract{StrikePrice: s}
			}

			got := SelectByMoneyness(contracts, price, models.RightPut, models.MoneynessOTM, count)
			if len(got) > count {
				return false
			}
			for _, c := range got {
				if c.StrikePrice > price {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(1, 500)),
		gen.Float64Range(1, 500),
		gen.IntRange(1, 10),
	))

	properties.Property("ITM put strikes always exceed the price", prop.ForAll(
		func(strikes []float64, price float64, count int) bool {
			contracts := make([]marketdata.OptionContract, len(strikes))
			for i, s := range strikes {
				contracts[i] = marketdata.OptionContract{StrikePrice: s}
			}

			for _, c := range SelectByMoneyness(contracts, price, models.RightPut, models.MoneynessITM, count) {
				if c.StrikePrice <= price {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(1, 500)),
		gen.Float64Range(1, 500),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

package suggest

import (
	"fmt"
	"testing"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

func contractWithDelta(strike, delta float64) marketdata.OptionContract {
	d := delta
	return marketdata.OptionContract{
		Symbol:      fmt.Sprintf("SPY260320C%08d", int(strike*1000)),
		StrikePrice: strike,
		Delta:       &d,
	}
}

func contractNoGreeks(strike float64) marketdata.OptionContract {
	return marketdata.OptionContract{
		Symbol:      fmt.Sprintf("SPY260320C%08d", int(strike*1000)),
		StrikePrice: strike,
	}
}

func strikes(contracts []marketdata.OptionContract) []float64 {
	out := make([]float64, len(contracts))
	for i, c := range contracts {
		out[i] = c.StrikePrice
	}
	return out
}

func TestSelectByMoneyness_DeltaBanding(t *testing.T) {
	contracts := []marketdata.OptionContract{
		contractWithDelta(90, 0.75),
		contractWithDelta(95, 0.62),
		contractWithDelta(100, 0.50),
		contractWithDelta(105, 0.36),
		contractWithDelta(110, 0.27),
		contractWithDelta(115, 0.15),
	}

	t.Run("OTM calls rank by distance to 0.35 target", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessOTM, 2)
		if len(got) != 2 {
			t.Fatalf("Expected 2 contracts, got %d", len(got))
		}
		// 0.36 is nearest the 0.35 target, then 0.27
		if got[0].StrikePrice != 105 || got[1].StrikePrice != 110 {
			t.Errorf("Expected strikes [105 110], got %v", strikes(got))
		}
	})

	t.Run("ATM calls prefer the half-delta contract", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessATM, 1)
		if len(got) != 1 || got[0].StrikePrice != 100 {
			t.Errorf("Expected strike 100, got %v", strikes(got))
		}
	})

	t.Run("ITM calls land in the 0.55-0.80 band", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessITM, 2)
		if len(got) != 2 {
			t.Fatalf("Expected 2 contracts, got %d", len(got))
		}
		if got[0].StrikePrice != 95 || got[1].StrikePrice != 90 {
			t.Errorf("Expected strikes [95 90], got %v", strikes(got))
		}
	})

	t.Run("empty band falls back to full delta set", func(t *testing.T) {
		deep := []marketdata.OptionContract{
			contractWithDelta(50, 0.99),
			contractWithDelta(55, 0.98),
		}
		got := SelectByMoneyness(deep, 100, models.RightCall, models.MoneynessOTM, 1)
		if len(got) != 1 {
			t.Errorf("Expected a fallback selection, got %d contracts", len(got))
		}
	})
}

func TestSelectByMoneyness_StrikeDistanceFallback(t *testing.T) {
	// No contract carries a delta, so selection degrades to strike position
	contracts := []marketdata.OptionContract{
		contractNoGreeks(95),
		contractNoGreeks(100),
		contractNoGreeks(105),
		contractNoGreeks(110),
	}

	t.Run("OTM calls are strictly above the price", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessOTM, 2)
		want := []float64{105, 110}
		if len(got) != 2 || got[0].StrikePrice != want[0] || got[1].StrikePrice != want[1] {
			t.Errorf("Expected strikes %v, got %v", want, strikes(got))
		}
	})

	t.Run("ITM calls walk down from the price", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessITM, 2)
		want := []float64{100, 95}
		if len(got) != 2 || got[0].StrikePrice != want[0] || got[1].StrikePrice != want[1] {
			t.Errorf("Expected strikes %v, got %v", want, strikes(got))
		}
	})

	t.Run("OTM puts sit at or below the price", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightPut, models.MoneynessOTM, 2)
		want := []float64{100, 95}
		if len(got) != 2 || got[0].StrikePrice != want[0] || got[1].StrikePrice != want[1] {
			t.Errorf("Expected strikes %v, got %v", want, strikes(got))
		}
	})

	t.Run("ITM puts sit above the price", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 100, models.RightPut, models.MoneynessITM, 2)
		want := []float64{105, 110}
		if len(got) != 2 || got[0].StrikePrice != want[0] || got[1].StrikePrice != want[1] {
			t.Errorf("Expected strikes %v, got %v", want, strikes(got))
		}
	})

	t.Run("ATM picks nearest strikes either side", func(t *testing.T) {
		got := SelectByMoneyness(contracts, 102, models.RightCall, models.MoneynessATM, 2)
		if len(got) != 2 {
			t.Fatalf("Expected 2 contracts, got %d", len(got))
		}
		if got[0].StrikePrice != 100 && got[0].StrikePrice != 105 {
			t.Errorf("Expected a near-the-money strike first, got %v", got[0].StrikePrice)
		}
	})
}

func TestSelectByMoneyness_CountBounds(t *testing.T) {
	contracts := []marketdata.OptionContract{
		contractWithDelta(105, 0.36),
		contractWithDelta(110, 0.27),
	}

	if got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessOTM, 10); len(got) != 2 {
		t.Errorf("Expected output capped at matching contracts, got %d", len(got))
	}
	if got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessOTM, 0); got != nil {
		t.Errorf("Expected nil for zero count, got %v", strikes(got))
	}
	if got := SelectByMoneyness(nil, 100, models.RightCall, models.MoneynessOTM, 3); got != nil {
		t.Errorf("Expected nil for empty input, got %v", strikes(got))
	}
}

func TestSelectByMoneyness_MixedDeltaCoverage(t *testing.T) {
	// Fewer delta-bearing contracts than requested forces the strike path
	// for the whole set.
	contracts := []marketdata.OptionContract{
		contractWithDelta(105, 0.36),
		contractNoGreeks(110),
		contractNoGreeks(115),
	}
	got := SelectByMoneyness(contracts, 100, models.RightCall, models.MoneynessOTM, 2)
	if len(got) != 2 {
		t.Fatalf("Expected 2 contracts, got %d", len(got))
	}
	if got[0].StrikePrice != 105 || got[1].StrikePrice != 110 {
		t.Errorf("Expected strikes [105 110], got %v", strikes(got))
	}
}

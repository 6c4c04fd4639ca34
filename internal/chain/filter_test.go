package chain

import (
	"testing"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// twoDateChain builds a small mixed chain: two calls and a put at the near
// date, one call at the far date.
func twoDateChain(near, far time.Time) []marketdata.OptionContract {
	return []marketdata.OptionContract{
		contractAt("SPY", near, "C", 95),
		contractAt("SPY", near, "C", 100),
		contractAt("SPY", near, "P", 100),
		contractAt("SPY", far, "C", 105),
	}
}

func TestFilterByExpiration(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	near := now.AddDate(0, 0, 14)
	far := now.AddDate(0, 0, 28)

	contracts := twoDateChain(near, far)

	got := FilterByExpiration(contracts, "SPY", near)
	if len(got) != 3 {
		t.Fatalf("Expected 3 contracts at near date, got %d", len(got))
	}

	// Time-of-day on the query date must not matter
	lateInDay := near.Add(23 * time.Hour)
	if len(FilterByExpiration(contracts, "SPY", lateInDay)) != 3 {
		t.Error("Expected date-level comparison to ignore time of day")
	}

	if len(FilterByExpiration(contracts, "SPY", far)) != 1 {
		t.Error("Expected 1 contract at far date")
	}
}

func TestFilterByRight(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	contracts := twoDateChain(now.AddDate(0, 0, 14), now.AddDate(0, 0, 28))

	calls := FilterByRight(contracts, models.RightCall)
	puts := FilterByRight(contracts, models.RightPut)
	if len(calls) != 3 || len(puts) != 1 {
		t.Errorf("Expected 3 calls and 1 put, got %d and %d", len(calls), len(puts))
	}

	// Undecodable symbols attribute to neither side
	withJunk := append(contracts, marketdata.OptionContract{Symbol: "not-occ", StrikePrice: 100})
	if len(FilterByRight(withJunk, models.RightCall)) != 3 {
		t.Error("Expected junk symbol to be dropped")
	}
}

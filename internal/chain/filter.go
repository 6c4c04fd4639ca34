package chain

import (
	"time"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/models"
	"github.com/eddiefleurent/chain_scout/internal/occ"
)

// FilterByExpiration returns the contracts whose symbol-embedded
// expiration equals the given calendar date. Equality is by formatted
// date string, never by time.Time identity, so time-of-day on the query
// date is irrelevant.
func FilterByExpiration(contracts []marketdata.OptionContract, ticker string, expiration time.Time) []marketdata.OptionContract {
	want := occ.FormatDate(expiration)
	out := make([]marketdata.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		got, ok := occ.ExpirationString(c.Symbol, ticker)
		if ok && got == want {
			out = append(out, c)
		}
	}
	return out
}

// FilterByRight keeps one side of the chain. Symbols that fail to decode
// are dropped; they cannot be attributed to either side.
func FilterByRight(contracts []marketdata.OptionContract, right models.Right) []marketdata.OptionContract {
	out := make([]marketdata.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		decoded, err := occ.ParseSymbol(c.Symbol)
		if err != nil || decoded.Right != right {
			continue
		}
		out = append(out, c)
	}
	return out
}

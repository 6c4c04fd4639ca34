// Package occ decodes option symbols that follow the OCC convention:
// underlying ticker, six-digit YYMMDD expiration, C or P side, and the
// strike price times 1000 zero-padded to eight digits (e.g.
// "SPY251024P00621000"). Strike and expiration are always derived from
// the symbol on demand, never stored alongside it.
package occ

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/models"
)

const expirationLayout = "2006-01-02"

var symbolPattern = regexp.MustCompile(`^([A-Z]{1,6})(\d{6})([CP])(\d{8})$`)

// Contract is a fully decoded OCC option symbol.
type Contract struct {
	Underlying string
	Expiration time.Time // calendar date at UTC midnight
	Right      models.Right
	Strike     float64
}

// ParseSymbol validates and decodes a full OCC symbol. It is the single
// boundary through which untrusted symbols enter the system; callers get
// either a decoded contract or a rejection, never a partially valid value.
func ParseSymbol(symbol string) (Contract, error) {
	m := symbolPattern.FindStringSubmatch(symbol)
	if m == nil {
		return Contract{}, fmt.Errorf("symbol %q does not follow OCC convention", symbol)
	}

	exp, err := time.Parse("060102", m[2])
	if err != nil {
		return Contract{}, fmt.Errorf("symbol %q has invalid expiration %q: %w", symbol, m[2], err)
	}

	right := models.RightCall
	if m[3] == "P" {
		right = models.RightPut
	}

	strikeThousandths, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return Contract{}, fmt.Errorf("symbol %q has invalid strike %q: %w", symbol, m[4], err)
	}
	if strikeThousandths == 0 {
		return Contract{}, fmt.Errorf("symbol %q has zero strike", symbol)
	}

	return Contract{
		Underlying: m[1],
		Expiration: exp,
		Right:      right,
		Strike:     float64(strikeThousandths) / 1000.0,
	}, nil
}

// ExpirationString slices the YYMMDD expiration embedded immediately after
// the ticker prefix and formats it as YYYY-MM-DD. It assumes the ticker
// occupies exactly the symbol prefix with no separator; symbols from feeds
// that deviate from OCC convention will decode incorrectly. This is a
// known format coupling, not a generic parser.
func ExpirationString(symbol, ticker string) (string, bool) {
	start := len(ticker)
	if len(symbol) < start+6 {
		return "", false
	}
	raw := symbol[start : start+6]
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return fmt.Sprintf("20%s-%s-%s", raw[0:2], raw[2:4], raw[4:6]), true
}

// ExpirationDate decodes the embedded expiration into a calendar date.
func ExpirationDate(symbol, ticker string) (time.Time, bool) {
	s, ok := ExpirationString(symbol, ticker)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(expirationLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a date the way ExpirationString does, so the two can
// be compared as calendar-date strings regardless of time-of-day.
func FormatDate(t time.Time) string {
	return t.Format(expirationLayout)
}

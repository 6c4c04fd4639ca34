package ocr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/eddiefleurent/chain_scout/internal/models"
)

// OptionMatch is an inline option description recovered from raw text,
// e.g. "2 CIFR $14 Put 1/19".
type OptionMatch struct {
	Ticker     string
	Strike     float64
	Right      models.Right
	Expiration string
	Quantity   float64
}

// The contract pattern: optional quantity, uppercase ticker, optionally
// dollar-signed strike, the word Call or Put, then the rest of the line
// where the expiration is searched for separately.
var optionContractPattern = regexp.MustCompile(
	`(?:^|\s)(?:(\d+)\s+)?([A-Z]{1,6})\s+\$?(\d+(?:\.\d+)?)\s+((?i:Call|Put))\b(.*)`)

// Accepts "1/19", "01/19/2026", "Jan 19", "Jan 19, 2026".
var expirationTokenPattern = regexp.MustCompile(
	`(\d{1,2}/\d{1,2}(?:/\d{2,4})?|[A-Za-z]{3,9}\.?\s+\d{1,2}(?:,?\s+\d{4})?)`)

// ParseOptionContract recognizes an inline option description in one line
// of OCR text. This matcher runs independently of the geometric parser;
// both candidate sets are pooled and deduplicated by grouping key later.
// A match whose tail holds no resolvable expiration is rejected outright.
func ParseOptionContract(line string) *OptionMatch {
	m := optionContractPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	exp := expirationTokenPattern.FindString(m[5])
	if exp == "" {
		return nil
	}

	strike, err := strconv.ParseFloat(m[3], 64)
	if err != nil || strike <= 0 {
		return nil
	}

	quantity := 1.0
	if m[1] != "" {
		if q, err := strconv.ParseFloat(m[1], 64); err == nil && q > 0 {
			quantity = q
		}
	}

	right := models.RightCall
	if strings.EqualFold(m[4], "put") {
		right = models.RightPut
	}

	return &OptionMatch{
		Ticker:     m[2],
		Strike:     strike,
		Right:      right,
		Expiration: strings.TrimSpace(exp),
		Quantity:   quantity,
	}
}

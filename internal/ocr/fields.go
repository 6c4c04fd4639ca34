package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

// Range bounds the plausible values for a field.
type Range struct {
	Min float64
	Max float64
}

// sharesRange keeps share-count candidates away from prices and totals.
var sharesRange = Range{Min: 1, Max: 1_000_000}

// pickNumeric is the shared scorer behind the field pickers. Candidates
// are weighted by currency-symbol presence (money fields only), decimal
// presence, adjacency to the anchor token, and plausible-range
// membership. Highest score wins; ties break toward the earliest token.
// Percent values and negatives never qualify.
func pickNumeric(cands []NumericCandidate, anchorIndex int, money bool, rng *Range) *NumericCandidate {
	var best *NumericCandidate
	bestScore := -1

	for i := range cands {
		c := &cands[i]
		if c.HasPercent || c.Value < 0 {
			continue
		}
		score := 0
		if money && c.HasCurrency {
			score += 3
		}
		if c.HasDecimal {
			score++
		}
		if c.Index == anchorIndex+1 {
			score += 2
		}
		if rng != nil && c.Value >= rng.Min && c.Value <= rng.Max {
			score += 2
		}
		// Strict greater-than keeps the earliest candidate on ties,
		// since candidates arrive in token order.
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// PickNumericNearHeader finds the best money-like candidate in a window
// anchored at a ticker or label token.
func PickNumericNearHeader(cands []NumericCandidate, anchorIndex int) *NumericCandidate {
	return pickNumeric(cands, anchorIndex, true, nil)
}

// PickSharesCandidate finds the best share-count candidate in a window
// anchored at a ticker token.
func PickSharesCandidate(cands []NumericCandidate, anchorIndex int) *NumericCandidate {
	return pickNumeric(cands, anchorIndex, false, &sharesRange)
}

// PickNextNumeric returns the first numeric candidate strictly after the
// given token index, or nil.
func PickNextNumeric(cands []NumericCandidate, afterIndex int) *NumericCandidate {
	for i := range cands {
		if cands[i].Index > afterIndex && !cands[i].HasPercent && cands[i].Value >= 0 {
			return &cands[i]
		}
	}
	return nil
}

var (
	labeledCurrencyPattern = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	labeledNumberPattern   = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// lineWindow collects the label-bearing line plus up to the next two
// non-empty lines. Detail pages stack "AVERAGE COST" above its value, so
// the value is rarely on the label's own line.
func lineWindow(lines []string, label *regexp.Regexp) []string {
	for i, line := range lines {
		if !label.MatchString(line) {
			continue
		}
		window := []string{line}
		for j := i + 1; j < len(lines) && len(window) < 3; j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			window = append(window, lines[j])
		}
		return window
	}
	return nil
}

func findInWindow(lines []string, label, pattern *regexp.Regexp) *float64 {
	for _, line := range lineWindow(lines, label) {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return &val
	}
	return nil
}

// FindLabeledCurrency locates a label line (e.g. "Average cost") in the
// flattened OCR text and returns the first currency-prefixed amount on
// that line or the two lines below it. First match wins.
func FindLabeledCurrency(lines []string, label *regexp.Regexp) *float64 {
	if v := findInWindow(lines, label, labeledCurrencyPattern); v != nil {
		return v
	}
	// Some layouts drop the dollar sign; accept a bare number from the
	// same window before giving up.
	return findInWindow(lines, label, labeledNumberPattern)
}

// FindLabeledNumber is FindLabeledCurrency for fields that are plain
// counts rather than money.
func FindLabeledNumber(lines []string, label *regexp.Regexp) *float64 {
	return findInWindow(lines, label, labeledNumberPattern)
}

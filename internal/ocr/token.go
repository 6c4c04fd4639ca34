// Package ocr recovers structured holding candidates from the noisy,
// spatially-flattened text a vision backend extracts from brokerage
// screenshots. Every heuristic here fails soft: no match yields nil or an
// empty slice, never an error. A screenshot that produces zero usable
// holdings surfaces as an empty list upstream.
package ocr

import (
	"strings"
	"unicode"

	"github.com/eddiefleurent/chain_scout/internal/vision"
)

// TokenCandidate is one cleaned OCR token, scoped to a single parse call.
type TokenCandidate struct {
	Raw        string
	Text       string
	Confidence float64
	Index      int
	Box        *vision.BoundingBox
}

// NumericCandidate is a token that parsed as a number, with the signals
// the field pickers score on.
type NumericCandidate struct {
	TokenCandidate
	Value       float64
	HasCurrency bool
	HasDecimal  bool
	HasPercent  bool
	Magnitude   byte // 'K', 'M', 'B', or 0
}

// tokenKeep are the symbols preserved when trimming token edges; they
// carry meaning for numeric classification ($1,234.56, 5%, -0.5).
const tokenKeep = "$%.-"

func trimTokenEdges(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(tokenKeep, r)
	})
}

// TokenizeParagraph flattens a paragraph's word-level output into a
// stream of cleaned tokens. Trimming that empties a token falls back to
// the raw text so positional indexing stays stable.
func TokenizeParagraph(p vision.Paragraph) []TokenCandidate {
	words := p.Words
	if len(words) == 0 {
		words = p.Tokens
	}

	out := make([]TokenCandidate, 0, len(words))
	for i, w := range words {
		text := trimTokenEdges(w.Text)
		if text == "" {
			text = w.Text
		}
		conf := w.Confidence
		if conf == 0 {
			conf = p.Confidence
		}
		out = append(out, TokenCandidate{
			Raw:        w.Text,
			Text:       text,
			Confidence: conf,
			Index:      i,
			Box:        boxCopy(w.BoundingBox),
		})
	}
	return out
}

func boxCopy(b *vision.BoundingBox) *vision.BoundingBox {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// headerKeywords are column labels brokerages put above their position
// tables. A paragraph dominated by these is a table header, not a holding.
var headerKeywords = map[string]struct{}{
	"TICKER": {}, "SYMBOL": {}, "NAME": {}, "DESCRIPTION": {},
	"SHARE": {}, "SHARES": {}, "QTY": {}, "QUANTITY": {}, "CONTRACTS": {},
	"PRICE": {}, "LAST": {}, "COST": {}, "BASIS": {}, "AVG": {}, "AVERAGE": {},
	"VALUE": {}, "TOTAL": {}, "CHANGE": {}, "CHG": {}, "GAIN": {}, "LOSS": {},
	"RETURN": {}, "TODAY": {}, "DAY": {}, "MKT": {}, "MARKET": {},
	"POSITION": {}, "POSITIONS": {}, "EQUITY": {}, "BALANCE": {},
}

// IsHeaderParagraph reports whether at least 60% of the paragraph's
// distinct uppercase alphabetic tokens are known column keywords. Header
// paragraphs are excluded from holding extraction entirely.
func IsHeaderParagraph(p vision.Paragraph) bool {
	distinct := make(map[string]struct{})
	for _, t := range TokenizeParagraph(p) {
		if isUpperAlpha(t.Text) {
			distinct[t.Text] = struct{}{}
		}
	}
	if len(distinct) == 0 {
		return false
	}

	matched := 0
	for word := range distinct {
		if _, ok := headerKeywords[word]; ok {
			matched++
		}
	}
	return float64(matched)/float64(len(distinct)) >= 0.6
}

func isUpperAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

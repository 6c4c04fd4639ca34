package ocr

import (
	"regexp"
	"strings"

	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/models"
	"github.com/eddiefleurent/chain_scout/internal/vision"
)

// optionTextConfidence is assigned to rows recovered by the inline
// contract matcher, which works on flattened text and carries no
// per-token confidence of its own.
const optionTextConfidence = 0.7

// detailLabelConfidence is assigned to fields recovered via labeled
// search on a detail page; labeled fields are the most reliable signal
// OCR produces.
const detailLabelConfidence = 0.9

// tickerStopwords are uppercase words that look like tickers but never
// are, on top of the table-header keywords.
var tickerStopwords = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "ALL": {}, "NEW": {}, "YOUR": {},
	"BUY": {}, "SELL": {}, "CALL": {}, "PUT": {}, "OPEN": {}, "CLOSE": {},
	"USD": {}, "ETF": {}, "YTD": {}, "EST": {}, "EDT": {}, "AM": {}, "PM": {},
}

var (
	sharesLabelPattern      = regexp.MustCompile(`(?i)\bshares?\b|\bquantity\b|\bqty\b`)
	averageCostLabelPattern = regexp.MustCompile(`(?i)average\s+cost|avg\.?\s+cost`)
	marketValueLabelPattern = regexp.MustCompile(`(?i)market\s+value|equity\s+value`)
)

func isTickerToken(text string) bool {
	if len(text) < 1 || len(text) > 5 || !isUpperAlpha(text) {
		return false
	}
	if _, ok := headerKeywords[text]; ok {
		return false
	}
	if _, ok := tickerStopwords[text]; ok {
		return false
	}
	return true
}

// ExtractRows runs the full per-image pipeline: the geometric paragraph
// path and the inline option-contract matcher run over the same capture,
// their candidates are pooled, the capture is classified, and detail
// captures get a labeled-field enrichment pass. Deduplication across
// captures is the reconciler's job, not this function's.
func ExtractRows(res *vision.Result) []drafts.Row {
	if res == nil {
		return nil
	}

	var rows []drafts.Row
	for _, p := range res.Paragraphs {
		if IsHeaderParagraph(p) {
			continue
		}
		rows = append(rows, extractFromParagraph(p)...)
	}

	lines := strings.Split(res.Text, "\n")
	rows = append(rows, extractOptionRows(lines)...)

	viewType := ClassifyViewType(rows, res.Text)
	if viewType == models.ViewDetail {
		rows = enrichFromLabels(rows, lines)
	}
	for i := range rows {
		rows[i].ViewType = viewType
		rows[i] = rows[i].Sanitize()
	}
	return rows
}

// extractFromParagraph anchors a candidate row at each ticker-looking
// token and searches the window up to the next ticker for its numbers.
func extractFromParagraph(p vision.Paragraph) []drafts.Row {
	tokens := TokenizeParagraph(p)
	numerics := NumericCandidates(tokens)

	var anchors []int
	for i, t := range tokens {
		if isTickerToken(t.Text) {
			anchors = append(anchors, i)
		}
	}

	source := strings.TrimSpace(p.Text)
	if len(source) > 120 {
		source = source[:120]
	}

	var rows []drafts.Row
	for ai, anchor := range anchors {
		windowEnd := len(tokens)
		if ai+1 < len(anchors) {
			windowEnd = anchors[ai+1]
		}
		window := windowNumerics(numerics, anchor, windowEnd)

		row := drafts.NewRow(tokens[anchor].Text, models.AssetEquity)
		row.Confidence = tokens[anchor].Confidence
		row.Source = source

		shares := PickSharesCandidate(window, anchor)
		if shares != nil {
			row.Shares = &shares.Value
			window = excludeIndex(window, shares.Index)
		}

		cost := PickNumericNearHeader(window, anchor)
		var value *NumericCandidate
		if cost != nil {
			value = PickNextNumeric(window, cost.Index)
		}

		if cost != nil {
			// A K/M/B-suffixed "cost" with a known share count and no
			// separate value candidate is really a total market value:
			// nobody pays $1.2K per share, but a $1.2K position is common.
			if cost.Magnitude != 0 && row.Shares != nil && value == nil {
				row.MarketValue = &cost.Value
			} else {
				row.CostBasis = &cost.Value
				row.CostBasisSource = models.CostBasisOCR
			}
		}
		if value != nil {
			row.MarketValue = &value.Value
		}

		// A bare ticker with no numbers is only meaningful as the title
		// of a detail page; inside a busy paragraph it is OCR noise.
		if row.Shares == nil && row.CostBasis == nil && row.MarketValue == nil && len(tokens) > 3 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func windowNumerics(numerics []NumericCandidate, start, end int) []NumericCandidate {
	out := make([]NumericCandidate, 0, len(numerics))
	for _, n := range numerics {
		if n.Index > start && n.Index < end {
			out = append(out, n)
		}
	}
	return out
}

func excludeIndex(numerics []NumericCandidate, index int) []NumericCandidate {
	out := make([]NumericCandidate, 0, len(numerics))
	for _, n := range numerics {
		if n.Index != index {
			out = append(out, n)
		}
	}
	return out
}

// extractOptionRows runs the inline contract matcher over every line of
// the flattened text.
func extractOptionRows(lines []string) []drafts.Row {
	var rows []drafts.Row
	for _, line := range lines {
		m := ParseOptionContract(line)
		if m == nil {
			continue
		}
		row := drafts.NewRow(m.Ticker, models.AssetOption)
		row.Contracts = &m.Quantity
		row.OptionStrike = &m.Strike
		row.OptionExpiration = m.Expiration
		row.OptionRight = m.Right
		row.Confidence = optionTextConfidence
		row.Source = strings.TrimSpace(line)
		rows = append(rows, row)
	}
	return rows
}

// enrichFromLabels upgrades the single equity row of a detail capture
// with labeled-field values, which beat whatever the positional
// heuristics guessed.
func enrichFromLabels(rows []drafts.Row, lines []string) []drafts.Row {
	idx := -1
	for i, r := range rows {
		if r.AssetType == models.AssetEquity {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rows
	}

	if v := FindLabeledNumber(lines, sharesLabelPattern); v != nil {
		rows[idx].Shares = v
	}
	if v := FindLabeledCurrency(lines, averageCostLabelPattern); v != nil {
		rows[idx].CostBasis = v
		rows[idx].CostBasisSource = models.CostBasisOCR
	}
	if v := FindLabeledCurrency(lines, marketValueLabelPattern); v != nil {
		rows[idx].MarketValue = v
	}
	if rows[idx].Confidence < detailLabelConfidence {
		rows[idx].Confidence = detailLabelConfidence
	}
	return rows
}

package ocr

import (
	"regexp"

	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// detailPagePatterns are phrases that only appear on a single-position
// detail screen, never on a positions list.
var detailPagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)average\s+cost`),
	regexp.MustCompile(`(?i)equity\s+value`),
	regexp.MustCompile(`(?i)today'?s\s+return`),
	regexp.MustCompile(`(?i)total\s+return`),
	regexp.MustCompile(`(?i)your\s+market\s+value`),
	regexp.MustCompile(`(?i)cost\s+basis`),
}

// ClassifyViewType decides what kind of screen a capture came from. Many
// distinct tickers means a positions list; a single ticker alongside
// detail-page wording means a zoomed-in detail view; anything else stays
// unknown so the merge treats it as same-tier data.
func ClassifyViewType(rows []drafts.Row, rawText string) models.ViewType {
	tickers := make(map[string]struct{})
	for _, r := range rows {
		if r.Ticker != "" {
			tickers[r.Ticker] = struct{}{}
		}
	}

	if len(tickers) > 3 {
		return models.ViewList
	}
	if len(tickers) == 1 {
		for _, p := range detailPagePatterns {
			if p.MatchString(rawText) {
				return models.ViewDetail
			}
		}
	}
	return models.ViewUnknown
}

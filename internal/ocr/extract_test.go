package ocr

import (
	"testing"

	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/models"
	"github.com/eddiefleurent/chain_scout/internal/vision"
)

func findRow(rows []drafts.Row, ticker string, assetType models.AssetType) *drafts.Row {
	for i := range rows {
		if rows[i].Ticker == ticker && rows[i].AssetType == assetType {
			return &rows[i]
		}
	}
	return nil
}

func TestExtractRows_PositionsList(t *testing.T) {
	res := &vision.Result{
		Text: "SYMBOL SHARES PRICE VALUE\nAAPL 12 $182.50 $2,190.00\nHOOD 5 $21.30 $106.50\nNVDA 3 $903.10 $2,709.30\nTSLA 2 $244.00 $488.00\n",
		Paragraphs: []vision.Paragraph{
			para(0.98, "SYMBOL", "SHARES", "PRICE", "VALUE"),
			para(0.96, "AAPL", "12", "$182.50", "$2,190.00"),
			para(0.95, "HOOD", "5", "$21.30", "$106.50"),
			para(0.94, "NVDA", "3", "$903.10", "$2,709.30"),
			para(0.93, "TSLA", "2", "$244.00", "$488.00"),
		},
	}

	rows := ExtractRows(res)

	// The header paragraph contributes no rows
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}

	aapl := findRow(rows, "AAPL", models.AssetEquity)
	if aapl == nil {
		t.Fatal("Expected an AAPL row")
	}
	if aapl.Shares == nil || *aapl.Shares != 12 {
		t.Errorf("Expected 12 shares, got %v", aapl.Shares)
	}
	if aapl.CostBasis == nil || *aapl.CostBasis != 182.50 {
		t.Errorf("Expected cost basis 182.50, got %v", aapl.CostBasis)
	}
	if aapl.MarketValue == nil || *aapl.MarketValue != 2190 {
		t.Errorf("Expected market value 2190, got %v", aapl.MarketValue)
	}
	if aapl.CostBasisSource != models.CostBasisOCR {
		t.Errorf("Expected OCR cost basis source, got %v", aapl.CostBasisSource)
	}

	// Four distinct tickers classify the capture as a list view
	for _, r := range rows {
		if r.ViewType != models.ViewList {
			t.Errorf("Expected list view on %s, got %v", r.Ticker, r.ViewType)
		}
	}
}

func TestExtractRows_DetailView(t *testing.T) {
	res := &vision.Result{
		Text: "AAPL\nYour market value\n$2,190.00\nAverage cost\n$182.50\nShares\n12\nToday's return\n+$14.20\n",
		Paragraphs: []vision.Paragraph{
			para(0.97, "AAPL"),
			para(0.96, "Your", "market", "value"),
			para(0.96, "$2,190.00"),
		},
	}

	rows := ExtractRows(res)
	aapl := findRow(rows, "AAPL", models.AssetEquity)
	if aapl == nil {
		t.Fatal("Expected an AAPL row")
	}
	if aapl.ViewType != models.ViewDetail {
		t.Fatalf("Expected detail view, got %v", aapl.ViewType)
	}
	// Labeled fields beat positional guesses on detail pages
	if aapl.Shares == nil || *aapl.Shares != 12 {
		t.Errorf("Expected 12 shares from label, got %v", aapl.Shares)
	}
	if aapl.CostBasis == nil || *aapl.CostBasis != 182.50 {
		t.Errorf("Expected labeled cost 182.50, got %v", aapl.CostBasis)
	}
	if aapl.MarketValue == nil || *aapl.MarketValue != 2190 {
		t.Errorf("Expected labeled value 2190, got %v", aapl.MarketValue)
	}
	if aapl.Confidence < 0.9 {
		t.Errorf("Expected labeled-field confidence boost, got %v", aapl.Confidence)
	}
}

func TestExtractRows_InlineOptionLine(t *testing.T) {
	res := &vision.Result{
		Text: "2 CIFR $14 Put 1/19\n",
	}

	rows := ExtractRows(res)
	opt := findRow(rows, "CIFR", models.AssetOption)
	if opt == nil {
		t.Fatal("Expected a CIFR option row")
	}
	if opt.Contracts == nil || *opt.Contracts != 2 {
		t.Errorf("Expected 2 contracts, got %v", opt.Contracts)
	}
	if opt.OptionStrike == nil || *opt.OptionStrike != 14 {
		t.Errorf("Expected strike 14, got %v", opt.OptionStrike)
	}
	if opt.OptionRight != models.RightPut {
		t.Errorf("Expected put, got %v", opt.OptionRight)
	}
	if opt.OptionExpiration != "1/19" {
		t.Errorf("Expected expiration 1/19, got %q", opt.OptionExpiration)
	}
}

func TestExtractRows_MagnitudeSuffixReinterpretation(t *testing.T) {
	// A K-suffixed "cost" with a known share count and no separate value
	// is really a total market value
	res := &vision.Result{
		Paragraphs: []vision.Paragraph{
			para(0.9, "CIFR", "300", "$1.2K"),
		},
	}

	rows := ExtractRows(res)
	row := findRow(rows, "CIFR", models.AssetEquity)
	if row == nil {
		t.Fatal("Expected a CIFR row")
	}
	if row.Shares == nil || *row.Shares != 300 {
		t.Errorf("Expected 300 shares, got %v", row.Shares)
	}
	if row.MarketValue == nil || *row.MarketValue != 1200 {
		t.Errorf("Expected market value 1200, got %v", row.MarketValue)
	}
	if row.CostBasis != nil {
		t.Errorf("Expected no cost basis, got %v", *row.CostBasis)
	}
}

func TestExtractRows_NilResult(t *testing.T) {
	if rows := ExtractRows(nil); rows != nil {
		t.Errorf("Expected nil for nil result, got %v", rows)
	}
}

func TestClassifyViewType(t *testing.T) {
	row := func(ticker string) drafts.Row {
		return drafts.Row{Ticker: ticker, AssetType: models.AssetEquity}
	}

	t.Run("many tickers is a list", func(t *testing.T) {
		rows := []drafts.Row{row("A"), row("B"), row("C"), row("D")}
		if got := ClassifyViewType(rows, ""); got != models.ViewList {
			t.Errorf("Expected list, got %v", got)
		}
	})

	t.Run("one ticker with detail phrasing", func(t *testing.T) {
		rows := []drafts.Row{row("AAPL")}
		if got := ClassifyViewType(rows, "Average cost $182.50"); got != models.ViewDetail {
			t.Errorf("Expected detail, got %v", got)
		}
	})

	t.Run("one ticker without detail phrasing", func(t *testing.T) {
		rows := []drafts.Row{row("AAPL")}
		if got := ClassifyViewType(rows, "just some text"); got != models.ViewUnknown {
			t.Errorf("Expected unknown, got %v", got)
		}
	})

	t.Run("three tickers stay unknown", func(t *testing.T) {
		rows := []drafts.Row{row("A"), row("B"), row("C")}
		if got := ClassifyViewType(rows, ""); got != models.ViewUnknown {
			t.Errorf("Expected unknown, got %v", got)
		}
	})
}

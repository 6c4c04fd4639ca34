package drafts

import (
	"testing"

	"github.com/eddiefleurent/chain_scout/internal/models"
)

func f(v float64) *float64 { return &v }

func listRow(ticker string, conf float64) Row {
	r := NewRow(ticker, models.AssetEquity)
	r.ViewType = models.ViewList
	r.Confidence = conf
	return r
}

func detailRow(ticker string, conf float64) Row {
	r := NewRow(ticker, models.AssetEquity)
	r.ViewType = models.ViewDetail
	r.Confidence = conf
	return r
}

func TestMerge_NewRowsInsert(t *testing.T) {
	a := listRow("AAPL", 0.9)
	a.Shares = f(12)

	got := Merge(nil, []Row{a})
	if len(got) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(got))
	}
	merged, ok := got[a.Key()]
	if !ok || merged.Shares == nil || *merged.Shares != 12 {
		t.Errorf("Expected inserted row, got %+v", merged)
	}
}

func TestMerge_DetailBeatsList_DetailArrivesSecond(t *testing.T) {
	list := listRow("AAPL", 0.95)
	list.Shares = f(10) // misread from the list view
	list.Selected = false

	existing := Merge(nil, []Row{list})

	detail := detailRow("AAPL", 0.7)
	detail.Shares = f(12)
	detail.CostBasis = f(182.50)

	got := Merge(existing, []Row{detail})
	merged := got[detail.Key()]

	if merged.Shares == nil || *merged.Shares != 12 {
		t.Errorf("Expected detail shares 12 despite lower confidence, got %v", merged.Shares)
	}
	if merged.CostBasis == nil || *merged.CostBasis != 182.50 {
		t.Errorf("Expected detail cost basis, got %v", merged.CostBasis)
	}
	// Identity and the user's review choice survive the takeover
	if merged.ID != list.ID {
		t.Error("Expected existing row ID to survive")
	}
	if merged.Selected {
		t.Error("Expected deselection to survive")
	}
	if merged.Confidence != 0.95 {
		t.Errorf("Expected max confidence 0.95, got %v", merged.Confidence)
	}
}

func TestMerge_ListNeverDisplacesDetail(t *testing.T) {
	detail := detailRow("AAPL", 0.6)
	detail.Shares = f(12)

	existing := Merge(nil, []Row{detail})

	list := listRow("AAPL", 0.99)
	list.Shares = f(10)

	got := Merge(existing, []Row{list})
	merged := got[list.Key()]

	if merged.Shares == nil || *merged.Shares != 12 {
		t.Errorf("Expected detail shares to survive a confident list row, got %v", merged.Shares)
	}
	if merged.ViewType != models.ViewDetail {
		t.Errorf("Expected detail view to survive, got %v", merged.ViewType)
	}
}

func TestMerge_SameTierHysteresis(t *testing.T) {
	t.Run("within band keeps existing", func(t *testing.T) {
		a := listRow("AAPL", 0.70)
		a.Shares = f(12)
		existing := Merge(nil, []Row{a})

		b := listRow("AAPL", 0.72) // 0.02 over, inside the 0.05 band
		b.Shares = f(99)

		merged := Merge(existing, []Row{b})[a.Key()]
		if merged.Shares == nil || *merged.Shares != 12 {
			t.Errorf("Expected hysteresis to keep 12, got %v", merged.Shares)
		}
		// Confidence still ratchets up
		if merged.Confidence != 0.72 {
			t.Errorf("Expected confidence 0.72, got %v", merged.Confidence)
		}
	})

	t.Run("clearing the band overwrites", func(t *testing.T) {
		a := listRow("AAPL", 0.70)
		a.Shares = f(12)
		existing := Merge(nil, []Row{a})

		b := listRow("AAPL", 0.80)
		b.Shares = f(15)

		merged := Merge(existing, []Row{b})[a.Key()]
		if merged.Shares == nil || *merged.Shares != 15 {
			t.Errorf("Expected overwrite to 15, got %v", merged.Shares)
		}
	})

	t.Run("nil fields fill regardless of confidence", func(t *testing.T) {
		a := listRow("AAPL", 0.95)
		a.Shares = f(12)
		existing := Merge(nil, []Row{a})

		b := listRow("AAPL", 0.50)
		b.CostBasis = f(182.50)

		merged := Merge(existing, []Row{b})[a.Key()]
		if merged.CostBasis == nil || *merged.CostBasis != 182.50 {
			t.Errorf("Expected nil field to fill, got %v", merged.CostBasis)
		}
		if merged.Shares == nil || *merged.Shares != 12 {
			t.Errorf("Expected existing shares untouched, got %v", merged.Shares)
		}
	})
}

func TestMerge_OptionsKeyedPerContract(t *testing.T) {
	put := NewRow("CIFR", models.AssetOption)
	put.OptionStrike = f(14)
	put.OptionExpiration = "2026-01-16"
	put.OptionRight = models.RightPut
	put.Contracts = f(2)

	call := NewRow("CIFR", models.AssetOption)
	call.OptionStrike = f(20)
	call.OptionExpiration = "2026-01-16"
	call.OptionRight = models.RightCall
	call.Contracts = f(1)

	got := Merge(nil, []Row{put, call})
	if len(got) != 2 {
		t.Fatalf("Expected distinct contracts to stay distinct, got %d rows", len(got))
	}
}

func TestMerge_InputsNotMutated(t *testing.T) {
	a := listRow("AAPL", 0.9)
	a.Shares = f(12)
	existing := map[string]Row{a.Key(): a}

	b := listRow("AAPL", 0.99)
	b.Shares = f(15)
	Merge(existing, []Row{b})

	if *existing[a.Key()].Shares != 12 {
		t.Error("Expected existing map to be untouched")
	}
}

func TestMerge_SanitizesIncoming(t *testing.T) {
	bad := listRow("AAPL", 0.9)
	bad.Shares = f(-5)
	bad.MarketValue = f(2190)

	merged := Merge(nil, []Row{bad})[bad.Key()]
	if merged.Shares != nil {
		t.Errorf("Expected negative shares dropped, got %v", *merged.Shares)
	}
	if merged.MarketValue == nil || *merged.MarketValue != 2190 {
		t.Errorf("Expected market value kept, got %v", merged.MarketValue)
	}
}

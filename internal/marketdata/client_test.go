package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetStockPrice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/stocks/AAPL/trades/latest" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("APCA-API-KEY-ID") != "key" || r.Header.Get("APCA-API-SECRET-KEY") != "secret" {
			t.Error("Expected credential headers")
		}
		_, _ = w.Write([]byte(`{"trade":{"p":182.53}}`))
	}))
	defer ts.Close()

	api := NewAlpacaAPI("key", "secret", ts.URL)
	price, err := api.GetStockPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetStockPrice failed: %v", err)
	}
	if price != 182.53 {
		t.Errorf("Expected 182.53, got %v", price)
	}
}

func TestGetStockPrice_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	api := NewAlpacaAPI("key", "secret", ts.URL)
	_, err := api.GetStockPrice(context.Background(), "AAPL")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", apiErr.Status)
	}
}

func TestGetOptionChain(t *testing.T) {
	pages := []string{
		`{"snapshots":{
			"AAPL260116C00105000":{"latestQuote":{"bp":1.00,"ap":1.20},"greeks":{"delta":0.35,"theta":-0.02,"gamma":0.01,"vega":0.1},"impliedVolatility":0.3},
			"not-an-occ-symbol":{"latestQuote":{"bp":9.99,"ap":10.01}}
		},"next_page_token":"abc"}`,
		`{"snapshots":{
			"AAPL260116P00095000":{"latestQuote":{"bp":0.00,"ap":0.90}}
		},"next_page_token":null}`,
	}

	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if r.URL.Query().Get("page_token") == "abc" {
			page = 1
		}
		calls++
		_, _ = w.Write([]byte(pages[page]))
	}))
	defer ts.Close()

	api := NewAlpacaAPI("key", "secret", ts.URL)
	contracts, err := api.GetOptionChain(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetOptionChain failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected pagination across 2 pages, got %d calls", calls)
	}
	// The undecodable symbol is dropped
	if len(contracts) != 2 {
		t.Fatalf("Expected 2 contracts, got %d", len(contracts))
	}

	bysym := make(map[string]OptionContract)
	for _, c := range contracts {
		bysym[c.Symbol] = c
	}

	call, ok := bysym["AAPL260116C00105000"]
	if !ok {
		t.Fatal("Expected the call contract")
	}
	if call.StrikePrice != 105 {
		t.Errorf("Expected decoded strike 105, got %v", call.StrikePrice)
	}
	if call.Bid == nil || *call.Bid != 1.00 || call.Ask == nil || *call.Ask != 1.20 {
		t.Errorf("Unexpected quote %v/%v", call.Bid, call.Ask)
	}
	if call.Delta == nil || *call.Delta != 0.35 {
		t.Errorf("Expected delta 0.35, got %v", call.Delta)
	}
	if call.ImpliedVolatility == nil || *call.ImpliedVolatility != 0.3 {
		t.Errorf("Expected IV 0.3, got %v", call.ImpliedVolatility)
	}

	// A zero bid means "no bid", not a bid at zero
	put := bysym["AAPL260116P00095000"]
	if put.Bid != nil {
		t.Errorf("Expected nil bid for zero bp, got %v", *put.Bid)
	}
	if put.Ask == nil || *put.Ask != 0.90 {
		t.Errorf("Expected ask 0.90, got %v", put.Ask)
	}
	if put.Delta != nil {
		t.Errorf("Expected nil greeks, got delta %v", *put.Delta)
	}
}

func TestGetAssetName(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/assets/AAPL" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(assetResponse{Symbol: "AAPL", Name: "Apple Inc. Common Stock"})
	}))
	defer ts.Close()

	api := NewAlpacaAPI("key", "secret", ts.URL)
	name, err := api.GetAssetName(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetAssetName failed: %v", err)
	}
	if name != "Apple Inc. Common Stock" {
		t.Errorf("Unexpected name %q", name)
	}
}

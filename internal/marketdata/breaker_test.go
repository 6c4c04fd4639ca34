package marketdata

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCircuitBreakerClient_PassesThroughSuccess(t *testing.T) {
	flaky := &flakyClient{}
	cb := NewCircuitBreakerClient(flaky)

	price, err := cb.GetStockPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetStockPrice failed: %v", err)
	}
	if price != 100 {
		t.Errorf("Expected 100, got %v", price)
	}

	name, err := cb.GetAssetName(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetAssetName failed: %v", err)
	}
	if name != "Apple Inc." {
		t.Errorf("Unexpected name %q", name)
	}
}

func TestCircuitBreakerClient_TripsAfterFailures(t *testing.T) {
	flaky := &flakyClient{failUntil: 100, err: errors.New("feed down")}
	cb := NewCircuitBreakerClientWithSettings(flaky, CircuitBreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.6,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cb.GetStockPrice(ctx, "AAPL"); err == nil {
			t.Fatal("Expected failure")
		}
	}

	// The breaker is open now; calls fail fast without reaching the feed
	before := flaky.calls
	_, err := cb.GetStockPrice(ctx, "AAPL")
	if err == nil {
		t.Fatal("Expected open-circuit error")
	}
	if !strings.Contains(err.Error(), "open") {
		t.Errorf("Expected an open-circuit error, got %v", err)
	}
	if flaky.calls != before {
		t.Errorf("Expected no upstream call while open, got %d more", flaky.calls-before)
	}
}

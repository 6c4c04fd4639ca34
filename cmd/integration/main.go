package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/chain_scout/internal/chain"
	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/mock"
	"github.com/eddiefleurent/chain_scout/internal/models"
	"github.com/eddiefleurent/chain_scout/internal/portfolio"
	"github.com/eddiefleurent/chain_scout/internal/storage"
	"github.com/eddiefleurent/chain_scout/internal/suggest"
)

// End-to-end smoke run against the mock collaborators: chain to
// suggestions for every strategy, then screenshots to promoted holdings.
func main() {
	fmt.Println("=== Chain Scout - End-to-End Integration Run ===")
	fmt.Println()

	logger := log.New(os.Stdout, "[E2E] ", log.LstdFlags)
	ctx := context.Background()

	market := mock.NewMockDataProvider().WithPrice(100)
	visionClient := mock.NewMockVision()

	testStoragePath := "data/holdings_integration_test.json"
	store, err := storage.NewJSONStorage(testStoragePath)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer func() {
		if err := os.Remove(testStoragePath); err != nil && !os.IsNotExist(err) {
			logger.Printf("Warning: Failed to cleanup test storage file: %v", err)
		}
	}()

	// Step 1: suggestion pipeline for all four strategies
	price, err := market.GetStockPrice(ctx, "SPY")
	if err != nil {
		log.Fatalf("GetStockPrice failed: %v", err)
	}
	contracts, err := market.GetOptionChain(ctx, "SPY")
	if err != nil {
		log.Fatalf("GetOptionChain failed: %v", err)
	}
	logger.Printf("Fetched %d contracts at price %.2f", len(contracts), price)

	now := time.Now()
	expiration, ok := chain.PickExpirationDate(contracts, "SPY", chain.DefaultSelection, chain.DefaultDaysAhead, now)
	if !ok {
		log.Fatal("No usable expiration in mock chain")
	}
	logger.Printf("Resolved expiration %s", expiration.Format("2006-01-02"))

	atExpiration := chain.FilterByExpiration(contracts, "SPY", expiration)
	calls := chain.FilterByRight(atExpiration, models.RightCall)
	puts := chain.FilterByRight(atExpiration, models.RightPut)

	ccRows := suggest.BuildCoveredCalls(suggest.SelectByMoneyness(calls, price, models.RightCall, models.MoneynessOTM, 5), price, expiration, now)
	lcRows := suggest.BuildLongCalls(suggest.SelectByMoneyness(calls, price, models.RightCall, models.MoneynessATM, 5), price, expiration, now)
	lpRows := suggest.BuildLongPuts(suggest.SelectByMoneyness(puts, price, models.RightPut, models.MoneynessATM, 5), price, expiration, now)
	cspRows := suggest.BuildCashSecuredPuts(suggest.SelectByMoneyness(puts, price, models.RightPut, models.MoneynessOTM, 5), expiration, now)
	logger.Printf("Suggestions: %d covered calls, %d long calls, %d long puts, %d cash-secured puts",
		len(ccRows), len(lcRows), len(lpRows), len(cspRows))
	if len(ccRows) == 0 || len(lcRows) == 0 || len(lpRows) == 0 || len(cspRows) == 0 {
		log.Fatal("Expected non-empty suggestion sets for every strategy")
	}

	// Step 2: screenshot scan to reconciled drafts
	scanner := portfolio.NewScanner(visionClient, logrus.New())
	result, err := scanner.Scan(ctx, map[string]drafts.Row{}, []portfolio.Image{
		{Name: "positions.png", MimeType: "image/png"},
		{Name: "detail.png", MimeType: "image/png"},
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	logger.Printf("Scan produced %d draft rows (%d image errors)", len(result.Rows), len(result.ImageErrors))
	if len(result.Rows) == 0 {
		log.Fatal("Expected draft rows from mock OCR")
	}

	// Step 3: promote ready drafts into the store
	promoted := 0
	for _, row := range result.Rows {
		if !row.Ready() {
			continue
		}
		h, err := drafts.ToHolding(row, now)
		if err != nil {
			logger.Printf("Skipping %s: %v", row.Key(), err)
			continue
		}
		if err := store.AddHolding(h); err != nil {
			log.Fatalf("AddHolding failed: %v", err)
		}
		promoted++
	}
	logger.Printf("Promoted %d holdings", promoted)
	if promoted == 0 {
		log.Fatal("Expected at least one promotable draft row")
	}

	if got := store.GetHoldings(); len(got) != promoted {
		log.Fatalf("Storage round-trip mismatch: promoted %d, stored %d", promoted, len(got))
	}

	fmt.Println()
	fmt.Println("=== Integration run passed ===")
}

// Package mock provides offline implementations of the market data and
// vision clients so the server and CLI run end to end without credentials.
package mock

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/vision"
)

// MockDataProvider serves synthetic prices and option chains.
type MockDataProvider struct {
	currentPrice float64
	now          func() time.Time
}

// secureFloat64 generates a cryptographically secure random float64 between 0 and 1
func secureFloat64() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<53))
	if err != nil {
		// Fallback to a reasonable default if crypto/rand fails
		return 0.5
	}
	return float64(n.Int64()) / (1 << 53)
}

// NewMockDataProvider creates a provider with a randomized base price.
func NewMockDataProvider() *MockDataProvider {
	return &MockDataProvider{
		currentPrice: 95.0 + secureFloat64()*10, // underlying around 95-105
		now:          time.Now,
	}
}

// WithPrice pins the underlying price, for deterministic tests.
func (m *MockDataProvider) WithPrice(price float64) *MockDataProvider {
	m.currentPrice = price
	return m
}

// WithClock injects the time source used to lay out expirations.
func (m *MockDataProvider) WithClock(now func() time.Time) *MockDataProvider {
	if now != nil {
		m.now = now
	}
	return m
}

// Ensure MockDataProvider implements the client interface.
var _ marketdata.Client = (*MockDataProvider)(nil)

// GetStockPrice returns the synthetic price with a small random walk.
func (m *MockDataProvider) GetStockPrice(_ context.Context, _ string) (float64, error) {
	m.currentPrice += (secureFloat64() - 0.5) * 0.5
	return m.currentPrice, nil
}

// GetAssetName returns a stable fake display name.
func (m *MockDataProvider) GetAssetName(_ context.Context, symbol string) (string, error) {
	return strings.ToUpper(symbol) + " Test Company Inc.", nil
}

// GetOptionChain builds both sides of a chain across weekly expirations.
// Strikes step $5 around the current price and deltas decay exponentially
// with distance, so the delta-band and strike-distance selection paths both
// get realistic inputs.
func (m *MockDataProvider) GetOptionChain(_ context.Context, symbol string) ([]marketdata.OptionContract, error) {
	symbol = strings.ToUpper(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var contracts []marketdata.OptionContract
	for week := 1; week <= 8; week++ {
		expiration := m.now().AddDate(0, 0, 7*week)
		contracts = append(contracts, m.chainForExpiration(symbol, expiration)...)
	}
	return contracts, nil
}

func (m *MockDataProvider) chainForExpiration(symbol string, expiration time.Time) []marketdata.OptionContract {
	strikeInterval := 5.0
	startStrike := math.Floor(m.currentPrice/strikeInterval)*strikeInterval - 25
	endStrike := startStrike + 50

	dte := math.Max(1, expiration.Sub(m.now()).Hours()/24)
	timeValue := 0.4 * math.Sqrt(dte/30)

	var contracts []marketdata.OptionContract
	for strike := startStrike; strike <= endStrike; strike += strikeInterval {
		distance := math.Abs(strike - m.currentPrice)
		decay := math.Exp(-distance * 0.05)

		callDelta := 0.5 * decay
		if strike < m.currentPrice {
			callDelta = 0.5 + 0.5*(1-decay)
		}
		putDelta := callDelta - 1

		callIntrinsic := math.Max(0, m.currentPrice-strike)
		putIntrinsic := math.Max(0, strike-m.currentPrice)
		callMid := callIntrinsic + timeValue*decay*m.currentPrice*0.02 + 0.05
		putMid := putIntrinsic + timeValue*decay*m.currentPrice*0.02 + 0.05

		contracts = append(contracts,
			m.contract(symbol, expiration, "C", strike, callMid, callDelta),
			m.contract(symbol, expiration, "P", strike, putMid, putDelta),
		)
	}
	return contracts
}

func (m *MockDataProvider) contract(symbol string, expiration time.Time, right string, strike, mid, delta float64) marketdata.OptionContract {
	spread := math.Max(0.02, mid*0.04)
	bid := math.Max(0.01, mid-spread/2)
	ask := mid + spread/2
	theta := -mid * 0.01
	gamma := 0.02
	vega := mid * 0.1
	iv := 0.35

	occSymbol := fmt.Sprintf("%s%s%s%08d", symbol, expiration.Format("060102"), right, int(math.Round(strike*1000)))
	return marketdata.OptionContract{
		Symbol:            occSymbol,
		StrikePrice:       strike,
		Bid:               &bid,
		Ask:               &ask,
		Delta:             &delta,
		Theta:             &theta,
		Gamma:             &gamma,
		Vega:              &vega,
		ImpliedVolatility: &iv,
	}
}

// MockVision serves a canned brokerage-screenshot extraction.
type MockVision struct{}

// NewMockVision creates the canned OCR backend.
func NewMockVision() *MockVision {
	return &MockVision{}
}

// Ensure MockVision implements the client interface.
var _ vision.Client = (*MockVision)(nil)

// ExtractText ignores the image and returns a fixed positions-list capture
// with one equity row and one inline option line.
func (m *MockVision) ExtractText(_ context.Context, _ []byte, _ string) (*vision.Result, error) {
	paragraph := func(conf float64, words ...string) vision.Paragraph {
		p := vision.Paragraph{Text: strings.Join(words, " "), Confidence: conf}
		for _, w := range words {
			p.Words = append(p.Words, vision.Word{Text: w, Confidence: conf})
		}
		return p
	}

	return &vision.Result{
		Text: "SYMBOL SHARES PRICE VALUE\nAAPL 12 $182.50 $2,190.00\nHOOD 5 $21.30 $106.50\n2 CIFR $14 Put 1/16/2026\n",
		Paragraphs: []vision.Paragraph{
			paragraph(0.98, "SYMBOL", "SHARES", "PRICE", "VALUE"),
			paragraph(0.96, "AAPL", "12", "$182.50", "$2,190.00"),
			paragraph(0.94, "HOOD", "5", "$21.30", "$106.50"),
		},
	}, nil
}

// Package marketdata provides the market data client used to fetch
// underlying prices and option chain snapshots. The upstream feed is an
// opaque collaborator: premiums and greeks are taken as given, never
// computed here.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/occ"
)

// APIError represents a feed error with status code and response body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error %d: %s", e.Status, e.Body)
}

// Client defines the market data operations the suggestion pipeline needs.
//
// Implementations must be safe for concurrent use; the API layer fetches
// price and chain in parallel.
type Client interface {
	GetStockPrice(ctx context.Context, symbol string) (float64, error)
	GetOptionChain(ctx context.Context, symbol string) ([]OptionContract, error)
	GetAssetName(ctx context.Context, symbol string) (string, error)
}

// AlpacaAPI is an HTTP client for an Alpaca-shaped market data API.
type AlpacaAPI struct {
	client    *http.Client
	keyID     string
	secretKey string
	baseURL   string
	timeout   time.Duration
}

const defaultBaseURL = "https://data.alpaca.markets"

// NewAlpacaAPI creates a market data client with default settings.
func NewAlpacaAPI(keyID, secretKey, baseURL string) *AlpacaAPI {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	const defaultTimeout = 10 * time.Second
	return &AlpacaAPI{
		client:    &http.Client{Timeout: defaultTimeout},
		keyID:     keyID,
		secretKey: secretKey,
		baseURL:   baseURL,
		timeout:   defaultTimeout,
	}
}

// WithHTTPClient allows overriding the HTTP client (tests, custom transport).
func (a *AlpacaAPI) WithHTTPClient(c *http.Client) *AlpacaAPI {
	if c != nil {
		a.client = c
	}
	return a
}

// WithTimeout sets the HTTP client timeout duration.
func (a *AlpacaAPI) WithTimeout(timeout time.Duration) *AlpacaAPI {
	a.timeout = timeout
	if a.client != nil {
		a.client.Timeout = timeout
	}
	return a
}

// Ensure AlpacaAPI implements Client at compile time.
var _ Client = (*AlpacaAPI)(nil)

func (a *AlpacaAPI) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", a.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", a.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// GetStockPrice returns the latest trade price for the underlying.
func (a *AlpacaAPI) GetStockPrice(ctx context.Context, symbol string) (float64, error) {
	var out latestTradeResponse
	if err := a.get(ctx, "/v2/stocks/"+url.PathEscape(symbol)+"/trades/latest", nil, &out); err != nil {
		return 0, err
	}
	return out.Trade.Price, nil
}

// GetOptionChain returns the full chain snapshot for an underlying,
// following pagination until the feed is exhausted. Snapshots whose symbol
// does not decode under OCC convention are dropped rather than surfaced as
// partially valid contracts.
func (a *AlpacaAPI) GetOptionChain(ctx context.Context, symbol string) ([]OptionContract, error) {
	var contracts []OptionContract
	pageToken := ""

	for {
		query := url.Values{"limit": {"1000"}}
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var out snapshotResponse
		if err := a.get(ctx, "/v1beta1/options/snapshots/"+url.PathEscape(symbol), query, &out); err != nil {
			return nil, err
		}

		for sym, snap := range out.Snapshots {
			decoded, err := occ.ParseSymbol(sym)
			if err != nil {
				continue
			}
			c := OptionContract{Symbol: sym, StrikePrice: decoded.Strike}
			if snap.LatestQuote != nil {
				bid, ask := snap.LatestQuote.BidPrice, snap.LatestQuote.AskPrice
				if bid > 0 {
					c.Bid = &bid
				}
				if ask > 0 {
					c.Ask = &ask
				}
			}
			if snap.Greeks != nil {
				delta, theta := snap.Greeks.Delta, snap.Greeks.Theta
				gamma, vega := snap.Greeks.Gamma, snap.Greeks.Vega
				c.Delta, c.Theta, c.Gamma, c.Vega = &delta, &theta, &gamma, &vega
			}
			if snap.ImpliedVolatility != nil {
				iv := *snap.ImpliedVolatility
				c.ImpliedVolatility = &iv
			}
			contracts = append(contracts, c)
		}

		if out.NextPageToken == nil || *out.NextPageToken == "" {
			break
		}
		pageToken = *out.NextPageToken
	}

	return contracts, nil
}

// GetAssetName returns the feed's display name for a symbol.
func (a *AlpacaAPI) GetAssetName(ctx context.Context, symbol string) (string, error) {
	var out assetResponse
	if err := a.get(ctx, "/v2/assets/"+url.PathEscape(symbol), nil, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

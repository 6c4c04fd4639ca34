package marketdata

// OptionContract is one leg of an option chain as supplied by the data
// feed. Quote and greek fields are pointers because the feed omits them
// intermittently; selection code must degrade gracefully when they are nil.
// Strike and expiration are also encoded in Symbol per OCC convention and
// are decoded on demand by the occ package.
type OptionContract struct {
	Symbol            string   `json:"symbol"`
	StrikePrice       float64  `json:"strike_price"`
	Bid               *float64 `json:"bid,omitempty"`
	Ask               *float64 `json:"ask,omitempty"`
	Delta             *float64 `json:"delta,omitempty"`
	Theta             *float64 `json:"theta,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	Vega              *float64 `json:"vega,omitempty"`
	ImpliedVolatility *float64 `json:"implied_volatility,omitempty"`
}

// snapshotResponse mirrors the feed's option chain snapshot payload.
type snapshotResponse struct {
	Snapshots     map[string]snapshot `json:"snapshots"`
	NextPageToken *string             `json:"next_page_token"`
}

type snapshot struct {
	LatestQuote *struct {
		BidPrice float64 `json:"bp"`
		AskPrice float64 `json:"ap"`
	} `json:"latestQuote"`
	Greeks *struct {
		Delta float64 `json:"delta"`
		Theta float64 `json:"theta"`
		Gamma float64 `json:"gamma"`
		Vega  float64 `json:"vega"`
	} `json:"greeks"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
}

type latestTradeResponse struct {
	Trade struct {
		Price float64 `json:"p"`
	} `json:"trade"`
}

type assetResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

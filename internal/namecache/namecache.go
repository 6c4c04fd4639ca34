// Package namecache memoizes asset display-name lookups. Names change
// rarely but get requested on every draft review, so a TTL cache in
// front of the market data client removes nearly all of that traffic.
package namecache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/marketdata"
)

// DefaultTTL is how long a resolved name stays fresh.
const DefaultTTL = 24 * time.Hour

type entry struct {
	name      string
	fetchedAt time.Time
}

// Cache wraps a market data client's asset-name lookup with a TTL map.
// The clock is injected so expiry is testable without sleeping.
type Cache struct {
	client marketdata.Client
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a name cache in front of the given client.
func New(client marketdata.Client, opts ...Option) *Cache {
	c := &Cache{
		client:  client,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name resolves the display name for a ticker, serving from the cache
// while the entry is fresh. Lookup failures are returned, not cached, so
// a transient upstream error does not poison the ticker.
func (c *Cache) Name(ctx context.Context, ticker string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.name, nil
	}

	name, err := c.client.GetAssetName(ctx, key)
	if err != nil {
		// Serve a stale entry over an error if we have one.
		if ok {
			return e.name, nil
		}
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = entry{name: name, fetchedAt: c.now()}
	c.mu.Unlock()
	return name, nil
}

// Len reports the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

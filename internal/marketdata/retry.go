package marketdata

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"
)

// RetryConfig controls the bounded retry loop around feed calls.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig is tuned for a request-scoped fetch: a few quick
// attempts, never long enough to stall an interactive caller.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     2,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// RetryClient wraps a Client and retries transient failures with jittered
// exponential backoff. Permanent API errors (4xx other than 429) are
// returned immediately.
type RetryClient struct {
	client Client
	config RetryConfig
}

// NewRetryClient creates a retrying wrapper around the given client.
func NewRetryClient(client Client, config ...RetryConfig) *RetryClient {
	cfg := DefaultRetryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	return &RetryClient{client: client, config: cfg}
}

// Ensure RetryClient implements Client at compile time.
var _ Client = (*RetryClient)(nil)

func retryCall[T any](ctx context.Context, c *RetryClient, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	backoff := c.config.InitialBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, fmt.Errorf("operation canceled: %w", ctx.Err())
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !isTransientError(err) || attempt == c.config.MaxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff = c.nextBackoff(backoff)
		case <-ctx.Done():
			return zero, fmt.Errorf("operation canceled during backoff: %w", ctx.Err())
		}
	}

	return zero, fmt.Errorf("market data call failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *RetryClient) nextBackoff(currentBackoff time.Duration) time.Duration {
	backoff := time.Duration(float64(currentBackoff) * 1.5)
	if backoff > c.config.MaxBackoff {
		backoff = c.config.MaxBackoff
	}

	maxJitter := int64(backoff / 4)
	if maxJitter > 0 {
		jitterVal, err := rand.Int(rand.Reader, big.NewInt(maxJitter))
		if err != nil {
			log.Printf("Failed to generate jitter: %v", err)
		} else {
			backoff += time.Duration(jitterVal.Int64())
		}
	}

	return backoff
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// 429 and 5xx are retryable, other 4xx are permanent
		return apiErr.Status == 429 || apiErr.Status >= 500
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"rate limit",
		"network",
		"dns",
		"tcp",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// GetStockPrice retries the underlying call on transient failures.
func (c *RetryClient) GetStockPrice(ctx context.Context, symbol string) (float64, error) {
	return retryCall(ctx, c, func() (float64, error) { return c.client.GetStockPrice(ctx, symbol) })
}

// GetOptionChain retries the underlying call on transient failures.
func (c *RetryClient) GetOptionChain(ctx context.Context, symbol string) ([]OptionContract, error) {
	return retryCall(ctx, c, func() ([]OptionContract, error) { return c.client.GetOptionChain(ctx, symbol) })
}

// GetAssetName retries the underlying call on transient failures.
func (c *RetryClient) GetAssetName(ctx context.Context, symbol string) (string, error) {
	return retryCall(ctx, c, func() (string, error) { return c.client.GetAssetName(ctx, symbol) })
}

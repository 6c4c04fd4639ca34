// Package config provides configuration management for the suggestion server.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Defaults applied when optional fields are unset
const (
	// defaultListenAddr is used when server.listen is unset
	defaultListenAddr = ":8080"
	// defaultNameCacheTTL is used when cache.name_ttl is unset
	defaultNameCacheTTL = "24h"
	// defaultDaysAhead is the expiration search target when suggest.days_ahead is unset
	defaultDaysAhead = 35
	// defaultSuggestionCount is used when suggest.count is unset
	defaultSuggestionCount = 5
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	MarketData  MarketDataConfig  `yaml:"marketdata"`
	Vision      VisionConfig      `yaml:"vision"`
	Server      ServerConfig      `yaml:"server"`
	Suggest     SuggestConfig     `yaml:"suggest"`
	Storage     StorageConfig     `yaml:"storage"`
	Cache       CacheConfig       `yaml:"cache"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	Mode     string `yaml:"mode"`      // live | mock
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// MarketDataConfig defines the quote and option-chain provider settings.
type MarketDataConfig struct {
	KeyID     string `yaml:"key_id"`
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
	// Timeout is a duration string for per-request HTTP timeouts.
	Timeout string `yaml:"timeout"`
	// UseRetry wraps the client with jittered-backoff retries.
	UseRetry bool `yaml:"use_retry"`
	// UseBreaker wraps the client with a circuit breaker.
	UseBreaker bool `yaml:"use_breaker"`
}

// VisionConfig defines the OCR collaborator settings.
type VisionConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Listen string `yaml:"listen"` // host:port
}

// SuggestConfig defines default suggestion parameters, overridable per request.
type SuggestConfig struct {
	// ExpirationMode is weekly, monthly, yearly, or custom.
	ExpirationMode string `yaml:"expiration_mode"`
	// ExpirationCount multiplies the mode's period (e.g. 5 weeklies).
	ExpirationCount int `yaml:"expiration_count"`
	// DaysAhead is the custom-mode target and the fallback horizon.
	DaysAhead int `yaml:"days_ahead"`
	// Count is how many contracts a suggestion set holds.
	Count int `yaml:"count"`
}

// StorageConfig defines storage settings for holdings and draft sessions.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig defines cache lifetimes.
type CacheConfig struct {
	// NameTTL is how long asset display names stay fresh.
	NameTTL string `yaml:"name_ttl"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListenAddr
	}
	if c.Cache.NameTTL == "" {
		c.Cache.NameTTL = defaultNameCacheTTL
	}
	if c.Suggest.ExpirationMode == "" {
		c.Suggest.ExpirationMode = "weekly"
	}
	if c.Suggest.DaysAhead == 0 {
		c.Suggest.DaysAhead = defaultDaysAhead
	}
	if c.Suggest.Count == 0 {
		c.Suggest.Count = defaultSuggestionCount
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/holdings.json"
	}
}

// Validate checks that all configuration values are valid and consistent.
func (c *Config) Validate() error {
	// Environment validation
	if c.Environment.Mode != "live" && c.Environment.Mode != "mock" {
		return fmt.Errorf("environment.mode must be 'live' or 'mock'")
	}
	switch c.Environment.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be debug, info, warn, or error")
	}

	// Live mode needs real credentials; mock mode runs entirely offline.
	if c.Environment.Mode == "live" {
		if c.MarketData.KeyID == "" || c.MarketData.SecretKey == "" {
			return fmt.Errorf("marketdata.key_id and marketdata.secret_key are required in live mode")
		}
		if c.Vision.BaseURL == "" {
			return fmt.Errorf("vision.base_url is required in live mode")
		}
	}

	if c.MarketData.Timeout != "" {
		if _, err := time.ParseDuration(c.MarketData.Timeout); err != nil {
			return fmt.Errorf("marketdata.timeout invalid: %w", err)
		}
	}
	if c.Vision.Timeout != "" {
		if _, err := time.ParseDuration(c.Vision.Timeout); err != nil {
			return fmt.Errorf("vision.timeout invalid: %w", err)
		}
	}
	if _, err := time.ParseDuration(c.Cache.NameTTL); err != nil {
		return fmt.Errorf("cache.name_ttl invalid: %w", err)
	}

	switch c.Suggest.ExpirationMode {
	case "weekly", "monthly", "yearly", "custom":
	default:
		return fmt.Errorf("suggest.expiration_mode must be weekly, monthly, yearly, or custom")
	}
	if c.Suggest.ExpirationCount < 0 {
		return fmt.Errorf("suggest.expiration_count must be >= 0")
	}
	if c.Suggest.DaysAhead <= 0 {
		return fmt.Errorf("suggest.days_ahead must be > 0")
	}
	if c.Suggest.Count <= 0 {
		return fmt.Errorf("suggest.count must be > 0")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	return nil
}

// IsMockMode returns true if the server runs against synthetic data.
func (c *Config) IsMockMode() bool {
	return c.Environment.Mode == "mock"
}

// MarketDataTimeout returns the configured per-request timeout duration.
func (c *Config) MarketDataTimeout() time.Duration {
	d, err := time.ParseDuration(c.MarketData.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second // default
	}
	return d
}

// VisionTimeout returns the configured OCR request timeout duration.
func (c *Config) VisionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Vision.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second // default
	}
	return d
}

// NameCacheTTL returns the configured name cache lifetime.
func (c *Config) NameCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.NameTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour // default
	}
	return d
}

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/chain_scout/internal/api"
	"github.com/eddiefleurent/chain_scout/internal/chain"
	"github.com/eddiefleurent/chain_scout/internal/config"
	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/mock"
	"github.com/eddiefleurent/chain_scout/internal/namecache"
	"github.com/eddiefleurent/chain_scout/internal/portfolio"
	"github.com/eddiefleurent/chain_scout/internal/storage"
	"github.com/eddiefleurent/chain_scout/internal/vision"
)

func main() {
	var configPath string
	var authToken string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&authToken, "auth-token", os.Getenv("CHAIN_SCOUT_TOKEN"), "Shared API auth token (empty disables auth)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Environment.LogLevel)
	logger.Infof("Starting chain scout server in %s mode", cfg.Environment.Mode)

	// Wire collaborators per mode
	market, visionClient := buildClients(cfg)

	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}

	names := namecache.New(market, namecache.WithTTL(cfg.NameCacheTTL()))
	scanner := portfolio.NewScanner(visionClient, logger)

	server := api.NewServer(api.Config{
		Listen:    cfg.Server.Listen,
		AuthToken: authToken,
		DefaultSelection: chain.Normalize(chain.Selection{
			Mode:      chain.Mode(cfg.Suggest.ExpirationMode),
			Count:     cfg.Suggest.ExpirationCount,
			DaysAhead: cfg.Suggest.DaysAhead,
		}, chain.DefaultSelection),
		FallbackDaysAhead: cfg.Suggest.DaysAhead,
		DefaultCount:      cfg.Suggest.Count,
	}, store, market, scanner, names, logger)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case sig := <-sigChan:
		logger.Infof("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Shutdown error")
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("Server error: %v", err)
		}
	}

	logger.Info("Server stopped")
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func buildClients(cfg *config.Config) (marketdata.Client, vision.Client) {
	if cfg.IsMockMode() {
		return mock.NewMockDataProvider(), mock.NewMockVision()
	}

	var market marketdata.Client = marketdata.NewAlpacaAPI(
		cfg.MarketData.KeyID,
		cfg.MarketData.SecretKey,
		cfg.MarketData.BaseURL,
	).WithTimeout(cfg.MarketDataTimeout())

	if cfg.MarketData.UseRetry {
		market = marketdata.NewRetryClient(market)
	}
	if cfg.MarketData.UseBreaker {
		market = marketdata.NewCircuitBreakerClient(market)
	}

	visionClient := vision.NewHTTPClient(cfg.Vision.BaseURL, cfg.Vision.APIKey).
		WithHTTPClient(&http.Client{Timeout: cfg.VisionTimeout()})
	return market, visionClient
}

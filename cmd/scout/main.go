package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eddiefleurent/chain_scout/internal/chain"
	"github.com/eddiefleurent/chain_scout/internal/config"
	"github.com/eddiefleurent/chain_scout/internal/marketdata"
	"github.com/eddiefleurent/chain_scout/internal/mock"
	"github.com/eddiefleurent/chain_scout/internal/models"
	"github.com/eddiefleurent/chain_scout/internal/suggest"
)

func main() {
	var (
		configPath string
		count      int
		moneyness  string
		mode       string
		modeCount  int
		daysAhead  int
		factor     float64
	)

	rootCmd := &cobra.Command{
		Use:   "scout <strategy> <symbol>",
		Short: "Print option strategy suggestions for a symbol",
		Long: "Fetches the option chain, resolves the nearest expiration for the\n" +
			"requested horizon, selects contracts by moneyness, and renders the\n" +
			"strategy rows as a table.\n\n" +
			"Strategies: covered-call, long-call, long-put, cash-secured-put",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a strategy and a symbol")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.SetEnvPrefix("chain_scout")
			viper.AutomaticEnv()
			if !cmd.Flags().Changed("config") {
				if env := viper.GetString("config"); env != "" {
					configPath = env
				}
			}

			strategy := args[0]
			symbol := strings.ToUpper(args[1])

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			market := buildMarketClient(cfg)

			var m models.Moneyness
			if moneyness != "" {
				if m, err = models.ParseMoneyness(moneyness); err != nil {
					return err
				}
			} else if strategy == "long-call" || strategy == "long-put" {
				m = models.MoneynessATM
			} else {
				m = models.MoneynessOTM
			}

			if count <= 0 {
				count = cfg.Suggest.Count
			}
			sel := chain.Normalize(chain.Selection{
				Mode:      chain.Mode(mode),
				Count:     modeCount,
				DaysAhead: daysAhead,
			}, chain.Selection{
				Mode:      chain.Mode(cfg.Suggest.ExpirationMode),
				Count:     cfg.Suggest.ExpirationCount,
				DaysAhead: cfg.Suggest.DaysAhead,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return run(ctx, market, strategy, symbol, m, sel, cfg.Suggest.DaysAhead, count, factor)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")
	rootCmd.Flags().IntVar(&count, "count", 0, "number of contracts to suggest (default from config)")
	rootCmd.Flags().StringVar(&moneyness, "moneyness", "", "ITM, ATM, or OTM (default per strategy)")
	rootCmd.Flags().StringVar(&mode, "mode", "", "expiration mode: weekly, monthly, yearly, custom")
	rootCmd.Flags().IntVar(&modeCount, "n", 0, "horizon multiplier for the expiration mode")
	rootCmd.Flags().IntVar(&daysAhead, "days", 0, "days ahead for custom expiration mode")
	rootCmd.Flags().Float64Var(&factor, "factor", 0, "covered-call OTM strike factor (e.g. 1.05)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildMarketClient(cfg *config.Config) marketdata.Client {
	if cfg.IsMockMode() {
		return mock.NewMockDataProvider()
	}
	var client marketdata.Client = marketdata.NewAlpacaAPI(
		cfg.MarketData.KeyID,
		cfg.MarketData.SecretKey,
		cfg.MarketData.BaseURL,
	).WithTimeout(cfg.MarketDataTimeout())
	if cfg.MarketData.UseRetry {
		client = marketdata.NewRetryClient(client)
	}
	return client
}

func run(ctx context.Context, market marketdata.Client, strategy, symbol string, m models.Moneyness, sel chain.Selection, fallbackDays, count int, factor float64) error {
	price, err := market.GetStockPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetching price: %w", err)
	}
	contracts, err := market.GetOptionChain(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetching chain: %w", err)
	}

	now := time.Now()
	expiration, ok := chain.PickExpirationDate(contracts, symbol, sel, fallbackDays, now)
	if !ok {
		return fmt.Errorf("no usable expiration in %s chain", symbol)
	}

	right := models.RightCall
	if strategy == "long-put" || strategy == "cash-secured-put" {
		right = models.RightPut
	}
	side := chain.FilterByRight(chain.FilterByExpiration(contracts, symbol, expiration), right)
	selected := suggest.SelectByMoneyness(side, price, right, m, count)

	fmt.Printf("%s @ %.2f, expiration %s (%s %s)\n\n", symbol, price, expiration.Format("2006-01-02"), strategy, m)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)

	switch strategy {
	case "covered-call":
		if factor > 0 {
			row, ok := suggest.BuildCoveredCallFromFactor(side, price, factor, expiration, now)
			if !ok {
				return fmt.Errorf("no call contracts at expiration")
			}
			renderCoveredCalls(tw, []suggest.CoveredCall{row})
		} else {
			renderCoveredCalls(tw, suggest.BuildCoveredCalls(selected, price, expiration, now))
		}
	case "long-call":
		renderLongRows(tw, longRowsFromCalls(suggest.BuildLongCalls(selected, price, expiration, now)))
	case "long-put":
		renderLongRows(tw, longRowsFromPuts(suggest.BuildLongPuts(selected, price, expiration, now)))
	case "cash-secured-put":
		renderCashSecuredPuts(tw, suggest.BuildCashSecuredPuts(selected, expiration, now))
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}

	tw.Render()
	return nil
}

func fmtDelta(d *float64) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *d)
}

func renderCoveredCalls(tw table.Writer, rows []suggest.CoveredCall) {
	tw.AppendHeader(table.Row{"STRIKE", "PREMIUM", "DELTA", "DTE", "YIELD/MO %", "YIELD/YR %", "OTM %"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			fmt.Sprintf("%.2f", r.Strike),
			fmt.Sprintf("%.2f", r.Premium),
			fmtDelta(r.Delta),
			r.DTE,
			fmt.Sprintf("%.2f", r.YieldMonthly),
			fmt.Sprintf("%.2f", r.YieldAnnualized),
			fmt.Sprintf("%.1f", r.OTMPercent),
		})
	}
}

// longRow is the shared display shape for long calls and long puts.
type longRow struct {
	strike    float64
	premium   float64
	delta     *float64
	dte       int
	intrinsic float64
	extrinsic float64
	breakeven float64
}

func longRowsFromCalls(rows []suggest.LongCall) []longRow {
	out := make([]longRow, len(rows))
	for i, r := range rows {
		out[i] = longRow{r.Strike, r.Premium, r.Delta, r.DTE, r.Intrinsic, r.Extrinsic, r.Breakeven}
	}
	return out
}

func longRowsFromPuts(rows []suggest.LongPut) []longRow {
	out := make([]longRow, len(rows))
	for i, r := range rows {
		out[i] = longRow{r.Strike, r.Premium, r.Delta, r.DTE, r.Intrinsic, r.Extrinsic, r.Breakeven}
	}
	return out
}

func renderLongRows(tw table.Writer, rows []longRow) {
	tw.AppendHeader(table.Row{"STRIKE", "PREMIUM", "DELTA", "DTE", "INTRINSIC", "EXTRINSIC", "BREAKEVEN"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			fmt.Sprintf("%.2f", r.strike),
			fmt.Sprintf("%.2f", r.premium),
			fmtDelta(r.delta),
			r.dte,
			fmt.Sprintf("%.2f", r.intrinsic),
			fmt.Sprintf("%.2f", r.extrinsic),
			fmt.Sprintf("%.2f", r.breakeven),
		})
	}
}

func renderCashSecuredPuts(tw table.Writer, rows []suggest.CashSecuredPut) {
	tw.AppendHeader(table.Row{"STRIKE", "PREMIUM", "DELTA", "DTE", "RETURN %", "ANNUAL %", "CASH REQ", "ASSIGN %"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			fmt.Sprintf("%.2f", r.Strike),
			fmt.Sprintf("%.2f", r.Premium),
			fmtDelta(r.Delta),
			r.DTE,
			fmt.Sprintf("%.2f", r.ReturnPct),
			fmt.Sprintf("%.2f", r.AnnualizedPct),
			fmt.Sprintf("%.2f", r.CashRequired),
			r.AssignProb,
		})
	}
}

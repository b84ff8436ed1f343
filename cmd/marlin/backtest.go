package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/logger"
	"github.com/spf13/cobra"
)

var (
	backtestSymbols     []string
	backtestFrom        string
	backtestTo          string
	backtestConcurrency int
	backtestTrades      bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a backtest on a strategy",
	Long:  "Run a strategy against historical data and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringSliceVar(&backtestSymbols, "symbols", nil, "Symbols to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().IntVar(&backtestConcurrency, "concurrency", 4, "Parallel runs for multi-symbol batches")
	backtestCmd.Flags().BoolVar(&backtestTrades, "trades", false, "Print the trade log")

	backtestCmd.MarkFlagRequired("symbols")
	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	strategyName := args[0]

	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}

	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	registry := newRegistry(log)
	provider := newProvider(cfg)
	runner := backtest.NewRunner(provider, registry, log)

	runCfg := cfg.Backtest
	runCfg.Start = fromDate
	runCfg.End = toDate

	reqs := make([]backtest.Request, 0, len(backtestSymbols))
	for _, symbol := range backtestSymbols {
		reqs = append(reqs, backtest.Request{
			Symbol:   strings.TrimSpace(symbol),
			Strategy: strategyName,
			Config:   runCfg,
		})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	results, err := runner.RunBatch(ctx, reqs, backtestConcurrency)
	if err != nil {
		return err
	}

	for _, result := range results {
		printResult(result)
	}
	return nil
}

func printResult(r *backtest.Result) {
	m := r.Metrics

	fmt.Printf("=== %s / %s ===\n", r.Symbol, r.Strategy)
	fmt.Printf("Period:        %s to %s (%d bars)\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.Bars)
	fmt.Printf("Final equity:  %.2f\n", m.FinalEquity)
	fmt.Printf("Total return:  %.2f%% (annualized %.2f%%)\n", m.TotalReturnPct, m.AnnualizedReturnPct)
	fmt.Printf("Max drawdown:  %.2f%%\n", m.MaxDrawdownPct)
	fmt.Printf("Sharpe:        %.2f   Sortino: %.2f\n", m.SharpeRatio, m.SortinoRatio)
	fmt.Printf("Trades:        %d (%d won, %d lost, win rate %.1f%%)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate)
	if m.TotalTrades > 0 {
		fmt.Printf("Profit factor: %.2f   Avg trade PnL: %.2f\n", m.ProfitFactor, m.AvgTradePnL)
	}

	if backtestTrades && len(r.Trades) > 0 {
		fmt.Println()
		fmt.Println("  entry        exit         side   qty      entry px   exit px    pnl        reason")
		for _, tr := range r.Trades {
			fmt.Printf("  %s   %s   %-5s  %-7d  %-9.2f  %-9.2f  %-9.2f  %s\n",
				tr.EntryTime.Format("2006-01-02"), tr.ExitTime.Format("2006-01-02"),
				tr.Side, tr.Quantity, tr.EntryPrice, tr.ExitPrice, tr.PnL, tr.ExitReason)
		}
	}
	fmt.Println()
}

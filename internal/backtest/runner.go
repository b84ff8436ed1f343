package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/strategy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HistoryProvider defines the interface for fetching historical bar data.
// The engine does no I/O itself: all history is loaded once, up front,
// before the simulation loop starts.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error)
}

// Request describes one backtest run. Config and Params are partial
// overrides resolved against the engine and strategy defaults.
type Request struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Strategy string          `json:"strategy"`
	Interval core.Interval   `json:"interval,omitempty"`
	Config   Config          `json:"config"`
	Params   strategy.Params `json:"params"`
}

// Runner resolves requests against the strategy registry and history
// provider and executes backtest runs. Runs share no mutable state, so
// independent requests may execute fully in parallel.
type Runner struct {
	provider   HistoryProvider
	strategies *strategy.Registry
	logger     *zap.Logger
}

// NewRunner creates a new Runner.
func NewRunner(provider HistoryProvider, strategies *strategy.Registry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		provider:   provider,
		strategies: strategies,
		logger:     logger,
	}
}

// Run executes a single backtest. All configuration and data preconditions
// are checked before the simulation loop; the engine never partially runs
// on invalid input.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Symbol == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("symbol is required"))
	}

	strat, err := r.strategies.Get(req.Strategy)
	if err != nil {
		return nil, err
	}

	cfg := Merge(DefaultConfig(), req.Config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params := strategy.Merge(strat.DefaultParams(), req.Params)
	if err := strategy.Validate(params); err != nil {
		return nil, err
	}

	interval := req.Interval
	if interval == "" {
		interval = core.IntervalDay
	}

	bars, err := r.provider.FetchHistory(ctx, req.Symbol, cfg.Start, cfg.End, interval)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no bars for %s in requested range", req.Symbol))
	}
	if err := core.ValidateHistory(bars); err != nil {
		return nil, err
	}

	warmup := strat.WarmupBars(params)
	if len(bars) <= warmup+1 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s needs more than %d bars to warm up %s, got %d",
				req.Symbol, warmup+1, strat.Name(), len(bars)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	ledger := NewLedger(cfg, req.Symbol, bars)
	trades, curve := ledger.Run(strat, params)

	result := &Result{
		RunID:          uuid.NewString(),
		Name:           req.Name,
		Symbol:         req.Symbol,
		Strategy:       strat.Name(),
		StartDate:      bars[0].Time,
		EndDate:        bars[len(bars)-1].Time,
		Bars:           len(bars),
		Config:         cfg,
		Params:         params,
		Metrics:        CalculateMetrics(curve, trades, cfg),
		EquityCurve:    curve,
		Trades:         trades,
		MonthlyReturns: MonthlyReturns(curve, cfg.InitialCapital),
	}

	r.logger.Info("backtest complete",
		zap.String("run_id", result.RunID),
		zap.String("symbol", req.Symbol),
		zap.String("strategy", strat.Name()),
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(trades)),
		zap.Float64("total_return_pct", result.Metrics.TotalReturnPct),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// RunBatch executes independent requests in parallel. Each run owns its own
// ledger; the first error cancels the remaining runs.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request, concurrency int) ([]*Result, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := r.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", req.Symbol, req.Strategy, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

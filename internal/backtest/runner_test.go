package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/strategy"
)

// mockProvider serves a canned history, or a canned error, for any symbol.
type mockProvider struct {
	bars []core.Bar
	err  error
}

func (m *mockProvider) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bars, nil
}

func testRunner(bars []core.Bar) *Runner {
	reg := strategy.NewRegistry()
	reg.Register(&scriptStrategy{signals: map[int]core.Signal{
		3: core.SignalEnterLong,
		6: core.SignalExit,
	}})
	return NewRunner(&mockProvider{bars: bars}, reg, nil)
}

func TestRunner_Run(t *testing.T) {
	bars := mkBars(flatCloses(30, 100), 0.5)
	r := testRunner(bars)

	res, err := r.Run(context.Background(), Request{
		Symbol:   "AAPL",
		Strategy: "script",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if res.Symbol != "AAPL" || res.Strategy != "script" {
		t.Errorf("result identity = %s/%s, want AAPL/script", res.Symbol, res.Strategy)
	}
	if res.Bars != len(bars) || len(res.EquityCurve) != len(bars) {
		t.Errorf("bars = %d, curve = %d, want %d", res.Bars, len(res.EquityCurve), len(bars))
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	// Resolved config carries the engine defaults the request omitted.
	if res.Config.InitialCapital != DefaultConfig().InitialCapital {
		t.Errorf("resolved InitialCapital = %f, want default", res.Config.InitialCapital)
	}
	if res.Params.ATRPeriod != 2 {
		t.Errorf("resolved ATRPeriod = %d, want strategy default 2", res.Params.ATRPeriod)
	}
	if len(res.MonthlyReturns) == 0 {
		t.Error("expected monthly returns")
	}
}

func TestRunner_MissingSymbol(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))

	_, err := r.Run(context.Background(), Request{Strategy: "script"})
	if !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}

func TestRunner_UnknownStrategy(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))

	_, err := r.Run(context.Background(), Request{Symbol: "AAPL", Strategy: "nope"})
	if !errors.Is(err, core.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRunner_InvalidConfigOverride(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))

	_, err := r.Run(context.Background(), Request{
		Symbol:   "AAPL",
		Strategy: "script",
		Config:   Config{InitialCapital: -500},
	})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("negative capital must be rejected, got %v", err)
	}
}

func TestRunner_InvalidParamsOverride(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))

	_, err := r.Run(context.Background(), Request{
		Symbol:   "AAPL",
		Strategy: "script",
		Params:   strategy.Params{ATRPeriod: -3},
	})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("negative period must be rejected, got %v", err)
	}
}

func TestRunner_NoData(t *testing.T) {
	r := testRunner(nil)

	_, err := r.Run(context.Background(), Request{Symbol: "AAPL", Strategy: "script"})
	if !errors.Is(err, core.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestRunner_InsufficientData(t *testing.T) {
	r := testRunner(mkBars(flatCloses(3, 100), 0.5))

	_, err := r.Run(context.Background(), Request{Symbol: "AAPL", Strategy: "script"})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRunner_ProviderError(t *testing.T) {
	reg := strategy.NewRegistry()
	reg.Register(&scriptStrategy{})
	r := NewRunner(&mockProvider{err: errors.New("boom")}, reg, nil)

	_, err := r.Run(context.Background(), Request{Symbol: "AAPL", Strategy: "script"})
	if !errors.Is(err, core.ErrProviderFailed) {
		t.Errorf("expected ErrProviderFailed, got %v", err)
	}
}

func TestRunner_UnorderedHistoryRejected(t *testing.T) {
	bars := mkBars(flatCloses(30, 100), 0.5)
	bars[10], bars[11] = bars[11], bars[10]
	r := testRunner(bars)

	_, err := r.Run(context.Background(), Request{Symbol: "AAPL", Strategy: "script"})
	if !errors.Is(err, core.ErrInvalidBar) {
		t.Errorf("expected ErrInvalidBar, got %v", err)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, Request{Symbol: "AAPL", Strategy: "script"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunner_RunBatch(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))
	reqs := []Request{
		{Symbol: "AAPL", Strategy: "script"},
		{Symbol: "MSFT", Strategy: "script"},
		{Symbol: "GOOG", Strategy: "script"},
	}

	results, err := r.RunBatch(context.Background(), reqs, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res == nil || res.Symbol != reqs[i].Symbol {
			t.Errorf("result %d does not match request order", i)
		}
	}
}

func TestRunner_RunBatchPropagatesError(t *testing.T) {
	r := testRunner(mkBars(flatCloses(30, 100), 0.5))
	reqs := []Request{
		{Symbol: "AAPL", Strategy: "script"},
		{Symbol: "MSFT", Strategy: "nope"},
	}

	_, err := r.RunBatch(context.Background(), reqs, 2)
	if !errors.Is(err, core.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy from the batch, got %v", err)
	}
}

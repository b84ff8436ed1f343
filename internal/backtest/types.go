package backtest

import (
	"time"

	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/strategy"
)

// OpenPosition is a live simulated position. It is owned exclusively by the
// ledger during a run and never escapes it.
type OpenPosition struct {
	Symbol      string
	Side        core.Side
	EntryTime   time.Time
	EntryPrice  float64
	Quantity    int64
	StopPrice   float64
	TargetPrice float64 // zero means no target
	EntryIndex  int
}

// ClosedTrade is an immutable snapshot of a finished position, appended to
// the trade log in close order.
type ClosedTrade struct {
	Symbol      string          `json:"symbol"`
	Side        core.Side       `json:"side"`
	EntryTime   time.Time       `json:"entry_time"`
	EntryPrice  float64         `json:"entry_price"`
	ExitTime    time.Time       `json:"exit_time"`
	ExitPrice   float64         `json:"exit_price"`
	Quantity    int64           `json:"quantity"`
	PnL         float64         `json:"pnl"`
	PnLPct      float64         `json:"pnl_pct"`
	HoldingDays int             `json:"holding_days"`
	ExitReason  core.ExitReason `json:"exit_reason"`
}

// IsWin returns true if the trade was profitable after costs
func (t ClosedTrade) IsWin() bool {
	return t.PnL > 0
}

// EquityPoint is one mark-to-market observation, one per simulated bar.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
	// Drawdown is the running decline from the monotonic equity peak, as a
	// fraction of that peak.
	Drawdown float64 `json:"drawdown"`
}

// Metrics holds the summary statistics of one run. Percentages are
// expressed as percent, not fractions.
type Metrics struct {
	TotalTrades         int     `json:"total_trades"`
	WinningTrades       int     `json:"winning_trades"`
	LosingTrades        int     `json:"losing_trades"`
	WinRate             float64 `json:"win_rate"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	ProfitFactor        float64 `json:"profit_factor"`
	AvgTradePnL         float64 `json:"avg_trade_pnl"`
	FinalEquity         float64 `json:"final_equity"`
}

// Result is the complete output of one run. It is immutable once returned;
// no mutable state survives between runs.
type Result struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name,omitempty"`
	Symbol    string    `json:"symbol"`
	Strategy  string    `json:"strategy"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Bars      int       `json:"bars"`

	// Config and Params are the resolved values actually used, after
	// defaulting and overriding.
	Config Config          `json:"config"`
	Params strategy.Params `json:"params"`

	Metrics        Metrics            `json:"metrics"`
	EquityCurve    []EquityPoint      `json:"equity_curve"`
	Trades         []ClosedTrade      `json:"trades"`
	MonthlyReturns map[string]float64 `json:"monthly_returns"`
}

package backtest

import (
	"fmt"
	"time"

	"github.com/marlinhq/marlin/internal/core"
)

// Config holds the capital and risk constraints for one backtest run. It is
// immutable for the duration of the run.
type Config struct {
	Start          time.Time `json:"start" mapstructure:"start"`
	End            time.Time `json:"end" mapstructure:"end"`
	InitialCapital float64   `json:"initial_capital" mapstructure:"initial_capital"`
	// RiskPct is the fraction of equity risked per trade.
	RiskPct float64 `json:"risk_pct" mapstructure:"risk_pct"`
	// MaxPositionPct caps a single position's allocation as a fraction of equity.
	MaxPositionPct float64 `json:"max_position_pct" mapstructure:"max_position_pct"`
	MaxPositions   int     `json:"max_positions" mapstructure:"max_positions"`
	// Commission is charged per trade side, in account currency.
	Commission  float64 `json:"commission" mapstructure:"commission"`
	SlippageBps float64 `json:"slippage_bps" mapstructure:"slippage_bps"`
	// StopLossPct tightens the ATR stop when it would sit further than this
	// fraction from entry; zero leaves the ATR stop alone.
	StopLossPct float64 `json:"stop_loss_pct" mapstructure:"stop_loss_pct"`
	// TakeProfitPct places the profit target this fraction from entry; zero
	// disables the target.
	TakeProfitPct float64 `json:"take_profit_pct" mapstructure:"take_profit_pct"`
}

// DefaultConfig returns the engine defaults used when a request omits
// config fields.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 100000,
		RiskPct:        0.01,
		MaxPositionPct: 0.20,
		MaxPositions:   3,
		Commission:     1.0,
		SlippageBps:    5,
	}
}

// Merge overlays non-zero override fields onto base config. Zero means
// unset: an override cannot force a non-zero default (Commission,
// SlippageBps) down to zero. Frictionless runs construct the Ledger
// with an explicit Config rather than going through an override.
func Merge(base, override Config) Config {
	out := base
	if !override.Start.IsZero() {
		out.Start = override.Start
	}
	if !override.End.IsZero() {
		out.End = override.End
	}
	if override.InitialCapital != 0 {
		out.InitialCapital = override.InitialCapital
	}
	if override.RiskPct != 0 {
		out.RiskPct = override.RiskPct
	}
	if override.MaxPositionPct != 0 {
		out.MaxPositionPct = override.MaxPositionPct
	}
	if override.MaxPositions != 0 {
		out.MaxPositions = override.MaxPositions
	}
	if override.Commission != 0 {
		out.Commission = override.Commission
	}
	if override.SlippageBps != 0 {
		out.SlippageBps = override.SlippageBps
	}
	if override.StopLossPct != 0 {
		out.StopLossPct = override.StopLossPct
	}
	if override.TakeProfitPct != 0 {
		out.TakeProfitPct = override.TakeProfitPct
	}
	return out
}

// Validate reports the first violated precondition. Any error here is fatal
// before simulation starts.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %.2f", c.InitialCapital))
	}
	if c.RiskPct <= 0 || c.RiskPct > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_pct must be within (0, 1], got %f", c.RiskPct))
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_position_pct must be within (0, 1], got %f", c.MaxPositionPct))
	}
	if c.MaxPositions < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_positions must be at least 1, got %d", c.MaxPositions))
	}
	if c.Commission < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission cannot be negative, got %.2f", c.Commission))
	}
	if c.SlippageBps < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage_bps cannot be negative, got %f", c.SlippageBps))
	}
	if c.StopLossPct < 0 || c.StopLossPct >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stop_loss_pct must be within [0, 1), got %f", c.StopLossPct))
	}
	if c.TakeProfitPct < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("take_profit_pct cannot be negative, got %f", c.TakeProfitPct))
	}
	if !c.Start.IsZero() && !c.End.IsZero() && !c.End.After(c.Start) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("end %s must be after start %s",
				c.End.Format("2006-01-02"), c.Start.Format("2006-01-02")))
	}
	return nil
}

package strategy

import (
	"fmt"

	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/indicator"
)

// Params holds strategy-specific thresholds. Zero values mean "use the
// variant default"; Merge resolves a partial override against defaults and
// Validate runs before a backtest starts.
type Params struct {
	FastPeriod     int     `json:"fast_period" mapstructure:"fast_period"`
	SlowPeriod     int     `json:"slow_period" mapstructure:"slow_period"`
	RSIPeriod      int     `json:"rsi_period" mapstructure:"rsi_period"`
	RSIEntry       float64 `json:"rsi_entry" mapstructure:"rsi_entry"`
	RSIExit        float64 `json:"rsi_exit" mapstructure:"rsi_exit"`
	SignalPeriod   int     `json:"signal_period" mapstructure:"signal_period"`
	ATRPeriod      int     `json:"atr_period" mapstructure:"atr_period"`
	ATRMultiplier  float64 `json:"atr_multiplier" mapstructure:"atr_multiplier"`
	VolumePeriod   int     `json:"volume_period" mapstructure:"volume_period"`
	VolumeMinRatio float64 `json:"volume_min_ratio" mapstructure:"volume_min_ratio"`
	MinHoldingDays int     `json:"min_holding_days" mapstructure:"min_holding_days"`
	MaxHoldingDays int     `json:"max_holding_days" mapstructure:"max_holding_days"`
	Shorts         bool    `json:"shorts" mapstructure:"shorts"`
}

// Strategy defines one backtestable trading strategy variant. Evaluate must
// be a pure function of the indicator state at and before bar i, so a given
// history and params always reproduce identical signals.
type Strategy interface {
	Name() string
	Description() string
	DefaultParams() Params
	// WarmupBars reports how many bars the variant needs before its first
	// signal evaluation.
	WarmupBars(p Params) int
	Evaluate(i int, ind *indicator.Set, p Params) core.Signal
}

// Merge overlays non-zero override fields onto base params. Zero means
// unset: an override cannot disable a non-zero default such as
// rsi_reversion's MaxHoldingDays.
func Merge(base, override Params) Params {
	out := base
	if override.FastPeriod != 0 {
		out.FastPeriod = override.FastPeriod
	}
	if override.SlowPeriod != 0 {
		out.SlowPeriod = override.SlowPeriod
	}
	if override.RSIPeriod != 0 {
		out.RSIPeriod = override.RSIPeriod
	}
	if override.RSIEntry != 0 {
		out.RSIEntry = override.RSIEntry
	}
	if override.RSIExit != 0 {
		out.RSIExit = override.RSIExit
	}
	if override.SignalPeriod != 0 {
		out.SignalPeriod = override.SignalPeriod
	}
	if override.ATRPeriod != 0 {
		out.ATRPeriod = override.ATRPeriod
	}
	if override.ATRMultiplier != 0 {
		out.ATRMultiplier = override.ATRMultiplier
	}
	if override.VolumePeriod != 0 {
		out.VolumePeriod = override.VolumePeriod
	}
	if override.VolumeMinRatio != 0 {
		out.VolumeMinRatio = override.VolumeMinRatio
	}
	if override.MinHoldingDays != 0 {
		out.MinHoldingDays = override.MinHoldingDays
	}
	if override.MaxHoldingDays != 0 {
		out.MaxHoldingDays = override.MaxHoldingDays
	}
	if override.Shorts {
		out.Shorts = true
	}
	return out
}

// Validate checks resolved params for internal consistency.
func Validate(p Params) error {
	if p.FastPeriod < 0 || p.SlowPeriod < 0 || p.RSIPeriod < 0 || p.ATRPeriod < 0 ||
		p.SignalPeriod < 0 || p.VolumePeriod < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("indicator periods cannot be negative"))
	}
	if p.FastPeriod > 0 && p.SlowPeriod > 0 && p.FastPeriod >= p.SlowPeriod {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast_period %d must be less than slow_period %d", p.FastPeriod, p.SlowPeriod))
	}
	if p.RSIEntry < 0 || p.RSIEntry > 100 || p.RSIExit < 0 || p.RSIExit > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rsi levels must be within 0-100, got entry %.1f exit %.1f", p.RSIEntry, p.RSIExit))
	}
	if p.RSIEntry > 0 && p.RSIExit > 0 && p.RSIEntry >= p.RSIExit {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rsi_entry %.1f must be below rsi_exit %.1f", p.RSIEntry, p.RSIExit))
	}
	if p.ATRMultiplier < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("atr_multiplier cannot be negative"))
	}
	if p.MinHoldingDays < 0 || p.MaxHoldingDays < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("holding days cannot be negative"))
	}
	if p.MaxHoldingDays > 0 && p.MinHoldingDays > p.MaxHoldingDays {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_holding_days %d exceeds max_holding_days %d", p.MinHoldingDays, p.MaxHoldingDays))
	}
	return nil
}

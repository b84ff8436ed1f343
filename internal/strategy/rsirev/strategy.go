// Package rsirev implements an RSI mean-reversion strategy: enter long when
// the RSI falls into the oversold zone, exit when it recovers into the
// overbought zone. With shorts enabled the overbought extreme reverses into
// a short instead of going flat.
package rsirev

import (
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/indicator"
	"github.com/marlinhq/marlin/internal/strategy"
)

type RSIReversion struct{}

// New creates a new RSI mean-reversion strategy
func New() *RSIReversion {
	return &RSIReversion{}
}

func (s *RSIReversion) Name() string {
	return "rsi_reversion"
}

func (s *RSIReversion) Description() string {
	return "RSI mean reversion: long when oversold, flat (or short) when overbought"
}

func (s *RSIReversion) DefaultParams() strategy.Params {
	return strategy.Params{
		RSIPeriod:      14,
		RSIEntry:       30,
		RSIExit:        70,
		ATRPeriod:      14,
		ATRMultiplier:  2.0,
		MaxHoldingDays: 10,
	}
}

func (s *RSIReversion) WarmupBars(p strategy.Params) int {
	w := p.RSIPeriod
	if p.ATRPeriod > w {
		w = p.ATRPeriod
	}
	if p.VolumePeriod-1 > w {
		w = p.VolumePeriod - 1
	}
	return w
}

func (s *RSIReversion) Evaluate(i int, ind *indicator.Set, p strategy.Params) core.Signal {
	rsi, ok := ind.RSI(p.RSIPeriod).At(i)
	if !ok {
		return core.SignalHold
	}

	// Overbought extreme: reverse short when enabled, otherwise the exit
	// threshold below handles going flat.
	if p.Shorts && rsi >= 100-p.RSIEntry {
		if strategy.VolumeOK(i, ind, p) {
			return core.SignalEnterShort
		}
		return core.SignalExit
	}
	if rsi >= p.RSIExit {
		return core.SignalExit
	}
	if rsi <= p.RSIEntry {
		if !strategy.VolumeOK(i, ind, p) {
			return core.SignalHold
		}
		return core.SignalEnterLong
	}
	return core.SignalHold
}

var _ strategy.Strategy = (*RSIReversion)(nil)

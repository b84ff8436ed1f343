// Package emacross implements an EMA crossover strategy: enter long on a
// golden cross of the fast EMA over the slow EMA, exit (or reverse short)
// on a death cross.
package emacross

import (
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/indicator"
	"github.com/marlinhq/marlin/internal/strategy"
)

type EMACross struct{}

// New creates a new EMA crossover strategy
func New() *EMACross {
	return &EMACross{}
}

func (s *EMACross) Name() string {
	return "ema_crossover"
}

func (s *EMACross) Description() string {
	return "EMA crossover: long on golden cross, flat (or short) on death cross"
}

func (s *EMACross) DefaultParams() strategy.Params {
	return strategy.Params{
		FastPeriod:    12,
		SlowPeriod:    26,
		ATRPeriod:     14,
		ATRMultiplier: 2.0,
	}
}

func (s *EMACross) WarmupBars(p strategy.Params) int {
	// Crossover detection needs the slow EMA at i-1, sizing needs the ATR
	// at the entry bar.
	w := p.SlowPeriod
	if p.ATRPeriod > w {
		w = p.ATRPeriod
	}
	if p.VolumePeriod-1 > w {
		w = p.VolumePeriod - 1
	}
	return w
}

func (s *EMACross) Evaluate(i int, ind *indicator.Set, p strategy.Params) core.Signal {
	fast := ind.EMA(p.FastPeriod)
	slow := ind.EMA(p.SlowPeriod)

	currFast, ok1 := fast.At(i)
	prevFast, ok2 := fast.At(i - 1)
	currSlow, ok3 := slow.At(i)
	prevSlow, ok4 := slow.At(i - 1)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return core.SignalHold
	}

	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		if !strategy.VolumeOK(i, ind, p) {
			return core.SignalHold
		}
		return core.SignalEnterLong
	case prevFast >= prevSlow && currFast < currSlow:
		if p.Shorts && strategy.VolumeOK(i, ind, p) {
			return core.SignalEnterShort
		}
		return core.SignalExit
	}
	return core.SignalHold
}

var _ strategy.Strategy = (*EMACross)(nil)

// Package macdmom implements a MACD momentum strategy: enter long when the
// histogram crosses above zero, exit (or reverse short) when it crosses
// below.
package macdmom

import (
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/indicator"
	"github.com/marlinhq/marlin/internal/strategy"
)

type MACDMomentum struct{}

// New creates a new MACD momentum strategy
func New() *MACDMomentum {
	return &MACDMomentum{}
}

func (s *MACDMomentum) Name() string {
	return "macd_momentum"
}

func (s *MACDMomentum) Description() string {
	return "MACD momentum: long when the histogram turns positive, flat (or short) when it turns negative"
}

func (s *MACDMomentum) DefaultParams() strategy.Params {
	return strategy.Params{
		FastPeriod:    12,
		SlowPeriod:    26,
		SignalPeriod:  9,
		ATRPeriod:     14,
		ATRMultiplier: 2.5,
	}
}

func (s *MACDMomentum) WarmupBars(p strategy.Params) int {
	// Histogram is defined from slow-1 + signal-1; crossing detection needs
	// one more bar.
	w := p.SlowPeriod + p.SignalPeriod - 1
	if p.ATRPeriod > w {
		w = p.ATRPeriod
	}
	if p.VolumePeriod-1 > w {
		w = p.VolumePeriod - 1
	}
	return w
}

func (s *MACDMomentum) Evaluate(i int, ind *indicator.Set, p strategy.Params) core.Signal {
	_, _, hist := ind.MACD(p.FastPeriod, p.SlowPeriod, p.SignalPeriod)

	curr, ok1 := hist.At(i)
	prev, ok2 := hist.At(i - 1)
	if !ok1 || !ok2 {
		return core.SignalHold
	}

	switch {
	case prev <= 0 && curr > 0:
		if !strategy.VolumeOK(i, ind, p) {
			return core.SignalHold
		}
		return core.SignalEnterLong
	case prev >= 0 && curr < 0:
		if p.Shorts && strategy.VolumeOK(i, ind, p) {
			return core.SignalEnterShort
		}
		return core.SignalExit
	}
	return core.SignalHold
}

var _ strategy.Strategy = (*MACDMomentum)(nil)

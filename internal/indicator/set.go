package indicator

import (
	"fmt"

	"github.com/marlinhq/marlin/internal/core"
)

// Set bundles the indicator series for one bar history. Series are computed
// on first use and memoized, so repeated per-bar lookups stay O(n) over a
// whole backtest. A Set is not safe for concurrent use; each run owns one.
type Set struct {
	bars    []core.Bar
	closes  []float64
	volumes []float64
	cache   map[string]Series
}

// NewSet creates a Set over an immutable bar history.
func NewSet(bars []core.Bar) *Set {
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
	}
	return &Set{
		bars:    bars,
		closes:  closes,
		volumes: volumes,
		cache:   make(map[string]Series),
	}
}

// Len returns the number of bars in the history.
func (s *Set) Len() int {
	return len(s.bars)
}

// Volume returns the raw volume at bar index i.
func (s *Set) Volume(i int) float64 {
	if i < 0 || i >= len(s.volumes) {
		return 0
	}
	return s.volumes[i]
}

func (s *Set) memo(key string, compute func() Series) Series {
	if v, ok := s.cache[key]; ok {
		return v
	}
	v := compute()
	s.cache[key] = v
	return v
}

// SMA returns the simple moving average of closes.
func (s *Set) SMA(period int) Series {
	return s.memo(fmt.Sprintf("sma:%d", period), func() Series {
		return SMA(s.closes, period)
	})
}

// EMA returns the exponential moving average of closes.
func (s *Set) EMA(period int) Series {
	return s.memo(fmt.Sprintf("ema:%d", period), func() Series {
		return EMA(s.closes, period)
	})
}

// RSI returns the Wilder RSI of closes.
func (s *Set) RSI(period int) Series {
	return s.memo(fmt.Sprintf("rsi:%d", period), func() Series {
		return RSI(s.closes, period)
	})
}

// ATR returns the Wilder average true range.
func (s *Set) ATR(period int) Series {
	return s.memo(fmt.Sprintf("atr:%d", period), func() Series {
		return ATR(s.bars, period)
	})
}

// VolumeSMA returns the simple moving average of volume.
func (s *Set) VolumeSMA(period int) Series {
	return s.memo(fmt.Sprintf("volsma:%d", period), func() Series {
		return SMA(s.volumes, period)
	})
}

// MACD returns the MACD line, signal line and histogram.
func (s *Set) MACD(fast, slow, signal int) (Series, Series, Series) {
	key := fmt.Sprintf("macd:%d:%d:%d", fast, slow, signal)
	if v, ok := s.cache[key]; ok {
		return v, s.cache[key+":sig"], s.cache[key+":hist"]
	}
	macd, sig, hist := MACD(s.closes, fast, slow, signal)
	s.cache[key] = macd
	s.cache[key+":sig"] = sig
	s.cache[key+":hist"] = hist
	return macd, sig, hist
}

// Bollinger returns the upper, middle and lower bands.
func (s *Set) Bollinger(period int, k float64) (Series, Series, Series) {
	key := fmt.Sprintf("boll:%d:%g", period, k)
	if v, ok := s.cache[key]; ok {
		return v, s.cache[key+":mid"], s.cache[key+":low"]
	}
	upper, mid, lower := Bollinger(s.closes, period, k)
	s.cache[key] = upper
	s.cache[key+":mid"] = mid
	s.cache[key+":low"] = lower
	return upper, mid, lower
}

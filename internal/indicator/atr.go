package indicator

import (
	"math"

	"github.com/marlinhq/marlin/internal/core"
)

// ATR calculates the Average True Range using Wilder smoothing.
// True range needs a prior close, so ranges start at bar 1 and the seed
// average covers bars 1..period; the first defined value is at index period.
func ATR(bars []core.Bar, period int) Series {
	s := newSeries(len(bars), period)
	if period <= 0 || len(bars) < period+1 {
		return newSeries(len(bars), len(bars))
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += trueRange(bars[i], bars[i-1].Close)
	}
	atr := sum / float64(period)
	s.values[period] = atr

	for i := period + 1; i < len(bars); i++ {
		tr := trueRange(bars[i], bars[i-1].Close)
		atr = (atr*float64(period-1) + tr) / float64(period)
		s.values[i] = atr
	}

	return s
}

// trueRange is the greatest of high-low, |high-prevClose|, |low-prevClose|.
func trueRange(b core.Bar, prevClose float64) float64 {
	hl := b.High - b.Low
	hc := math.Abs(b.High - prevClose)
	lc := math.Abs(b.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

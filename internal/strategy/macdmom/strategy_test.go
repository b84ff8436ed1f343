package macdmom

import (
	"testing"
	"time"

	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/indicator"
	"github.com/marlinhq/marlin/internal/strategy"
)

func barsFromCloses(closes []float64) []core.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Open: c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
			Time:   base.AddDate(0, 0, i),
		}
	}
	return bars
}

func testParams() strategy.Params {
	return strategy.Params{
		FastPeriod: 2, SlowPeriod: 3, SignalPeriod: 2,
		ATRPeriod: 2, ATRMultiplier: 2,
	}
}

func TestMACDMomentum_HistogramTurnsPositive(t *testing.T) {
	// Flat prices pin the histogram at zero; the pop at bar 5 turns it
	// positive before the lagging signal line catches up.
	ind := indicator.NewSet(barsFromCloses([]float64{10, 10, 10, 10, 10, 12}))
	s := New()

	if got := s.Evaluate(4, ind, testParams()); got != core.SignalHold {
		t.Errorf("Evaluate(4) = %s, want hold while histogram is flat", got)
	}
	if got := s.Evaluate(5, ind, testParams()); got != core.SignalEnterLong {
		t.Errorf("Evaluate(5) = %s, want enter_long when histogram turns positive", got)
	}
}

func TestMACDMomentum_HistogramTurnsNegative(t *testing.T) {
	ind := indicator.NewSet(barsFromCloses([]float64{10, 10, 10, 10, 10, 8}))
	s := New()
	p := testParams()

	if got := s.Evaluate(5, ind, p); got != core.SignalExit {
		t.Errorf("Evaluate(5) = %s, want exit when histogram turns negative", got)
	}

	p.Shorts = true
	if got := s.Evaluate(5, ind, p); got != core.SignalEnterShort {
		t.Errorf("Evaluate(5) with shorts = %s, want enter_short", got)
	}
}

func TestMACDMomentum_WarmupHolds(t *testing.T) {
	ind := indicator.NewSet(barsFromCloses([]float64{10, 10, 10, 10}))
	s := New()

	for i := 0; i < 4; i++ {
		if got := s.Evaluate(i, ind, testParams()); got != core.SignalHold {
			t.Errorf("Evaluate(%d) = %s, want hold during warm-up", i, got)
		}
	}
}

func TestMACDMomentum_WarmupBars(t *testing.T) {
	s := New()
	p := s.DefaultParams()
	if got := s.WarmupBars(p); got != 34 {
		t.Errorf("WarmupBars = %d, want 34 (26+9-1)", got)
	}
}

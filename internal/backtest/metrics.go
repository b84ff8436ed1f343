package backtest

import (
	"math"
)

// tradingDaysPerYear is the conventional annualization factor for daily bars.
const tradingDaysPerYear = 252

// ProfitFactorNoLosses is the sentinel reported when a run has winning
// trades and no losing ones. A sentinel keeps the result JSON-safe where
// +Inf would not be.
const ProfitFactorNoLosses = 9999.0

// CalculateMetrics reduces an equity curve and trade log into summary
// statistics. Every ratio guards its divide-by-zero case deterministically;
// no NaN or Inf ever reaches the result.
func CalculateMetrics(curve []EquityPoint, trades []ClosedTrade, cfg Config) Metrics {
	m := Metrics{FinalEquity: cfg.InitialCapital}
	if len(curve) == 0 {
		return m
	}

	final := curve[len(curve)-1].Equity
	m.FinalEquity = final
	m.TotalReturnPct = (final/cfg.InitialCapital - 1) * 100
	m.AnnualizedReturnPct = annualizedReturn(curve, cfg.InitialCapital) * 100

	returns := dailyReturns(curve, cfg.InitialCapital)
	m.SharpeRatio = sharpeRatio(returns)
	m.SortinoRatio = sortinoRatio(returns)

	for _, p := range curve {
		if p.Drawdown*100 > m.MaxDrawdownPct {
			m.MaxDrawdownPct = p.Drawdown * 100
		}
	}

	m.TotalTrades = len(trades)
	var grossWin, grossLoss, totalPnL float64
	for _, t := range trades {
		totalPnL += t.PnL
		if t.IsWin() {
			m.WinningTrades++
			grossWin += t.PnL
		} else {
			m.LosingTrades++
			grossLoss += t.PnL
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
		m.AvgTradePnL = totalPnL / float64(m.TotalTrades)
	}
	m.ProfitFactor = profitFactor(grossWin, grossLoss, m.TotalTrades)

	return m
}

// dailyReturns derives bar-over-bar equity returns; the first bar is
// measured against initial capital.
func dailyReturns(curve []EquityPoint, initial float64) []float64 {
	returns := make([]float64, 0, len(curve))
	prev := initial
	for _, p := range curve {
		if prev > 0 {
			returns = append(returns, p.Equity/prev-1)
		}
		prev = p.Equity
	}
	return returns
}

// annualizedReturn compounds the total return over the elapsed calendar
// span. A span under one day falls back to the total return.
func annualizedReturn(curve []EquityPoint, initial float64) float64 {
	final := curve[len(curve)-1].Equity
	total := final/initial - 1
	days := curve[len(curve)-1].Time.Sub(curve[0].Time).Hours() / 24
	if days < 1 {
		return total
	}
	growth := final / initial
	if growth <= 0 {
		return -1 // capital wiped out; compounding is meaningless
	}
	return math.Pow(growth, 365.25/days) - 1
}

// sharpeRatio is mean(daily return) / stdev(daily return), annualized by
// sqrt(252). Zero variance reads as 0, never NaN.
func sharpeRatio(returns []float64) float64 {
	mean, sd := meanStdev(returns)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// sortinoRatio penalizes only downside volatility: the denominator is the
// stdev of negative daily returns. No negative returns reads as 0.
func sortinoRatio(returns []float64) float64 {
	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	_, downside := meanStdev(negatives)
	if downside == 0 {
		return 0
	}
	mean, _ := meanStdev(returns)
	return mean / downside * math.Sqrt(tradingDaysPerYear)
}

// meanStdev returns the mean and sample standard deviation.
func meanStdev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)-1))
}

func profitFactor(grossWin, grossLoss float64, totalTrades int) float64 {
	if totalTrades == 0 {
		return 0
	}
	if grossLoss == 0 {
		if grossWin > 0 {
			return ProfitFactorNoLosses
		}
		return 0
	}
	return grossWin / math.Abs(grossLoss)
}

// MonthlyReturns groups the equity curve by calendar month and reports each
// month's return from the prior month's closing equity (the first month is
// measured against initial capital). Keys are formatted YYYY-MM.
func MonthlyReturns(curve []EquityPoint, initial float64) map[string]float64 {
	out := make(map[string]float64)
	if len(curve) == 0 {
		return out
	}

	prevEquity := initial
	currentKey := curve[0].Time.Format("2006-01")
	lastEquity := curve[0].Equity

	for _, p := range curve[1:] {
		key := p.Time.Format("2006-01")
		if key != currentKey {
			if prevEquity > 0 {
				out[currentKey] = (lastEquity/prevEquity - 1) * 100
			}
			prevEquity = lastEquity
			currentKey = key
		}
		lastEquity = p.Equity
	}
	if prevEquity > 0 {
		out[currentKey] = (lastEquity/prevEquity - 1) * 100
	}

	return out
}

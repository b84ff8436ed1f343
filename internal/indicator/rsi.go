package indicator

// RSI calculates the Relative Strength Index using Wilder smoothing.
// The seed average gain/loss covers the first period deltas, so the first
// defined value is at index period.
func RSI(closes []float64, period int) Series {
	s := newSeries(len(closes), period)
	if period <= 0 || len(closes) < period+1 {
		return newSeries(len(closes), len(closes))
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	s.values[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		var gain, loss float64
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		s.values[i] = rsiValue(avgGain, avgLoss)
	}

	return s
}

// rsiValue maps average gain/loss to the 0-100 RSI scale. A flat history
// (no gains, no losses) reads as neutral 50 instead of dividing by zero.
func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

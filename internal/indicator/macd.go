package indicator

// MACD calculates the MACD line, the signal line and the histogram.
// The MACD line is defined from index slow-1; the signal line (an EMA of the
// MACD line) and the histogram from index slow-1 + signal-1.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, histogram Series) {
	n := len(closes)
	if fast <= 0 || slow <= fast || signal <= 0 || n < slow {
		empty := newSeries(n, n)
		return empty, empty, empty
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	macd = newSeries(n, slow-1)
	for i := slow - 1; i < n; i++ {
		f, _ := fastEMA.At(i)
		sl, _ := slowEMA.At(i)
		macd.values[i] = f - sl
	}

	// Signal line is an EMA over the defined portion of the MACD line.
	sigWarmup := slow - 1 + signal - 1
	signalLine = newSeries(n, sigWarmup)
	histogram = newSeries(n, sigWarmup)
	if n <= sigWarmup {
		return macd, newSeries(n, n), newSeries(n, n)
	}

	sub := EMA(macd.values[slow-1:], signal)
	for i := sigWarmup; i < n; i++ {
		v, ok := sub.At(i - (slow - 1))
		if !ok {
			continue
		}
		signalLine.values[i] = v
		histogram.values[i] = macd.values[i] - v
	}

	return macd, signalLine, histogram
}

package indicator

import "math"

// Bollinger calculates Bollinger Bands: an SMA middle band and upper/lower
// bands k population standard deviations away. First defined value is at
// index period-1.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower Series) {
	n := len(closes)
	if period <= 0 || n < period {
		empty := newSeries(n, n)
		return empty, empty, empty
	}

	middle = SMA(closes, period)
	upper = newSeries(n, period-1)
	lower = newSeries(n, period-1)

	// Rolling sums of x and x^2 give a single-pass variance.
	var sum, sumSq float64
	for i := 0; i < period; i++ {
		sum += closes[i]
		sumSq += closes[i] * closes[i]
	}
	set := func(i int) {
		mean := sum / float64(period)
		variance := sumSq/float64(period) - mean*mean
		if variance < 0 {
			variance = 0 // numeric noise on constant inputs
		}
		sd := math.Sqrt(variance)
		upper.values[i] = mean + k*sd
		lower.values[i] = mean - k*sd
	}
	set(period - 1)
	for i := period; i < n; i++ {
		out := closes[i-period]
		sum += closes[i] - out
		sumSq += closes[i]*closes[i] - out*out
		set(i)
	}

	return upper, middle, lower
}

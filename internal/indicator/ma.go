package indicator

// SMA calculates Simple Moving Average.
// First defined value is at index period-1.
func SMA(values []float64, period int) Series {
	s := newSeries(len(values), period-1)
	if period <= 0 || len(values) < period {
		return newSeries(len(values), len(values))
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	s.values[period-1] = sum / float64(period)

	// Rolling calculation
	for i := period; i < len(values); i++ {
		sum = sum - values[i-period] + values[i]
		s.values[i] = sum / float64(period)
	}

	return s
}

// EMA calculates Exponential Moving Average, seeded with the SMA of the
// first period values. First defined value is at index period-1.
func EMA(values []float64, period int) Series {
	s := newSeries(len(values), period-1)
	if period <= 0 || len(values) < period {
		return newSeries(len(values), len(values))
	}

	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	s.values[period-1] = ema

	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		s.values[i] = ema
	}

	return s
}

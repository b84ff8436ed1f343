// Package indicator provides technical indicator calculations over bar data.
//
// Every indicator returns a Series aligned to the input bar indices. Indices
// before the warm-up offset are undefined: At reports them as absent rather
// than zero-filling, so callers can skip signal evaluation until enough
// history exists. All recurrences are O(n) rolling computations.
package indicator

import "math"

// Series holds one indicator value per bar index. Values at indices before
// Warmup are undefined.
type Series struct {
	values []float64
	warmup int
}

func newSeries(n, warmup int) Series {
	values := make([]float64, n)
	for i := 0; i < warmup && i < n; i++ {
		values[i] = math.NaN()
	}
	return Series{values: values, warmup: warmup}
}

// At returns the value at bar index i and whether it is defined.
func (s Series) At(i int) (float64, bool) {
	if i < s.warmup || i >= len(s.values) {
		return 0, false
	}
	return s.values[i], true
}

// Warmup returns the first bar index with a defined value.
func (s Series) Warmup() int {
	return s.warmup
}

// Len returns the number of bar indices the series spans.
func (s Series) Len() int {
	return len(s.values)
}

package aggregate

import "math"

// Stats summarizes one group of interval-average temperatures.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// accumulator builds Stats incrementally from count, min, max, sum, and sum
// of squares. Partial accumulators merge, so groups can be accumulated
// independently and combined later.
type accumulator struct {
	count int
	min   float64
	max   float64
	sum   float64
	sumSq float64
}

func (a *accumulator) add(v float64) {
	if a.count == 0 {
		a.min = v
		a.max = v
	} else {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	a.count++
	a.sum += v
	a.sumSq += v * v
}

func (a *accumulator) merge(b accumulator) {
	if b.count == 0 {
		return
	}
	if a.count == 0 {
		*a = b
		return
	}

	a.min = math.Min(a.min, b.min)
	a.max = math.Max(a.max, b.max)
	a.count += b.count
	a.sum += b.sum
	a.sumSq += b.sumSq
}

// stats returns the summary of the accumulated values, or nil when nothing
// was accumulated. The standard deviation is the population form, the same
// statistic the site's historical summaries report.
func (a *accumulator) stats() *Stats {
	if a.count == 0 {
		return nil
	}

	n := float64(a.count)
	mean := a.sum / n
	variance := a.sumSq/n - mean*mean
	if variance < 0 {
		// Rounding can push the difference slightly negative.
		variance = 0
	}

	return &Stats{
		Count:  a.count,
		Min:    a.min,
		Max:    a.max,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}

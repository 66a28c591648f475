package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice, skipping NaN.
func Mean(x []float64) float64 {
	x = dropNaN(x)
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// Variance computes the population variance of a slice, skipping NaN.
func Variance(x []float64) float64 {
	x = dropNaN(x)
	if len(x) == 0 {
		return math.NaN()
	}
	_, v := stat.PopMeanVariance(x, nil)
	return v
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Median returns the median value of the slice (allocates a copy, NaN skipped).
// Even lengths average the two middle values.
func Median(x []float64) float64 {
	cp := dropNaN(x)
	n := len(cp)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(cp)
	mid := n >> 1 // bitwise division by 2
	if n&1 == 0 { // even
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// MostFrequent returns the most frequent string and whether one was found.
// Ties go to the lexicographically smallest value.
func MostFrequent(x []string) (string, bool) {
	if len(x) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	var mode string
	maxCount := 0
	for v, c := range counts {
		if c > maxCount || (c == maxCount && v < mode) {
			mode, maxCount = v, c
		}
	}
	return mode, true
}

// dropNaN returns a copy of x without NaN entries.
func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

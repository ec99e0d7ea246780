package profile

import (
	"math"
	"sort"
)

// Descriptive statistics over raw cent amounts. Only mean, median, sample
// standard deviation, min and max are used anywhere in this module; there is
// deliberately no fitted model behind any of the detectors.

func Mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func Median(values []int64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// SampleStdev divides by n-1. Returns 0 for fewer than two samples.
func SampleStdev(values []int64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := float64(v) - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func MinMax(values []int64) (int64, int64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

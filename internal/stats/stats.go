// Package stats wraps gonum's descriptive statistics with the conventions
// used across the analyses: sample standard deviation and percentiles that
// interpolate linearly between closest ranks.
package stats

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one sample of values.
type Summary struct {
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Sorted returns an ascending copy of vals.
func Sorted(vals []float64) []float64 {
	out := slices.Clone(vals)
	slices.Sort(out)
	return out
}

// Describe summarises vals, which must not be empty. StdDev is the sample
// standard deviation and is zero for a single value.
func Describe(vals []float64) Summary {
	sorted := Sorted(vals)
	s := Summary{
		Mean:   stat.Mean(sorted, nil),
		Median: Percentile(sorted, 50),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// Percentile returns the p-th percentile (0-100) of ascending, non-empty
// data, interpolating between the two closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := float64(len(sorted))
	// LinInterp places q at rank q*n; rescale so rank r=(n-1)p+1 is hit.
	q := ((n-1)*p/100 + 1) / n
	return stat.Quantile(min(max(q, 0), 1), stat.LinInterp, sorted, nil)
}

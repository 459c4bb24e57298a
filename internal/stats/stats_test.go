package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	s := Describe([]float64{40, 10, 30, 20})
	assert.InDelta(t, 25.0, s.Mean, 1e-9)
	assert.InDelta(t, 25.0, s.Median, 1e-9)
	assert.InDelta(t, 12.9099, s.StdDev, 1e-4)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)

	odd := Describe([]float64{50, 10, 25})
	assert.InDelta(t, 25.0, odd.Median, 1e-9)

	single := Describe([]float64{7})
	assert.Equal(t, Summary{Mean: 7, Median: 7, Min: 7, Max: 7}, single)
}

func TestDescribeLeavesInputUnsorted(t *testing.T) {
	vals := []float64{3, 1, 2}
	Describe(vals)
	assert.Equal(t, []float64{3, 1, 2}, vals)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	tests := []struct {
		p, want float64
	}{
		{0, 10},
		{50, 25},
		{95, 38.5},
		{99, 39.7},
		{100, 40},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(sorted, tt.p), 1e-9, "p%v", tt.p)
	}
	assert.Equal(t, 60.0, Percentile([]float64{60}, 99))
}

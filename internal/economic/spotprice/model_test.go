package spotprice

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func constantSeries(t *testing.T, prices ...float64) *Model {
	t.Helper()
	records := make([]PriceRecord, len(prices))
	for i, p := range prices {
		records[i] = PriceRecord{Timestamp: at(time.March, 1, i%24), PriceAUDPerMWh: p, Region: Region}
	}
	m, err := NewModelFromRecords(records, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestSyntheticSeriesIsSeeded(t *testing.T) {
	a := NewModel(WithSeed(42))
	b := NewModel(WithSeed(42))
	c := NewModel(WithSeed(7))

	require.Len(t, a.Records(), 365*24)
	assert.Equal(t, a.Records(), b.Records())
	assert.NotEqual(t, a.Records()[100].PriceAUDPerMWh, c.Records()[100].PriceAUDPerMWh)

	first := a.Records()[0]
	assert.True(t, first.Timestamp.Equal(DefaultStart()))
	assert.Equal(t, Region, first.Region)
	for _, r := range a.Records() {
		assert.GreaterOrEqual(t, r.PriceAUDPerMWh, 0.0)
		assert.Greater(t, r.DemandMW, 0.0)
	}
}

func TestBasePrice(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want float64
	}{
		// 2024-03-04 is a Monday in an unadjusted month.
		{"weekday peak", at(time.March, 4, 7), 150},
		{"weekday day", at(time.March, 4, 12), 80},
		{"weekday night", at(time.March, 4, 2), 45},
		{"weekend peak", at(time.March, 2, 18), 120},
		{"summer peak", at(time.January, 3, 8), 195},
		{"winter night", at(time.July, 3, 23), 49.5},
		{"summer weekend day", at(time.January, 6, 12), 83.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, basePrice(tt.ts), 1e-9)
		})
	}
}

func TestRenewableFactor(t *testing.T) {
	assert.InDelta(t, 0.4, renewableFactor(at(time.November, 5, 12)), 1e-9)
	assert.InDelta(t, 0.7, renewableFactor(at(time.June, 5, 12)), 1e-9)
	assert.InDelta(t, 0.8, renewableFactor(at(time.June, 5, 8)), 1e-9)
	assert.InDelta(t, 0.8, renewableFactor(at(time.June, 5, 17)), 1e-9)
	assert.InDelta(t, 1.2, renewableFactor(at(time.June, 5, 22)), 1e-9)
}

func TestRandomFactorsStayInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		peak := volatilityFactor(at(time.May, 1, 7), r)
		assert.GreaterOrEqual(t, peak, 0.7)
		assert.Less(t, peak, 2.5)

		off := volatilityFactor(at(time.May, 1, 3), r)
		assert.GreaterOrEqual(t, off, 0.8)
		assert.Less(t, off, 1.3)

		// Night: wind only, between 0.03 and 0.24 of demand.
		gen := renewableGeneration(at(time.May, 1, 23), 1000, r)
		assert.GreaterOrEqual(t, gen, 30.0)
		assert.Less(t, gen, 240.0)
	}
}

func TestHourImpactFactor(t *testing.T) {
	for hour, want := range map[int]float64{0: 0.3, 6: 0.3, 7: 1.5, 9: 1.5, 10: 2.0, 15: 2.0, 16: 1.5, 18: 1.5, 19: 0.3} {
		assert.InDelta(t, want, HourImpactFactor(hour), 1e-9, "hour %d", hour)
	}
}

func TestPriceVolatility(t *testing.T) {
	v := constantSeries(t, 40, 10, 30, 20).PriceVolatility()

	assert.InDelta(t, 25.0, v.MeanPrice, 1e-9)
	assert.InDelta(t, 25.0, v.MedianPrice, 1e-9)
	assert.InDelta(t, 12.9099, v.StdDeviation, 1e-4)
	assert.InDelta(t, 10.0, v.MinPrice, 1e-9)
	assert.InDelta(t, 40.0, v.MaxPrice, 1e-9)
	assert.InDelta(t, 38.5, v.Percentile95, 1e-9)
	assert.InDelta(t, 39.7, v.Percentile99, 1e-9)
	assert.InDelta(t, v.StdDeviation/v.MeanPrice, v.VolatilityCoefficient, 1e-12)
}

func TestPriceVolatilitySingleRecord(t *testing.T) {
	v := constantSeries(t, 60).PriceVolatility()
	assert.Zero(t, v.StdDeviation)
	assert.InDelta(t, 60.0, v.Percentile99, 1e-9)

	_, err := NewModelFromRecords(nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestSupplyDisruptionImpact(t *testing.T) {
	m := constantSeries(t, 100, 100)
	d := m.SupplyDisruptionImpact(2, 10, at(time.March, 1, 12))

	assert.InDelta(t, 100.0, d.BaselinePriceAUDPerMWh, 1e-9)
	assert.InDelta(t, 1.0035, d.PriceMultiplier, 1e-12)
	assert.InDelta(t, 2.0, d.ImpactFactor, 1e-12)
	assert.InDelta(t, 0.7, d.PriceIncreaseAUDPerMWh, 1e-9)
	assert.InDelta(t, 14.0, d.TotalAdditionalGenerationCost, 1e-9)
	assert.InDelta(t, 300.0, d.AncillaryServicesCost, 1e-9)
	assert.InDelta(t, 314.0, d.TotalMarketImpact, 1e-9)
	assert.InDelta(t, 0.1, d.CapacityPercentageDisrupted, 1e-12)
	assert.InDelta(t, 0.02, d.MarketVolatilityIncreasePercent, 1e-12)

	night := m.SupplyDisruptionImpact(2, 10, at(time.March, 1, 2))
	assert.InDelta(t, 0.3, night.ImpactFactor, 1e-12)
	assert.Less(t, night.TotalMarketImpact, d.TotalMarketImpact)
}

func TestHistoricalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"timestamp": "2024-01-01T00:00:00", "price_aud_per_mwh": 50, "demand_mw": 1500, "renewable_generation_mw": 200},
		{"timestamp": "2024-01-01T01:00:00+09:30", "price_aud_per_mwh": 70, "demand_mw": 1400, "renewable_generation_mw": 150, "region": "VIC1"}
	]`), 0o600))

	m := NewModel(WithHistoricalFile(path))
	require.Len(t, m.Records(), 2)
	assert.Equal(t, Region, m.Records()[0].Region)
	assert.Equal(t, "VIC1", m.Records()[1].Region)
	assert.Equal(t, 1, m.Records()[1].Timestamp.Hour())
	assert.InDelta(t, 60.0, m.PriceVolatility().MeanPrice, 1e-9)
}

func TestHistoricalFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o600))
	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`[{"timestamp": "2024-01-01T00:00:00"}]`), 0o600))

	for _, path := range []string{filepath.Join(dir, "missing.json"), empty, partial} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			m := NewModel(WithHistoricalFile(path), WithSeed(1), WithLogger(zap.New(core)))

			assert.Len(t, m.Records(), 365*24)
			assert.Equal(t, 1, logs.Len())
		})
	}
}

package spotprice

import (
	"math"
	"math/rand/v2"
	"time"
)

func isPeak(hour int) bool { return (hour >= 6 && hour <= 9) || (hour >= 17 && hour <= 21) }
func isDay(hour int) bool  { return hour >= 10 && hour <= 16 }

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func isSummer(m time.Month) bool { return m == time.December || m == time.January || m == time.February }
func isWinter(m time.Month) bool { return m == time.June || m == time.July || m == time.August }

// highSolarMonth covers October through March.
func highSolarMonth(m time.Month) bool { return m >= time.October || m <= time.March }

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Synthesize generates hours hourly records from start. Every random draw
// comes from r, so a seeded source yields a reproducible series.
func Synthesize(start time.Time, hours int, r *rand.Rand) []PriceRecord {
	records := make([]PriceRecord, 0, hours)
	for i := 0; i < hours; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)

		price := basePrice(ts) * volatilityFactor(ts, r) * renewableFactor(ts)
		load := demand(ts, r)
		records = append(records, PriceRecord{
			Timestamp:             ts,
			PriceAUDPerMWh:        math.Max(0, price),
			DemandMW:              load,
			RenewableGenerationMW: renewableGeneration(ts, load, r),
			Region:                Region,
		})
	}
	return records
}

func basePrice(t time.Time) float64 {
	h := t.Hour()
	price := 45.0
	switch {
	case isPeak(h):
		price = 150
	case isDay(h):
		price = 80
	}
	if isWeekend(t) {
		price *= 0.8
	}
	switch m := t.Month(); {
	case isSummer(m):
		price *= 1.3
	case isWinter(m):
		price *= 1.1
	}
	return price
}

func volatilityFactor(t time.Time, r *rand.Rand) float64 {
	if isPeak(t.Hour()) {
		return uniform(r, 0.7, 2.5)
	}
	return uniform(r, 0.8, 1.3)
}

func renewableFactor(t time.Time) float64 {
	h := t.Hour()
	switch {
	case h >= 10 && h <= 15:
		if highSolarMonth(t.Month()) {
			return 0.4
		}
		return 0.7
	case (h >= 7 && h <= 9) || (h >= 16 && h <= 18):
		return 0.8
	default:
		return 1.2
	}
}

func demand(t time.Time, r *rand.Rand) float64 {
	h := t.Hour()
	d := 1600.0
	switch {
	case isPeak(h):
		d = 2800
	case isDay(h):
		d = 2200
	}
	if isWeekend(t) {
		d *= 0.85
	}
	switch m := t.Month(); {
	case isSummer(m):
		d *= 1.25
	case isWinter(m):
		d *= 1.15
	}
	return d * uniform(r, 0.9, 1.1)
}

func renewableGeneration(t time.Time, load float64, r *rand.Rand) float64 {
	var solar float64
	if h := t.Hour(); h >= 6 && h <= 18 {
		peak := math.Sin(math.Pi * float64(h-6) / 12)
		share := 0.4
		if highSolarMonth(t.Month()) {
			share = 0.6
		}
		solar = load * share * peak
	}
	wind := load * 0.3 * uniform(r, 0.1, 0.8)
	return solar + wind
}

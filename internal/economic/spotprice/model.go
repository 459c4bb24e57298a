// Package spotprice models South Australian (SA1) wholesale spot prices and
// estimates how a loss of solar supply moves them.
package spotprice

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/internal/stats"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Region is the NEM region the synthetic series is generated for.
	Region = "SA1"

	syntheticHours = 365 * 24

	// regionalSolarCapacityMW approximates installed SA solar capacity.
	regionalSolarCapacityMW = 2000.0
)

// PriceRecord is one hourly market observation.
type PriceRecord struct {
	Timestamp             time.Time `json:"timestamp"`
	PriceAUDPerMWh        float64   `json:"price_aud_per_mwh"`
	DemandMW              float64   `json:"demand_mw"`
	RenewableGenerationMW float64   `json:"renewable_generation_mw"`
	Region                string    `json:"region"`
}

// timestampLayouts are tried in order when reading historical records.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON accepts offset-less ISO timestamps and defaults the region.
func (r *PriceRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp             string   `json:"timestamp"`
		PriceAUDPerMWh        *float64 `json:"price_aud_per_mwh"`
		DemandMW              *float64 `json:"demand_mw"`
		RenewableGenerationMW *float64 `json:"renewable_generation_mw"`
		Region                string   `json:"region"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.PriceAUDPerMWh == nil || raw.DemandMW == nil || raw.RenewableGenerationMW == nil {
		return errors.New("price record is missing a required field")
	}

	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	*r = PriceRecord{
		Timestamp:             ts,
		PriceAUDPerMWh:        *raw.PriceAUDPerMWh,
		DemandMW:              *raw.DemandMW,
		RenewableGenerationMW: *raw.RenewableGenerationMW,
		Region:                raw.Region,
	}
	if r.Region == "" {
		r.Region = Region
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, adelaide()); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

var (
	adelaideOnce sync.Once
	adelaideLoc  *time.Location
)

// adelaide returns the Australia/Adelaide zone, or a fixed UTC+09:30 zone
// when tzdata is unavailable.
func adelaide() *time.Location {
	adelaideOnce.Do(func() {
		loc, err := time.LoadLocation("Australia/Adelaide")
		if err != nil {
			loc = time.FixedZone("ACST", 9*3600+30*60)
		}
		adelaideLoc = loc
	})
	return adelaideLoc
}

// DefaultStart is the first hour of the synthetic series.
func DefaultStart() time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, adelaide())
}

// Model holds an hourly price series and caches its volatility statistics.
type Model struct {
	records []PriceRecord
	log     *zap.Logger

	once       sync.Once
	volatility Volatility
}

// Option configures NewModel.
type Option func(*options)

type options struct {
	seed       *uint64
	start      time.Time
	historical string
	logger     *zap.Logger
}

// WithSeed makes synthetic generation reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		s := uint64(seed)
		o.seed = &s
	}
}

// WithStart moves the first hour of the synthetic series.
func WithStart(start time.Time) Option {
	return func(o *options) { o.start = start }
}

// WithHistoricalFile loads records from a JSON array instead of generating
// them. Load failures fall back to synthetic data.
func WithHistoricalFile(path string) Option {
	return func(o *options) { o.historical = path }
}

// WithLogger sets the model's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewModel loads or synthesizes a year of hourly SA1 prices.
func NewModel(opts ...Option) *Model {
	o := options{start: DefaultStart(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	m := &Model{log: o.logger.Named("spotprice")}

	if o.historical != "" {
		records, err := LoadHistorical(o.historical)
		if err == nil {
			m.records = records
			m.log.Info("Loaded historical price records.", zap.Int("count", len(records)), zap.String("path", o.historical))
			return m
		}
		m.log.Warn("Could not load historical price data; generating synthetic series.",
			zap.String("path", o.historical), zap.Error(err))
	}

	seed := uint64(time.Now().UnixNano())
	if o.seed != nil {
		seed = *o.seed
	}
	m.records = Synthesize(o.start, syntheticHours, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	m.log.Info("Generated synthetic spot price series.", zap.Int("count", len(m.records)))
	return m
}

// NewModelFromRecords wraps an existing series. It fails on an empty series.
func NewModelFromRecords(records []PriceRecord, logger *zap.Logger) (*Model, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return &Model{records: records, log: logger.Named("spotprice")}, nil
}

// ErrNoRecords is returned for an empty price series.
var ErrNoRecords = errors.New("price series is empty")

// LoadHistorical reads a JSON array of price records.
func LoadHistorical(path string) ([]PriceRecord, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}
	var records []PriceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse price history: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// Records returns the underlying series.
func (m *Model) Records() []PriceRecord { return m.records }

// Volatility summarizes the price column of a series.
type Volatility struct {
	MeanPrice             float64 `json:"mean_price"`
	MedianPrice           float64 `json:"median_price"`
	StdDeviation          float64 `json:"std_deviation"`
	MinPrice              float64 `json:"min_price"`
	MaxPrice              float64 `json:"max_price"`
	VolatilityCoefficient float64 `json:"volatility_coefficient"`
	Percentile95          float64 `json:"percentile_95"`
	Percentile99          float64 `json:"percentile_99"`
}

// PriceVolatility computes, once, the descriptive statistics of the series.
func (m *Model) PriceVolatility() Volatility {
	m.once.Do(func() {
		prices := make([]float64, len(m.records))
		for i, r := range m.records {
			prices[i] = r.PriceAUDPerMWh
		}
		m.volatility = volatilityOf(prices)
		m.log.Debug("Price volatility analysis completed.", zap.Float64("cv", m.volatility.VolatilityCoefficient))
	})
	return m.volatility
}

func volatilityOf(prices []float64) Volatility {
	if len(prices) == 0 {
		return Volatility{}
	}
	sorted := stats.Sorted(prices)
	d := stats.Describe(sorted)

	v := Volatility{
		MeanPrice:    d.Mean,
		MedianPrice:  d.Median,
		StdDeviation: d.StdDev,
		MinPrice:     d.Min,
		MaxPrice:     d.Max,
		Percentile95: stats.Percentile(sorted, 95),
		Percentile99: stats.Percentile(sorted, 99),
	}
	if d.Mean != 0 {
		v.VolatilityCoefficient = d.StdDev / d.Mean
	}
	return v
}

// Disruption is the estimated market effect of losing solar supply.
type Disruption struct {
	BaselinePriceAUDPerMWh          float64 `json:"baseline_price_aud_mwh"`
	DisruptedCapacityMW             float64 `json:"disrupted_capacity_mw"`
	DurationHours                   float64 `json:"duration_hours"`
	CapacityPercentageDisrupted     float64 `json:"capacity_percentage_disrupted"`
	PriceIncreaseAUDPerMWh          float64 `json:"price_increase_aud_mwh"`
	PriceMultiplier                 float64 `json:"price_multiplier"`
	ImpactFactor                    float64 `json:"impact_factor"`
	TotalAdditionalGenerationCost   float64 `json:"total_additional_generation_cost"`
	AncillaryServicesCost           float64 `json:"ancillary_services_cost"`
	MarketVolatilityIncreasePercent float64 `json:"market_volatility_increase_percent"`
	TotalMarketImpact               float64 `json:"total_market_impact"`
}

// HourImpactFactor weighs a disruption by how much solar is normally
// generating at that hour.
func HourImpactFactor(hour int) float64 {
	switch {
	case hour >= 10 && hour <= 15:
		return 2.0
	case (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18):
		return 1.5
	default:
		return 0.3
	}
}

// SupplyDisruptionImpact estimates the price and cost effect of mw of solar
// going offline for hours, starting at the wall-clock hour of at.
func (m *Model) SupplyDisruptionImpact(mw, hours float64, at time.Time) Disruption {
	baseline := m.PriceVolatility().MeanPrice
	share := mw / regionalSolarCapacityMW
	multiplier := 1 + share*3.5
	factor := HourImpactFactor(at.Hour())

	increase := baseline * (multiplier - 1) * factor
	additional := increase * mw * hours
	ancillary := mw * 15 * hours

	return Disruption{
		BaselinePriceAUDPerMWh:          baseline,
		DisruptedCapacityMW:             mw,
		DurationHours:                   hours,
		CapacityPercentageDisrupted:     share * 100,
		PriceIncreaseAUDPerMWh:          increase,
		PriceMultiplier:                 multiplier,
		ImpactFactor:                    factor,
		TotalAdditionalGenerationCost:   additional,
		AncillaryServicesCost:           ancillary,
		MarketVolatilityIncreasePercent: share * 0.2 * 100,
		TotalMarketImpact:               additional + ancillary,
	}
}

package economic

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/economic/spotprice"
)

var (
	ErrUnknownScenario = errors.New("unknown attack scenario")
	ErrInvalidDuration = errors.New("duration must be a positive number of hours")
)

// Calculator evaluates attack scenarios against one system.
type Calculator struct {
	system schemas.SystemConfig
	prices *spotprice.Model
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock fixes the time used for timestamps and the hour-of-day market
// impact factor.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator creates a calculator for system priced by prices.
func NewCalculator(system schemas.SystemConfig, prices *spotprice.Model, logger *zap.Logger, opts ...Option) *Calculator {
	c := &Calculator{
		system: system,
		prices: prices,
		log:    logger.Named("economic"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CapacityMW is the total system capacity in megawatts.
func (c *Calculator) CapacityMW() float64 {
	return c.system.CapacityKW() / 1000
}

// ScenarioImpact evaluates one scenario. A zero duration selects the
// midpoint of the scenario's duration range.
func (c *Calculator) ScenarioImpact(scenario schemas.AttackScenario, durationHours float64) (schemas.EconomicImpact, error) {
	profile, ok := Profiles[scenario]
	if !ok {
		return schemas.EconomicImpact{}, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
	if durationHours < 0 || math.IsNaN(durationHours) || math.IsInf(durationHours, 0) {
		return schemas.EconomicImpact{}, fmt.Errorf("%w: got %v", ErrInvalidDuration, durationHours)
	}
	if durationHours == 0 {
		durationHours = profile.DefaultDuration()
	}

	now := c.now()
	mw := c.CapacityMW() * profile.CapacityFraction
	spot := c.prices.SupplyDisruptionImpact(mw, durationHours, now)

	sectors := make(map[schemas.EconomicSector]float64, len(schemas.EconomicSectors))
	for _, sector := range schemas.EconomicSectors {
		si, ok := CalculateSectorImpact(sector, mw, durationHours, spot.BaselinePriceAUDPerMWh)
		if !ok {
			c.log.Debug("No impact factors for sector; skipped.", zap.String("sector", string(sector)))
			continue
		}
		sectors[sector] = si.TotalSectorImpact
	}

	impact := schemas.EconomicImpact{
		Scenario:           scenario,
		DurationHours:      durationHours,
		AffectedCapacityMW: mw,
		DirectCosts:        directCosts(scenario, profile, durationHours, mw),
		IndirectCosts:      indirectCosts(scenario, durationHours, mw),
		SpotPriceImpact: map[string]float64{
			SpotTotalMarketImpact:        spot.TotalMarketImpact,
			SpotPriceIncrease:            spot.PriceIncreaseAUDPerMWh,
			SpotAdditionalGenerationCost: spot.TotalAdditionalGenerationCost,
		},
		SectorImpacts:   sectors,
		RecoveryCosts:   recoveryCosts(profile, mw),
		ImpactTimestamp: now,
	}
	c.log.Debug("Scenario evaluated.",
		zap.String("scenario", string(scenario)),
		zap.Float64("duration_hours", durationHours),
		zap.Float64("total_aud", impact.Total()))
	return impact, nil
}

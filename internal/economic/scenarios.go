// Package economic estimates the cost in AUD of cyber attacks on a small
// solar fleet and ranks the scenarios and mitigations by expected loss.
package economic

import "github.com/xkilldash9x/solarsec-cli/api/schemas"

// Recovery complexity grades.
const (
	ComplexityLow      = "low"
	ComplexityMedium   = "medium"
	ComplexityHigh     = "high"
	ComplexityVeryHigh = "very_high"
)

var complexityMultipliers = map[string]float64{
	ComplexityLow:      1,
	ComplexityMedium:   2,
	ComplexityHigh:     4,
	ComplexityVeryHigh: 8,
}

// ComplexityMultiplier scales the base recovery cost. Unknown grades count
// as low.
func ComplexityMultiplier(complexity string) float64 {
	if m, ok := complexityMultipliers[complexity]; ok {
		return m
	}
	return 1
}

// ScenarioProfile holds the fixed assumptions for one attack scenario.
type ScenarioProfile struct {
	Description        string     `json:"description"`
	CapacityFraction   float64    `json:"capacity_impact_percentage"`
	DurationRangeHours [2]float64 `json:"duration_range_hours"`
	DetectionHours     float64    `json:"detection_time_hours"`
	RecoveryComplexity string     `json:"recovery_complexity"`
	AnnualLikelihood   float64    `json:"annual_likelihood"`
}

// DefaultDuration is the midpoint of the duration range.
func (p ScenarioProfile) DefaultDuration() float64 {
	return (p.DurationRangeHours[0] + p.DurationRangeHours[1]) / 2
}

// Profiles maps every attack scenario to its assumptions.
var Profiles = map[schemas.AttackScenario]ScenarioProfile{
	schemas.ScenarioSingleInverterCompromise: {
		Description:        "Single inverter compromised, capacity reduced",
		CapacityFraction:   0.6,
		DurationRangeHours: [2]float64{2, 24},
		DetectionHours:     4,
		RecoveryComplexity: ComplexityLow,
		AnnualLikelihood:   0.15,
	},
	schemas.ScenarioMultipleInverterAttack: {
		Description:        "Multiple inverters attacked simultaneously",
		CapacityFraction:   0.8,
		DurationRangeHours: [2]float64{6, 72},
		DetectionHours:     8,
		RecoveryComplexity: ComplexityHigh,
		AnnualLikelihood:   0.05,
	},
	schemas.ScenarioGatewayCompromise: {
		Description:        "Communication gateway compromised",
		CapacityFraction:   1.0,
		DurationRangeHours: [2]float64{4, 48},
		DetectionHours:     6,
		RecoveryComplexity: ComplexityMedium,
		AnnualLikelihood:   0.08,
	},
	schemas.ScenarioAPIEndpointAttack: {
		Description:        "AEMO API endpoint attack disrupts remote control",
		CapacityFraction:   0.3,
		DurationRangeHours: [2]float64{1, 12},
		DetectionHours:     2,
		RecoveryComplexity: ComplexityLow,
		AnnualLikelihood:   0.12,
	},
	schemas.ScenarioCoordinatedGridAttack: {
		Description:        "Large-scale coordinated attack on multiple sites",
		CapacityFraction:   1.0,
		DurationRangeHours: [2]float64{12, 168},
		DetectionHours:     12,
		RecoveryComplexity: ComplexityVeryHigh,
		AnnualLikelihood:   0.01,
	},
	schemas.ScenarioFirmwareInjection: {
		Description:        "Malicious firmware injection attack",
		CapacityFraction:   0.9,
		DurationRangeHours: [2]float64{24, 240},
		DetectionHours:     48,
		RecoveryComplexity: ComplexityVeryHigh,
		AnnualLikelihood:   0.03,
	},
	schemas.ScenarioDenialOfService: {
		Description:        "DDoS attack on communication infrastructure",
		CapacityFraction:   0.4,
		DurationRangeHours: [2]float64{1, 8},
		DetectionHours:     1,
		RecoveryComplexity: ComplexityLow,
		AnnualLikelihood:   0.20,
	},
}

// severe scenarios incur equipment replacement and major penalties.
func severe(s schemas.AttackScenario) bool {
	return s == schemas.ScenarioFirmwareInjection || s == schemas.ScenarioCoordinatedGridAttack
}

// sectorFactors are per-sector cost drivers for an outage.
type sectorFactors struct {
	energyCostIncrease float64
	lostRevenuePerMWh  float64
	backupCostPerMWh   float64
	inconveniencePerHr float64
}

// GOVERNMENT has no factors and is skipped.
var sectorTable = map[schemas.EconomicSector]sectorFactors{
	schemas.SectorResidential:    {1.2, 0, 200, 50},
	schemas.SectorCommercial:     {1.3, 1500, 300, 200},
	schemas.SectorIndustrial:     {1.4, 5000, 500, 1000},
	schemas.SectorGridOperator:   {1.5, 100, 400, 500},
	schemas.SectorEnergyRetailer: {1.6, 80, 350, 300},
}

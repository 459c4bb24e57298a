package economic

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/architecture"
	"github.com/xkilldash9x/solarsec-cli/internal/economic/spotprice"
)

func noon() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

// flatPrices is a two-record series with a mean of 100 AUD/MWh.
func flatPrices(t *testing.T) *spotprice.Model {
	t.Helper()
	m, err := spotprice.NewModelFromRecords([]spotprice.PriceRecord{
		{Timestamp: noon(), PriceAUDPerMWh: 100, Region: spotprice.Region},
		{Timestamp: noon().Add(time.Hour), PriceAUDPerMWh: 100, Region: spotprice.Region},
	}, zap.NewNop())
	require.NoError(t, err)
	return m
}

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(*architecture.DefaultSystemConfig(), flatPrices(t), zap.NewNop(), WithClock(noon))
}

func sumOfCostMaps(e schemas.EconomicImpact) float64 {
	return schemas.SumValues(e.DirectCosts) + schemas.SumValues(e.IndirectCosts) +
		schemas.SumValues(e.SpotPriceImpact) + schemas.SumValues(e.RecoveryCosts)
}

func TestAPIEndpointAttackDefaultDuration(t *testing.T) {
	c := newCalculator(t)
	assert.InDelta(t, 0.008, c.CapacityMW(), 1e-12)

	impact, err := c.ScenarioImpact(schemas.ScenarioAPIEndpointAttack, 0)
	require.NoError(t, err)

	assert.InDelta(t, 6.5, impact.DurationHours, 1e-12)
	assert.InDelta(t, 0.0024, impact.AffectedCapacityMW, 1e-12)
	assert.InDelta(t, 24000.3744, schemas.SumValues(impact.DirectCosts), 1e-6)
	assert.InDelta(t, 6340.8, schemas.SumValues(impact.IndirectCosts), 1e-6)
	assert.InDelta(t, 60480.0, schemas.SumValues(impact.RecoveryCosts), 1e-6)
	assert.InDelta(t, 0.234866208, schemas.SumValues(impact.SpotPriceImpact), 1e-9)

	assert.Greater(t, impact.Total(), 0.0)
	assert.InDelta(t, sumOfCostMaps(impact), impact.Total(), 1e-6)
	assert.InDelta(t, 90821.409266208, impact.Total(), 1e-6)
	assert.Equal(t, noon(), impact.ImpactTimestamp)
}

func TestSectorImpactsExcludedFromTotal(t *testing.T) {
	impact, err := newCalculator(t).ScenarioImpact(schemas.ScenarioAPIEndpointAttack, 0)
	require.NoError(t, err)

	require.Len(t, impact.SectorImpacts, 5)
	assert.NotContains(t, impact.SectorImpacts, schemas.SectorGovernment)
	assert.InDelta(t, 328.432, impact.SectorImpacts[schemas.SectorResidential], 1e-9)

	var sectors float64
	for _, v := range impact.SectorImpacts {
		sectors += v
	}
	assert.Greater(t, sectors, 0.0)
	assert.InDelta(t, sumOfCostMaps(impact), impact.Total(), 1e-6)
}

func TestCalculateSectorImpact(t *testing.T) {
	si, ok := CalculateSectorImpact(schemas.SectorIndustrial, 2, 3, 50)
	require.True(t, ok)
	// 2*3*50*0.4 + 5000*6 + 500*6 + 1000*3
	assert.InDelta(t, 120.0, si.EnergyCostIncrease, 1e-9)
	assert.InDelta(t, 36120.0, si.TotalSectorImpact, 1e-9)
	assert.InDelta(t, 18060.0, si.ImpactPerMW, 1e-9)

	zero, ok := CalculateSectorImpact(schemas.SectorCommercial, 0, 3, 50)
	require.True(t, ok)
	assert.Zero(t, zero.ImpactPerMW)

	_, ok = CalculateSectorImpact(schemas.SectorGovernment, 2, 3, 50)
	assert.False(t, ok)
}

func TestSevereScenarioCosts(t *testing.T) {
	impact, err := newCalculator(t).ScenarioImpact(schemas.ScenarioFirmwareInjection, 0)
	require.NoError(t, err)

	assert.InDelta(t, 132.0, impact.DurationHours, 1e-12)
	assert.InDelta(t, 10800.0, impact.DirectCosts[CostEquipmentReplacement], 1e-6)
	assert.InDelta(t, 24000.0, impact.DirectCosts[CostEmergencyResponse], 1e-9)
	assert.InDelta(t, 50000.0, impact.IndirectCosts[CostRegulatoryPenalty], 1e-9)
	assert.InDelta(t, 40000.0, impact.RecoveryCosts[CostTechnicalRecovery], 1e-9)

	mild, err := newCalculator(t).ScenarioImpact(schemas.ScenarioGatewayCompromise, 0)
	require.NoError(t, err)
	assert.Zero(t, mild.DirectCosts[CostEquipmentReplacement])
	assert.InDelta(t, 5000.0, mild.IndirectCosts[CostRegulatoryPenalty], 1e-9)
	assert.InDelta(t, 10000.0, mild.RecoveryCosts[CostTechnicalRecovery], 1e-9)
}

func TestScenarioImpactArguments(t *testing.T) {
	c := newCalculator(t)

	impact, err := c.ScenarioImpact(schemas.ScenarioDenialOfService, 3)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, impact.DurationHours, 1e-12)

	_, err = c.ScenarioImpact(schemas.ScenarioDenialOfService, -1)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = c.ScenarioImpact("METEOR_STRIKE", 0)
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestCapacityFallsBackToDeclaredTotal(t *testing.T) {
	system := schemas.SystemConfig{SystemName: "bare", TotalCapacityKW: 20}
	c := NewCalculator(system, flatPrices(t), zap.NewNop(), WithClock(noon))
	assert.InDelta(t, 0.02, c.CapacityMW(), 1e-12)
}

func TestComprehensiveAnalysis(t *testing.T) {
	a, err := newCalculator(t).ComprehensiveAnalysis(nil)
	require.NoError(t, err)

	require.Len(t, a.Impacts, len(schemas.AttackScenarios))
	require.Len(t, a.ScenarioAnalysis, len(schemas.AttackScenarios))
	assert.Equal(t, "Adelaide Solar Network", a.SystemSummary.SystemName)
	assert.InDelta(t, 8.0, a.SystemSummary.TotalCapacityKW, 1e-12)

	var total float64
	for _, impact := range a.Impacts {
		total += impact.Total()
	}
	m := a.AggregatedMetrics
	assert.InDelta(t, total, m.TotalPotentialImpactAUD, 1e-6)
	assert.InDelta(t, total/7, m.AverageImpactPerScenario, 1e-6)
	assert.Equal(t, schemas.ScenarioFirmwareInjection, m.HighestImpactScenario.Scenario)
	assert.Equal(t, schemas.ScenarioDenialOfService, m.LowestImpactScenario.Scenario)
	assert.InDelta(t, total,
		m.CostBreakdown.Direct+m.CostBreakdown.Indirect+m.CostBreakdown.SpotPrice+m.CostBreakdown.Recovery, 1e-6)

	rw := a.RiskWeightedAnalysis
	require.Len(t, rw.TopRiskScenarios, 3)
	assert.Equal(t, []schemas.AttackScenario{
		schemas.ScenarioDenialOfService,
		schemas.ScenarioSingleInverterCompromise,
		schemas.ScenarioAPIEndpointAttack,
	}, []schemas.AttackScenario{
		rw.TopRiskScenarios[0].Scenario, rw.TopRiskScenarios[1].Scenario, rw.TopRiskScenarios[2].Scenario,
	})
	top := rw.TopRiskScenarios[0].ExpectedAnnualLoss + rw.TopRiskScenarios[1].ExpectedAnnualLoss + rw.TopRiskScenarios[2].ExpectedAnnualLoss
	assert.InDelta(t, top/rw.TotalExpectedAnnualLoss*100, rw.RiskConcentration.Top3ScenariosPercentage, 1e-9)

	assert.False(t, a.MarketAnalysis.MarketCharacteristics.PriceVolatilityHigh, "flat series has no volatility")
	assert.True(t, a.MarketAnalysis.MarketCharacteristics.HighRenewablePenetration)

	require.Len(t, a.Recommendations, 5)
	assert.Equal(t, PriorityCritical, a.Recommendations[0].Priority)
	assert.Equal(t, "Prioritize protection against Firmware Injection", a.Recommendations[1].Recommendation)
	assert.InDelta(t, total*0.6, a.Recommendations[3].EstimatedBenefit, 1e-6)
}

func TestComprehensiveAnalysisSubset(t *testing.T) {
	a, err := newCalculator(t).ComprehensiveAnalysis([]schemas.AttackScenario{schemas.ScenarioAPIEndpointAttack})
	require.NoError(t, err)

	assert.Len(t, a.Impacts, 1)
	// Below the strategic threshold there is no CRITICAL program recommendation.
	require.Len(t, a.Recommendations, 4)
	assert.Equal(t, "Threat-Specific Mitigation", a.Recommendations[0].Category)
	assert.InDelta(t, 100.0, a.RiskWeightedAnalysis.RiskConcentration.Top3ScenariosPercentage, 1e-9)

	_, err = newCalculator(t).ComprehensiveAnalysis([]schemas.AttackScenario{"NOPE"})
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestRiskWeightedWithoutLoss(t *testing.T) {
	rw := RiskWeighted(nil)
	assert.Zero(t, rw.TotalExpectedAnnualLoss)
	assert.Zero(t, rw.RiskConcentration.Top3ScenariosPercentage)
	assert.Empty(t, rw.TopRiskScenarios)
}

func TestRiskPriority(t *testing.T) {
	assert.Equal(t, PriorityCritical, RiskPriority(0.2, 400000))
	assert.Equal(t, PriorityHigh, RiskPriority(0.1, 400000))
	assert.Equal(t, PriorityMedium, RiskPriority(0.1, 100000))
	assert.Equal(t, PriorityLow, RiskPriority(0.01, 100000))
}

func TestMitigations(t *testing.T) {
	me := Mitigations()
	require.Len(t, me.MitigationMeasures, 4)

	basic := me.MitigationMeasures["basic_security_package"]
	assert.InDelta(t, 30000.0, basic.TotalCost5Years, 1e-9)
	assert.InDelta(t, 125000.0, basic.RiskReduction5Years, 1e-9)
	assert.InDelta(t, 95000.0, basic.NetBenefit5Years, 1e-9)
	assert.InDelta(t, 316.67, basic.ROIPercentage, 1e-9)
	assert.InDelta(t, 1.2, basic.PaybackPeriodYears, 1e-9)
	assert.InDelta(t, 1.67, basic.CostEffectiveness, 1e-9)

	assert.InDelta(t, 165.63, me.MitigationMeasures["comprehensive_security_program"].ROIPercentage, 1e-9)
	assert.Len(t, me.MitigationMeasures["comprehensive_security_program"].AffectedScenarios, 7)

	assert.Equal(t, []string{
		"basic_security_package",
		"network_segmentation",
		"comprehensive_security_program",
		"advanced_security_package",
	}, me.RecommendedPriority)
	require.NotNil(t, me.Summary.BestROIMeasure)
	assert.Equal(t, "basic_security_package", *me.Summary.BestROIMeasure)
	assert.Equal(t, CostRange{Minimum: 15000, Maximum: 170000}, me.Summary.TotalMitigationCostRange)
}

func TestComplexityMultiplier(t *testing.T) {
	assert.InDelta(t, 8.0, ComplexityMultiplier(ComplexityVeryHigh), 1e-12)
	assert.InDelta(t, 1.0, ComplexityMultiplier("unheard_of"), 1e-12)
}

func TestWriteCSV(t *testing.T) {
	a, err := newCalculator(t).ComprehensiveAnalysis(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.WriteCSV(&buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 8)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, "Single Inverter Compromise", rows[1][0])
	assert.Equal(t, "Api Endpoint Attack", rows[4][0])
	assert.Equal(t, "6.5", rows[4][1])
	assert.Equal(t, "0.0024", rows[4][2])
}

func TestWriteJSON(t *testing.T) {
	a, err := newCalculator(t).ComprehensiveAnalysis(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.WriteJSON(&buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{
		"scenario_analysis", "aggregated_metrics", "risk_weighted_analysis",
		"mitigation_economics", "regulatory_context", "recommendations", "market_analysis",
	} {
		assert.Contains(t, doc, key)
	}
	scenarios := doc["scenario_analysis"].(map[string]any)
	api := scenarios[string(schemas.ScenarioAPIEndpointAttack)].(map[string]any)
	assert.InDelta(t, 90821.409266208, api["total_economic_impact"], 1e-6)
	assert.NotContains(t, doc, "Impacts")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "Coordinated Grid Attack", ScenarioTitle(schemas.ScenarioCoordinatedGridAttack))

	s := FormatAUD(1234567.4)
	assert.True(t, strings.HasPrefix(s, "$"))
	assert.NotContains(t, s, ".")
	assert.Contains(t, s, "567")
}

package economic

import (
	"sort"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

const evaluationYears = 5

// MitigationMeasure is the five-year cost-benefit of one security investment.
type MitigationMeasure struct {
	Name                  string                   `json:"-"`
	Description           string                   `json:"description"`
	ImplementationCost    float64                  `json:"implementation_cost"`
	AnnualMaintenanceCost float64                  `json:"annual_maintenance_cost"`
	RiskReductionFactor   float64                  `json:"risk_reduction_factor"`
	AffectedScenarios     []schemas.AttackScenario `json:"affected_scenarios"`
	TotalCost5Years       float64                  `json:"total_cost_5_years"`
	AnnualRiskReduction   float64                  `json:"annual_risk_reduction"`
	RiskReduction5Years   float64                  `json:"risk_reduction_5_years"`
	NetBenefit5Years      float64                  `json:"net_benefit_5_years"`
	ROIPercentage         float64                  `json:"roi_percentage"`
	PaybackPeriodYears    float64                  `json:"payback_period_years"`
	CostEffectiveness     float64                  `json:"cost_effectiveness"`
}

// CostRange bounds the spend on mitigations.
type CostRange struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

// MitigationSummary names the best measure.
type MitigationSummary struct {
	BestROIMeasure           *string   `json:"best_roi_measure"`
	TotalMitigationCostRange CostRange `json:"total_mitigation_cost_range"`
}

// MitigationEconomics ranks the security investments by ROI.
type MitigationEconomics struct {
	MitigationMeasures  map[string]MitigationMeasure `json:"mitigation_measures"`
	RecommendedPriority []string                     `json:"recommended_priority"`
	Summary             MitigationSummary            `json:"summary"`
}

type measureSpec struct {
	name, description string
	implementation    float64
	maintenance       float64
	reductionFactor   float64
	annualReduction   float64
	scenarios         []schemas.AttackScenario
}

var measureCatalog = []measureSpec{
	{
		name:            "basic_security_package",
		description:     "Basic cybersecurity controls (encryption, authentication)",
		implementation:  15000,
		maintenance:     3000,
		reductionFactor: 0.4,
		annualReduction: 25000,
		scenarios: []schemas.AttackScenario{
			schemas.ScenarioSingleInverterCompromise,
			schemas.ScenarioAPIEndpointAttack,
			schemas.ScenarioDenialOfService,
		},
	},
	{
		name:            "advanced_security_package",
		description:     "Advanced security (IDS, SIEM, advanced monitoring)",
		implementation:  45000,
		maintenance:     8000,
		reductionFactor: 0.7,
		annualReduction: 45000,
		scenarios: []schemas.AttackScenario{
			schemas.ScenarioMultipleInverterAttack,
			schemas.ScenarioGatewayCompromise,
			schemas.ScenarioFirmwareInjection,
		},
	},
	{
		name:            "comprehensive_security_program",
		description:     "Full cybersecurity program with 24/7 monitoring",
		implementation:  85000,
		maintenance:     15000,
		reductionFactor: 0.85,
		annualReduction: 85000,
		scenarios:       schemas.AttackScenarios,
	},
	{
		name:            "network_segmentation",
		description:     "Network segmentation and microsegmentation",
		implementation:  25000,
		maintenance:     4000,
		reductionFactor: 0.6,
		annualReduction: 35000,
		scenarios: []schemas.AttackScenario{
			schemas.ScenarioCoordinatedGridAttack,
			schemas.ScenarioGatewayCompromise,
		},
	},
}

func evaluate(spec measureSpec) MitigationMeasure {
	total := spec.implementation + spec.maintenance*evaluationYears
	reduction := spec.annualReduction * evaluationYears
	m := MitigationMeasure{
		Name:                  spec.name,
		Description:           spec.description,
		ImplementationCost:    spec.implementation,
		AnnualMaintenanceCost: spec.maintenance,
		RiskReductionFactor:   spec.reductionFactor,
		AffectedScenarios:     append([]schemas.AttackScenario(nil), spec.scenarios...),
		TotalCost5Years:       total,
		AnnualRiskReduction:   spec.annualReduction,
		RiskReduction5Years:   reduction,
		NetBenefit5Years:      reduction - total,
	}
	if total > 0 {
		m.ROIPercentage = schemas.Round2((reduction - total) / total * 100)
	}
	if spec.annualReduction > 0 {
		m.PaybackPeriodYears = schemas.Round2(total / spec.annualReduction)
	}
	if spec.implementation > 0 {
		m.CostEffectiveness = schemas.Round2(spec.annualReduction / spec.implementation)
	}
	return m
}

// EvaluateMitigations returns every measure in catalog order.
func EvaluateMitigations() []MitigationMeasure {
	out := make([]MitigationMeasure, 0, len(measureCatalog))
	for _, spec := range measureCatalog {
		out = append(out, evaluate(spec))
	}
	return out
}

// Mitigations ranks the catalog by ROI, highest first.
func Mitigations() MitigationEconomics {
	measures := EvaluateMitigations()
	me := MitigationEconomics{MitigationMeasures: make(map[string]MitigationMeasure, len(measures))}

	minCost, sumCost := 0.0, 0.0
	for i, m := range measures {
		me.MitigationMeasures[m.Name] = m
		if i == 0 || m.ImplementationCost < minCost {
			minCost = m.ImplementationCost
		}
		sumCost += m.ImplementationCost
	}

	ranked := append([]MitigationMeasure(nil), measures...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ROIPercentage > ranked[j].ROIPercentage })
	for _, m := range ranked {
		me.RecommendedPriority = append(me.RecommendedPriority, m.Name)
	}
	if len(ranked) > 0 {
		best := ranked[0].Name
		me.Summary.BestROIMeasure = &best
	}
	me.Summary.TotalMitigationCostRange = CostRange{Minimum: minCost, Maximum: sumCost}
	return me
}

// ComplianceCost is a one-off plus recurring compliance spend.
type ComplianceCost struct {
	ImplementationCost float64 `json:"implementation_cost"`
	AnnualCost         float64 `json:"annual_cost"`
	Description        string  `json:"description"`
}

// DisconnectionCost is the cost of being disconnected from the grid.
type DisconnectionCost struct {
	ImmediateCost    float64 `json:"immediate_cost"`
	OngoingDailyCost float64 `json:"ongoing_daily_cost"`
	Description      string  `json:"description"`
}

// RegulatoryFines grades fines by violation severity.
type RegulatoryFines struct {
	MinorViolations  float64 `json:"minor_violations"`
	MajorViolations  float64 `json:"major_violations"`
	SevereViolations float64 `json:"severe_violations"`
}

// LostRevenue is the generation revenue lost while non-compliant.
type LostRevenue struct {
	DailyGenerationLoss float64 `json:"daily_generation_loss"`
	Description         string  `json:"description"`
}

// NonCompliancePenalties collects the costs of failing compliance.
type NonCompliancePenalties struct {
	GridDisconnectionCost DisconnectionCost `json:"grid_disconnection_cost"`
	RegulatoryFines       RegulatoryFines   `json:"regulatory_fines"`
	LostRevenue           LostRevenue       `json:"lost_revenue"`
}

// AnnualBenefit is a recurring benefit of being compliant.
type AnnualBenefit struct {
	AnnualValue float64 `json:"annual_value"`
	Description string  `json:"description"`
}

// RegulatoryEconomics is the fixed compliance cost/benefit context.
type RegulatoryEconomics struct {
	ComplianceCosts        map[string]ComplianceCost `json:"compliance_costs"`
	NonCompliancePenalties NonCompliancePenalties    `json:"non_compliance_penalties"`
	EconomicBenefits       map[string]AnnualBenefit  `json:"economic_benefits"`
}

// Regulatory returns the compliance economics for the SA market.
func Regulatory() RegulatoryEconomics {
	return RegulatoryEconomics{
		ComplianceCosts: map[string]ComplianceCost{
			"aemo_vpp_compliance":       {20000, 5000, "AEMO VPP API and monitoring compliance"},
			"cybersecurity_standards":   {35000, 8000, "Cybersecurity standards implementation"},
			"grid_connection_standards": {15000, 2000, "AS4777 and grid connection compliance"},
		},
		NonCompliancePenalties: NonCompliancePenalties{
			GridDisconnectionCost: DisconnectionCost{50000, 2000, "Cost of grid disconnection and reconnection"},
			RegulatoryFines:       RegulatoryFines{5000, 25000, 100000},
			LostRevenue:           LostRevenue{1200, "Lost revenue during non-compliance period"},
		},
		EconomicBenefits: map[string]AnnualBenefit{
			"vpp_participation_revenue": {8000, "Revenue from VPP participation and grid services"},
			"avoided_penalties":         {15000, "Value of avoiding regulatory penalties"},
			"insurance_benefits":        {3000, "Insurance premium reductions for compliance"},
		},
	}
}

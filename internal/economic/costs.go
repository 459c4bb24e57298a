package economic

import "github.com/xkilldash9x/solarsec-cli/api/schemas"

// Cost map keys.
const (
	CostLostGenerationRevenue = "lost_generation_revenue"
	CostEmergencyResponse     = "emergency_response_cost"
	CostEquipmentReplacement  = "equipment_replacement_cost"
	CostForensicInvestigation = "forensic_investigation_cost"
	CostLegalConsultation     = "legal_consultation_cost"

	CostReputationDamage   = "reputation_damage"
	CostRegulatoryPenalty  = "regulatory_penalties"
	CostInsuranceIncrease  = "insurance_premium_increase"
	CostProductivityLosses = "productivity_losses"
	CostCustomerConfidence = "customer_confidence_impact"

	CostTechnicalRecovery    = "technical_recovery"
	CostSecurityImprovements = "security_improvements"
	CostStaffTraining        = "staff_training"
	CostMonitoringUpgrades   = "monitoring_upgrades"
	CostConsultantFees       = "consultant_fees"

	SpotTotalMarketImpact        = "total_market_impact"
	SpotPriceIncrease            = "price_increase"
	SpotAdditionalGenerationCost = "additional_generation_cost"
)

const (
	generationRevenuePerMWh = 80.0
	capacityFactor          = 0.3
	emergencyRatePerHour    = 500.0
	replacementCostPerKW    = 1500.0
	baseRecoveryCost        = 5000.0
	securityUpgradePerKW    = 200.0
)

func directCosts(s schemas.AttackScenario, p ScenarioProfile, hours, mw float64) map[string]float64 {
	var replacement float64
	if severe(s) {
		replacement = mw * 1000 * replacementCostPerKW
	}
	return map[string]float64{
		CostLostGenerationRevenue: mw * hours * generationRevenuePerMWh * capacityFactor,
		CostEmergencyResponse:     p.DetectionHours * emergencyRatePerHour,
		CostEquipmentReplacement:  replacement,
		CostForensicInvestigation: 15000,
		CostLegalConsultation:     8000,
	}
}

func indirectCosts(s schemas.AttackScenario, hours, mw float64) map[string]float64 {
	penalty := 5000.0
	if severe(s) {
		penalty = 50000
	}
	return map[string]float64{
		CostReputationDamage:   mw * 10000,
		CostRegulatoryPenalty:  penalty,
		CostInsuranceIncrease:  mw * 2000,
		CostProductivityLosses: hours * 200,
		CostCustomerConfidence: mw * 5000,
	}
}

func recoveryCosts(p ScenarioProfile, mw float64) map[string]float64 {
	return map[string]float64{
		CostTechnicalRecovery:    baseRecoveryCost * ComplexityMultiplier(p.RecoveryComplexity),
		CostSecurityImprovements: mw * 1000 * securityUpgradePerKW,
		CostStaffTraining:        10000,
		CostMonitoringUpgrades:   25000,
		CostConsultantFees:       20000,
	}
}

// SectorImpact breaks down the outage cost borne by one sector.
type SectorImpact struct {
	Sector               schemas.EconomicSector `json:"sector"`
	EnergyCostIncrease   float64                `json:"energy_cost_increase"`
	LostRevenue          float64                `json:"lost_revenue"`
	BackupGenerationCost float64                `json:"backup_generation_cost"`
	InconvenienceCost    float64                `json:"inconvenience_cost"`
	TotalSectorImpact    float64                `json:"total_sector_impact"`
	ImpactPerMW          float64                `json:"impact_per_mw"`
}

// CalculateSectorImpact costs an outage of mw for hours at the baseline
// price. It reports false for a sector without factors.
func CalculateSectorImpact(sector schemas.EconomicSector, mw, hours, baselinePrice float64) (SectorImpact, bool) {
	f, ok := sectorTable[sector]
	if !ok {
		return SectorImpact{}, false
	}
	si := SectorImpact{
		Sector:               sector,
		EnergyCostIncrease:   mw * hours * baselinePrice * (f.energyCostIncrease - 1),
		LostRevenue:          f.lostRevenuePerMWh * mw * hours,
		BackupGenerationCost: f.backupCostPerMWh * mw * hours,
		InconvenienceCost:    f.inconveniencePerHr * hours,
	}
	si.TotalSectorImpact = si.EnergyCostIncrease + si.LostRevenue + si.BackupGenerationCost + si.InconvenienceCost
	if mw > 0 {
		si.ImpactPerMW = si.TotalSectorImpact / mw
	}
	return si, true
}

package schemas

import "time"

// -- Economic Schemas --

// AttackScenario names one of the fixed attack-scenario templates used by
// the economic model.
type AttackScenario string

const (
	ScenarioSingleInverterCompromise AttackScenario = "SINGLE_INVERTER_COMPROMISE"
	ScenarioMultipleInverterAttack   AttackScenario = "MULTIPLE_INVERTER_ATTACK"
	ScenarioGatewayCompromise        AttackScenario = "GATEWAY_COMPROMISE"
	ScenarioAPIEndpointAttack        AttackScenario = "API_ENDPOINT_ATTACK"
	ScenarioCoordinatedGridAttack    AttackScenario = "COORDINATED_GRID_ATTACK"
	ScenarioFirmwareInjection        AttackScenario = "FIRMWARE_INJECTION"
	ScenarioDenialOfService          AttackScenario = "DENIAL_OF_SERVICE"
)

// AttackScenarios lists every scenario in evaluation order.
var AttackScenarios = []AttackScenario{
	ScenarioSingleInverterCompromise,
	ScenarioMultipleInverterAttack,
	ScenarioGatewayCompromise,
	ScenarioAPIEndpointAttack,
	ScenarioCoordinatedGridAttack,
	ScenarioFirmwareInjection,
	ScenarioDenialOfService,
}

// EconomicSector is a stakeholder group affected by an outage.
type EconomicSector string

const (
	SectorResidential    EconomicSector = "RESIDENTIAL"
	SectorCommercial     EconomicSector = "COMMERCIAL"
	SectorIndustrial     EconomicSector = "INDUSTRIAL"
	SectorGridOperator   EconomicSector = "GRID_OPERATOR"
	SectorEnergyRetailer EconomicSector = "ENERGY_RETAILER"
	SectorGovernment     EconomicSector = "GOVERNMENT"
)

// EconomicSectors lists every sector in declaration order.
var EconomicSectors = []EconomicSector{
	SectorResidential,
	SectorCommercial,
	SectorIndustrial,
	SectorGridOperator,
	SectorEnergyRetailer,
	SectorGovernment,
}

// EconomicImpact is the evaluated cost of one attack scenario, in AUD.
// SectorImpacts are informational and never part of Total.
type EconomicImpact struct {
	Scenario           AttackScenario
	DurationHours      float64
	AffectedCapacityMW float64
	DirectCosts        map[string]float64
	IndirectCosts      map[string]float64
	SpotPriceImpact    map[string]float64
	SectorImpacts      map[EconomicSector]float64
	RecoveryCosts      map[string]float64
	ImpactTimestamp    time.Time
}

// Total sums the direct, indirect, spot-price and recovery cost maps.
func (e EconomicImpact) Total() float64 {
	return SumValues(e.DirectCosts) + SumValues(e.IndirectCosts) +
		SumValues(e.SpotPriceImpact) + SumValues(e.RecoveryCosts)
}

type economicWire struct {
	Scenario            AttackScenario             `json:"scenario"`
	DurationHours       float64                    `json:"duration_hours"`
	AffectedCapacityMW  float64                    `json:"affected_capacity_mw"`
	DirectCosts         map[string]float64         `json:"direct_costs"`
	IndirectCosts       map[string]float64         `json:"indirect_costs"`
	SpotPriceImpact     map[string]float64         `json:"spot_price_impact"`
	SectorImpacts       map[EconomicSector]float64 `json:"sector_impacts"`
	RecoveryCosts       map[string]float64         `json:"recovery_costs"`
	TotalEconomicImpact float64                    `json:"total_economic_impact"`
	ImpactTimestamp     time.Time                  `json:"impact_timestamp"`
}

// MarshalJSON adds total_economic_impact to the wire form.
func (e EconomicImpact) MarshalJSON() ([]byte, error) {
	return json.Marshal(economicWire{
		Scenario:            e.Scenario,
		DurationHours:       e.DurationHours,
		AffectedCapacityMW:  e.AffectedCapacityMW,
		DirectCosts:         e.DirectCosts,
		IndirectCosts:       e.IndirectCosts,
		SpotPriceImpact:     e.SpotPriceImpact,
		SectorImpacts:       e.SectorImpacts,
		RecoveryCosts:       e.RecoveryCosts,
		TotalEconomicImpact: e.Total(),
		ImpactTimestamp:     e.ImpactTimestamp,
	})
}

// UnmarshalJSON ignores any persisted total; Total recomputes it.
func (e *EconomicImpact) UnmarshalJSON(data []byte) error {
	var w economicWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = EconomicImpact{
		Scenario:           w.Scenario,
		DurationHours:      w.DurationHours,
		AffectedCapacityMW: w.AffectedCapacityMW,
		DirectCosts:        w.DirectCosts,
		IndirectCosts:      w.IndirectCosts,
		SpotPriceImpact:    w.SpotPriceImpact,
		SectorImpacts:      w.SectorImpacts,
		RecoveryCosts:      w.RecoveryCosts,
		ImpactTimestamp:    w.ImpactTimestamp,
	}
	return nil
}

// SumValues adds up every value of a cost map.
func SumValues(m map[string]float64) float64 {
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum
}

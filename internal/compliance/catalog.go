// Package compliance scores a system configuration against the South
// Australian regulatory catalog (AEMO VPP and AS4777).
package compliance

import (
	"time"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

// Requirement identifiers.
const (
	ReqRemoteAccess      = "AEMO_VPP_001"
	ReqTelemetry         = "AEMO_VPP_002"
	ReqCybersecurity     = "AEMO_VPP_003"
	ReqEmergencyResponse = "AEMO_VPP_004"
	ReqVoltageResponse   = "AS4777_001"
	ReqFrequencyResponse = "AS4777_002"
)

// Frameworks lists the frameworks that have catalog entries, in
// assessment order.
var Frameworks = []schemas.Framework{schemas.FrameworkAEMOVPP, schemas.FrameworkAS4777}

func deadline(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Catalog returns a fresh copy of every requirement, grouped by framework.
func Catalog() []schemas.ComplianceRequirement {
	return []schemas.ComplianceRequirement{
		{
			RequirementID:          ReqRemoteAccess,
			Framework:              schemas.FrameworkAEMOVPP,
			Title:                  "Mandatory Remote Access for Grid Management",
			Description:            "Solar inverters must provide remote access capability to AEMO for grid stability management",
			Mandatory:              true,
			ImplementationDeadline: deadline(2024, time.December, 31),
			ComplianceCriteria: []string{
				"API endpoint available for AEMO access",
				"Real-time status reporting implemented",
				"Remote control capability enabled",
				"Response time under 5 seconds for control commands",
			},
			VerificationMethod:      "Technical audit and testing",
			PenaltyForNonCompliance: "Disconnection from grid, financial penalties up to $10,000",
			RelatedSecurityControls: []string{"api_authentication", "secure_communications", "access_logging"},
			AffectedComponents:      []string{"api_endpoint", "communication_gateway", "solar_inverter"},
		},
		{
			RequirementID:          ReqTelemetry,
			Framework:              schemas.FrameworkAEMOVPP,
			Title:                  "Real-time Telemetry Data Provision",
			Description:            "Continuous provision of operational telemetry data to AEMO systems",
			Mandatory:              true,
			ImplementationDeadline: deadline(2024, time.December, 31),
			ComplianceCriteria: []string{
				"Telemetry data transmitted every 5 minutes maximum",
				"Data accuracy within ±2% tolerance",
				"99.5% uptime requirement for data transmission",
				"Standardized data format compliance",
			},
			VerificationMethod:      "Automated monitoring and periodic audits",
			PenaltyForNonCompliance: "Warning notices, potential grid disconnection",
			RelatedSecurityControls: []string{"data_encryption", "integrity_checking", "availability_monitoring"},
			AffectedComponents:      []string{"monitoring_system", "communication_gateway"},
		},
		{
			RequirementID: ReqCybersecurity,
			Framework:     schemas.FrameworkAEMOVPP,
			Title:         "Cybersecurity Standards Implementation",
			Description:   "Implementation of cybersecurity controls to protect grid-connected systems",
			// Recommended, not yet mandatory.
			Mandatory:              false,
			ImplementationDeadline: deadline(2025, time.June, 30),
			ComplianceCriteria: []string{
				"Encryption of all remote communications",
				"Multi-factor authentication for administrative access",
				"Regular security assessments conducted",
				"Incident response procedures documented",
			},
			VerificationMethod:      "Security audit and documentation review",
			PenaltyForNonCompliance: "Future regulatory action possible",
			RelatedSecurityControls: []string{"encryption", "authentication", "incident_response", "security_monitoring"},
			AffectedComponents:      []string{"all_components"},
		},
		{
			RequirementID:          ReqEmergencyResponse,
			Framework:              schemas.FrameworkAEMOVPP,
			Title:                  "Emergency Response Capability",
			Description:            "Ability to respond to emergency grid management commands within specified timeframes",
			Mandatory:              true,
			ImplementationDeadline: deadline(2024, time.December, 31),
			ComplianceCriteria: []string{
				"Emergency shutdown capability within 2 seconds",
				"Power output limitation response within 5 seconds",
				"Status confirmation transmitted within 10 seconds",
				"Manual override capability maintained",
			},
			VerificationMethod:      "Emergency response testing and drills",
			PenaltyForNonCompliance: "Immediate grid disconnection, regulatory investigation",
			RelatedSecurityControls: []string{"command_validation", "emergency_procedures", "system_monitoring"},
			AffectedComponents:      []string{"solar_inverter", "api_endpoint", "communication_gateway"},
		},
		{
			RequirementID:          ReqVoltageResponse,
			Framework:              schemas.FrameworkAS4777,
			Title:                  "Voltage Response Requirements",
			Description:            "Inverter must respond appropriately to voltage variations",
			Mandatory:              true,
			ImplementationDeadline: deadline(2024, time.December, 31),
			ComplianceCriteria: []string{
				"Voltage ride-through capability implemented",
				"Voltage regulation response within specified timeframes",
				"Over/under voltage protection mechanisms",
				"Voltage monitoring and reporting capability",
			},
			VerificationMethod:      "Laboratory testing and field verification",
			PenaltyForNonCompliance: "Grid connection refusal or disconnection",
			RelatedSecurityControls: []string{"voltage_monitoring", "protection_systems"},
			AffectedComponents:      []string{"solar_inverter"},
		},
		{
			RequirementID:          ReqFrequencyResponse,
			Framework:              schemas.FrameworkAS4777,
			Title:                  "Frequency Response Requirements",
			Description:            "Inverter must respond to frequency variations to support grid stability",
			Mandatory:              true,
			ImplementationDeadline: deadline(2024, time.December, 31),
			ComplianceCriteria: []string{
				"Frequency ride-through capability",
				"Over/under frequency protection",
				"Frequency response within 2 seconds",
				"Frequency monitoring accuracy ±0.01 Hz",
			},
			VerificationMethod:      "Type testing and commissioning verification",
			PenaltyForNonCompliance: "Grid connection rejection",
			RelatedSecurityControls: []string{"frequency_monitoring", "response_systems"},
			AffectedComponents:      []string{"solar_inverter"},
		},
	}
}

// RequirementsFor returns the catalog entries of one framework.
func RequirementsFor(f schemas.Framework) []schemas.ComplianceRequirement {
	var out []schemas.ComplianceRequirement
	for _, r := range Catalog() {
		if r.Framework == f {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds a requirement by id.
func Lookup(id string) (schemas.ComplianceRequirement, bool) {
	for _, r := range Catalog() {
		if r.RequirementID == id {
			return r, true
		}
	}
	return schemas.ComplianceRequirement{}, false
}

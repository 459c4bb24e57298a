package compliance

// RegulatoryContext describes the South Australian regulatory setting.
type RegulatoryContext struct {
	SouthAustraliaSpecifics SASpecifics      `json:"south_australia_specifics"`
	RegulatoryTimeline      Timeline         `json:"regulatory_timeline"`
	ComplianceRisks         []ComplianceRisk `json:"compliance_risks"`
}

// SASpecifics flags the state-level obligations.
type SASpecifics struct {
	MandatoryRemoteAccess             bool `json:"mandatory_remote_access"`
	AEMOVPPParticipationRequired      bool `json:"aemo_vpp_participation_required"`
	CybersecurityStandardsRecommended bool `json:"cybersecurity_standards_recommended"`
	GridSupportFunctionsMandatory     bool `json:"grid_support_functions_mandatory"`
}

// Timeline is the current regulatory phase and its deadlines.
type Timeline struct {
	CurrentPhase string     `json:"current_phase"`
	KeyDeadlines []Deadline `json:"key_deadlines"`
}

type Deadline struct {
	Date        string `json:"date"`
	Requirement string `json:"requirement"`
	Status      string `json:"status"`
}

type ComplianceRisk struct {
	Risk    string `json:"risk"`
	Trigger string `json:"trigger"`
	Impact  string `json:"impact"`
}

// SouthAustraliaContext returns the fixed regulatory context.
func SouthAustraliaContext() RegulatoryContext {
	return RegulatoryContext{
		SouthAustraliaSpecifics: SASpecifics{
			MandatoryRemoteAccess:             true,
			AEMOVPPParticipationRequired:      true,
			CybersecurityStandardsRecommended: true,
			GridSupportFunctionsMandatory:     true,
		},
		RegulatoryTimeline: Timeline{
			CurrentPhase: "Implementation Period",
			KeyDeadlines: []Deadline{
				{Date: "2024-12-31", Requirement: "AEMO VPP compliance mandatory", Status: "Pending"},
				{Date: "2025-06-30", Requirement: "Cybersecurity standards recommended implementation", Status: "Future"},
			},
		},
		ComplianceRisks: []ComplianceRisk{
			{
				Risk:    "Grid disconnection",
				Trigger: "Non-compliance with AEMO VPP requirements",
				Impact:  "Loss of revenue, regulatory penalties",
			},
			{
				Risk:    "Cybersecurity incident",
				Trigger: "Inadequate security controls",
				Impact:  "Grid instability, financial penalties, reputation damage",
			},
		},
	}
}

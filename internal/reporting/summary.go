package reporting

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/economic"
)

// ExecutiveSummary is the headline view across every analysis.
type ExecutiveSummary struct {
	OverallRiskLevel        schemas.RiskLevel        `json:"overall_risk_level"`
	TotalThreats            int                      `json:"total_threats"`
	CriticalThreats         int                      `json:"critical_threats"`
	HighThreats             int                      `json:"high_threats"`
	HighestRiskThreat       *string                  `json:"highest_risk_threat"`
	TotalPotentialImpactAUD float64                  `json:"total_potential_impact_aud"`
	ExpectedAnnualLossAUD   float64                  `json:"expected_annual_loss_aud"`
	HighestImpactScenario   schemas.AttackScenario   `json:"highest_impact_scenario,omitempty"`
	ComplianceStatus        schemas.ComplianceStatus `json:"compliance_status"`
	AverageComplianceScore  float64                  `json:"average_compliance_score"`
	KeyFindings             []string                 `json:"key_findings"`
}

var riskColors = map[schemas.RiskLevel]color.RGBA{
	schemas.RiskCritical: {0xff, 0x44, 0x44, 0xff},
	schemas.RiskHigh:     {0xff, 0x88, 0x00, 0xff},
	schemas.RiskMedium:   {0xff, 0xdd, 0x00, 0xff},
	schemas.RiskLow:      {0x44, 0xaa, 0x44, 0xff},
	schemas.RiskMinimal:  {0x44, 0x88, 0xcc, 0xff},
}

var neutralColor = color.RGBA{0x99, 0x99, 0x99, 0xff}

// RiskColor is the display colour of a risk level.
func RiskColor(level schemas.RiskLevel) color.RGBA {
	if c, ok := riskColors[level]; ok {
		return c
	}
	return neutralColor
}

// RiskHex is RiskColor as a CSS hex string.
func RiskHex(level schemas.RiskLevel) string {
	c := RiskColor(level)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Summarize derives the executive summary from the analysis outputs.
func Summarize(b *Bundle) ExecutiveSummary {
	s := ExecutiveSummary{
		OverallRiskLevel:        schemas.RiskMinimal,
		TotalThreats:            b.ThreatModel.SystemSummary.TotalThreats,
		TotalPotentialImpactAUD: b.Economic.AggregatedMetrics.TotalPotentialImpactAUD,
		ExpectedAnnualLossAUD:   b.Economic.RiskWeightedAnalysis.TotalExpectedAnnualLoss,
		ComplianceStatus:        b.Compliance.ComplianceSummary.OverallStatus,
		AverageComplianceScore:  b.Compliance.ComplianceSummary.AverageComplianceScore,
		KeyFindings:             []string{},
	}
	if b.Economic.AggregatedMetrics.ScenarioCount > 0 {
		s.HighestImpactScenario = b.Economic.AggregatedMetrics.HighestImpactScenario.Scenario
	}

	if m := b.Dread.RiskMetrics; m != nil {
		s.OverallRiskLevel = schemas.RiskLevelFor(m.AverageScoreStats.Mean)
		s.CriticalThreats = m.RiskLevelDistribution[schemas.RiskCritical]
		s.HighThreats = m.RiskLevelDistribution[schemas.RiskHigh]
	}
	if b.Dread.Summary != nil {
		s.HighestRiskThreat = b.Dread.Summary.HighestRiskThreat
	}

	s.KeyFindings = append(s.KeyFindings, fmt.Sprintf("%d threats identified across %d components",
		s.TotalThreats, b.ThreatModel.SystemSummary.TotalComponents))
	if s.CriticalThreats+s.HighThreats > 0 {
		s.KeyFindings = append(s.KeyFindings, fmt.Sprintf("%d critical and %d high DREAD-rated threats require attention",
			s.CriticalThreats, s.HighThreats))
	}
	if s.HighestImpactScenario != "" {
		s.KeyFindings = append(s.KeyFindings, fmt.Sprintf("%s is the costliest scenario at %s",
			economic.ScenarioTitle(s.HighestImpactScenario),
			economic.FormatAUD(b.Economic.AggregatedMetrics.HighestImpactScenario.TotalEconomicImpact)))
	}
	if s.ComplianceStatus != "" {
		s.KeyFindings = append(s.KeyFindings, fmt.Sprintf("Regulatory compliance is %s with an average score of %.1f%%",
			humanize(string(s.ComplianceStatus)), s.AverageComplianceScore))
	}
	return s
}

func humanize(tag string) string {
	return strings.ToLower(strings.ReplaceAll(tag, "_", " "))
}

// Narrative renders the summary as a short paragraph.
func (s ExecutiveSummary) Narrative(system SystemInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The %s installation (%.1f kW, %s) carries an overall %s cybersecurity risk. ",
		system.Name, system.TotalCapacityKW, system.Location, humanize(string(s.OverallRiskLevel)))
	fmt.Fprintf(&sb, "The assessment identified %d threats, of which %d are critical and %d high. ",
		s.TotalThreats, s.CriticalThreats, s.HighThreats)
	fmt.Fprintf(&sb, "Modelled attack scenarios carry a combined potential impact of %s and an expected annual loss of %s.",
		economic.FormatAUD(s.TotalPotentialImpactAUD), economic.FormatAUD(s.ExpectedAnnualLossAUD))
	return sb.String()
}

// TechnicalDetails describes the methodology and scored results.
func TechnicalDetails(b *Bundle) string {
	var sb strings.Builder
	sum := b.ThreatModel.SystemSummary
	fmt.Fprintf(&sb, "STRIDE analysis covered %d components and %d data flows, producing %d threats. ",
		sum.TotalComponents, sum.TotalDataFlows, sum.TotalThreats)
	if m := b.Dread.RiskMetrics; m != nil {
		fmt.Fprintf(&sb, "DREAD scoring rated %d threats with a mean total of %.2f (median %.2f, max %.0f). ",
			m.Count, m.TotalScoreStats.Mean, m.TotalScoreStats.Median, m.TotalScoreStats.Max)
	} else if b.Dread.Error != "" {
		sb.WriteString(b.Dread.Error + " ")
	}
	if n := len(b.Skipped); n > 0 {
		fmt.Fprintf(&sb, "%d threat records could not be scored. ", n)
	}
	fmt.Fprintf(&sb, "Economic modelling evaluated %d attack scenarios against the SA1 spot market. ",
		b.Economic.AggregatedMetrics.ScenarioCount)
	fmt.Fprintf(&sb, "Compliance checks assessed %d requirements across %d frameworks.",
		b.Compliance.ComplianceSummary.TotalRequirements, b.Compliance.ComplianceSummary.FrameworksAnalyzed)
	return sb.String()
}

// Recommendations flattens the recommendations of every analysis into
// display lines, DREAD first.
func Recommendations(b *Bundle) []string {
	var out []string
	for _, r := range b.Dread.Recommendations {
		out = append(out, fmt.Sprintf("[%s] %s: %s", r.Priority, r.Category, r.Recommendation))
	}
	for _, r := range b.Economic.Recommendations {
		out = append(out, fmt.Sprintf("[%s] %s: %s", r.Priority, r.Category, r.Recommendation))
	}
	for _, r := range b.Compliance.Recommendations {
		out = append(out, fmt.Sprintf("[%s] %s: %s", r.Priority, r.Category, strings.Join(r.Actions, "; ")))
	}
	return out
}

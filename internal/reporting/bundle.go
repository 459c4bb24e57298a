package reporting

import (
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/compliance"
	"github.com/xkilldash9x/solarsec-cli/internal/config"
	"github.com/xkilldash9x/solarsec-cli/internal/dread"
	"github.com/xkilldash9x/solarsec-cli/internal/economic"
	"github.com/xkilldash9x/solarsec-cli/internal/stride"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatCSV, FormatHTML}

// SystemInfo identifies the assessed installation.
type SystemInfo struct {
	Name            string  `json:"system_name"`
	Location        string  `json:"location"`
	TotalCapacityKW float64 `json:"total_capacity_kw"`
}

// Bundle carries every analysis output of one run to the writers.
type Bundle struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	System      SystemInfo            `json:"system"`
	Summary     ExecutiveSummary      `json:"executive_summary"`
	ThreatModel stride.Analysis       `json:"threat_model"`
	Diagram     stride.Diagram        `json:"data_flow_diagram"`
	Dread       dread.Report          `json:"dread_assessment"`
	Skipped     []dread.SkippedRecord `json:"skipped_records,omitempty"`
	Economic    economic.Analysis     `json:"economic_analysis"`
	Compliance  compliance.Report     `json:"compliance_analysis"`
}

// ReportConfiguration controls the HTML document.
type ReportConfiguration struct {
	ReportTitle             string `json:"report_title"`
	Organization            string `json:"organization"`
	Author                  string `json:"author"`
	Classification          string `json:"classification"`
	IncludeExecutiveSummary bool   `json:"include_executive_summary"`
	IncludeTechnicalDetails bool   `json:"include_technical_details"`
	IncludeVisualizations   bool   `json:"include_visualizations"`
	IncludeRecommendations  bool   `json:"include_recommendations"`
	OutputFormat            string `json:"output_format"`
}

const defaultClassification = "CONFIDENTIAL"

// DefaultConfiguration includes every section.
func DefaultConfiguration() ReportConfiguration {
	return FromConfig(config.NewDefaultConfig().Report())
}

// FromConfig maps the application report settings onto a configuration.
func FromConfig(rc config.ReportConfig) ReportConfiguration {
	classification := rc.Classification
	if classification == "" {
		classification = defaultClassification
	}
	return ReportConfiguration{
		ReportTitle:             rc.Title,
		Organization:            rc.Organization,
		Author:                  rc.Author,
		Classification:          classification,
		IncludeExecutiveSummary: rc.IncludeExecutiveSummary,
		IncludeTechnicalDetails: rc.IncludeTechnicalDetails,
		IncludeVisualizations:   rc.IncludeVisualizations,
		IncludeRecommendations:  rc.IncludeRecommendations,
		OutputFormat:            FormatHTML,
	}
}

// Scores returns the detailed DREAD scores, empty when none were produced.
func (b *Bundle) Scores() []schemas.DreadScore {
	if b.Dread.DetailedScores == nil {
		return []schemas.DreadScore{}
	}
	return b.Dread.DetailedScores
}

// Restore rebuilds the ordered views that are not part of the JSON
// encoding: impacts in scenario order and frameworks in catalog order, with
// frameworks outside the catalog appended alphabetically.
func (b *Bundle) Restore() {
	if len(b.Economic.Impacts) == 0 {
		for _, s := range schemas.AttackScenarios {
			if imp, ok := b.Economic.ScenarioAnalysis[s]; ok {
				b.Economic.Impacts = append(b.Economic.Impacts, imp)
			}
		}
	}
	if len(b.Compliance.Frameworks) == 0 {
		var extra []schemas.Framework
		for f := range b.Compliance.FrameworkResults {
			if !slices.Contains(compliance.Frameworks, f) {
				extra = append(extra, f)
			}
		}
		slices.Sort(extra)
		for _, f := range compliance.Frameworks {
			if _, ok := b.Compliance.FrameworkResults[f]; ok {
				b.Compliance.Frameworks = append(b.Compliance.Frameworks, f)
			}
		}
		b.Compliance.Frameworks = append(b.Compliance.Frameworks, extra...)
	}
}

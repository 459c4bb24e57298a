package compliance

import (
	"fmt"
	"io"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	unknownValue      = "Unknown"
	highPriorityLimit = 5
)

// Recommendation priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// FrameworkSummary aggregates one framework's assessments.
type FrameworkSummary struct {
	RequirementsCount  int                              `json:"requirements_count"`
	AverageScore       float64                          `json:"average_score"`
	StatusDistribution map[schemas.ComplianceStatus]int `json:"status_distribution"`
}

// Summary aggregates every assessment of a run.
type Summary struct {
	OverallStatus                  schemas.ComplianceStatus               `json:"overall_status"`
	FrameworksAnalyzed             int                                    `json:"frameworks_analyzed"`
	TotalRequirements              int                                    `json:"total_requirements"`
	CompliantRequirements          int                                    `json:"compliant_requirements"`
	NonCompliantRequirements       int                                    `json:"non_compliant_requirements"`
	PartiallyCompliantRequirements int                                    `json:"partially_compliant_requirements"`
	AverageComplianceScore         float64                                `json:"average_compliance_score"`
	FrameworkSummaries             map[schemas.Framework]FrameworkSummary `json:"framework_summaries"`
}

// Recommendation is a prioritized group of compliance actions.
type Recommendation struct {
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// SystemInfo identifies the assessed configuration.
type SystemInfo struct {
	Name            string `json:"name"`
	Location        string `json:"location"`
	ComponentsCount int    `json:"components_count"`
}

// Report is the compliance export.
type Report struct {
	AnalysisTimestamp time.Time                                            `json:"analysis_timestamp"`
	SystemInfo        SystemInfo                                           `json:"system_info"`
	ComplianceSummary Summary                                              `json:"compliance_summary"`
	FrameworkResults  map[schemas.Framework][]schemas.ComplianceAssessment `json:"framework_results"`
	Recommendations   []Recommendation                                     `json:"recommendations"`
	RegulatoryContext RegulatoryContext                                    `json:"regulatory_context"`

	// Frameworks is the order the frameworks were assessed in.
	Frameworks []schemas.Framework `json:"-"`
}

// AssessAll assesses cfg against frameworks, or every catalog framework
// when none are given.
func (a *Assessor) AssessAll(cfg schemas.SystemConfig, frameworks ...schemas.Framework) Report {
	if len(frameworks) == 0 {
		frameworks = Frameworks
	}
	a.log.Info("Starting regulatory compliance analysis.", zap.Int("frameworks", len(frameworks)))

	results := make(map[schemas.Framework][]schemas.ComplianceAssessment, len(frameworks))
	for _, f := range frameworks {
		a.log.Debug("Analyzing framework.", zap.String("framework", string(f)))
		results[f] = a.AssessFramework(f, cfg)
	}

	r := Report{
		AnalysisTimestamp: a.now(),
		SystemInfo: SystemInfo{
			Name:            orUnknown(cfg.SystemName),
			Location:        orUnknown(cfg.Location),
			ComponentsCount: len(cfg.Components),
		},
		ComplianceSummary: Summarize(frameworks, results),
		FrameworkResults:  results,
		Recommendations:   Recommend(frameworks, results),
		RegulatoryContext: SouthAustraliaContext(),
		Frameworks:        append([]schemas.Framework(nil), frameworks...),
	}
	a.log.Info("Regulatory compliance analysis completed.",
		zap.String("overall_status", string(r.ComplianceSummary.OverallStatus)),
		zap.Float64("average_score", r.ComplianceSummary.AverageComplianceScore))
	return r
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

func statusCounts() map[schemas.ComplianceStatus]int {
	m := make(map[schemas.ComplianceStatus]int, len(schemas.ComplianceStatuses))
	for _, s := range schemas.ComplianceStatuses {
		m[s] = 0
	}
	return m
}

// Summarize rolls assessments up per framework and overall. With no
// non-compliant items the overall status is partially compliant if any
// item is, otherwise compliant. An empty run is not applicable.
func Summarize(frameworks []schemas.Framework, results map[schemas.Framework][]schemas.ComplianceAssessment) Summary {
	s := Summary{
		FrameworksAnalyzed: len(frameworks),
		FrameworkSummaries: make(map[schemas.Framework]FrameworkSummary, len(frameworks)),
	}
	totals := statusCounts()
	var sum float64

	for _, f := range frameworks {
		assessments := results[f]
		counts := statusCounts()
		var fsum float64
		for _, a := range assessments {
			counts[a.Status]++
			totals[a.Status]++
			fsum += a.ComplianceScore
		}
		fs := FrameworkSummary{RequirementsCount: len(assessments), StatusDistribution: counts}
		if len(assessments) > 0 {
			fs.AverageScore = schemas.Round2(fsum / float64(len(assessments)))
		}
		s.FrameworkSummaries[f] = fs
		s.TotalRequirements += len(assessments)
		sum += fsum
	}

	s.CompliantRequirements = totals[schemas.StatusCompliant]
	s.NonCompliantRequirements = totals[schemas.StatusNonCompliant]
	s.PartiallyCompliantRequirements = totals[schemas.StatusPartiallyCompliant]

	switch {
	case s.TotalRequirements == 0:
		s.OverallStatus = schemas.StatusNotApplicable
		return s
	case s.NonCompliantRequirements > 0:
		s.OverallStatus = schemas.StatusNonCompliant
	case s.PartiallyCompliantRequirements > 0:
		s.OverallStatus = schemas.StatusPartiallyCompliant
	default:
		s.OverallStatus = schemas.StatusCompliant
	}
	s.AverageComplianceScore = schemas.Round2(sum / float64(s.TotalRequirements))
	return s
}

type scoredAction struct {
	action string
	score  float64
}

// Recommend groups the per-requirement recommendations: the lowest-scoring
// actions first, then standing security and improvement programs. Nothing
// is recommended when no assessment produced an action.
func Recommend(frameworks []schemas.Framework, results map[schemas.Framework][]schemas.ComplianceAssessment) []Recommendation {
	var actions []scoredAction
	for _, f := range frameworks {
		for _, a := range results[f] {
			for _, rec := range a.Recommendations {
				actions = append(actions, scoredAction{action: rec, score: a.ComplianceScore})
			}
		}
	}
	if len(actions) == 0 {
		return []Recommendation{}
	}
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].score < actions[j].score })

	immediate := make([]string, 0, highPriorityLimit)
	for _, a := range actions[:min(highPriorityLimit, len(actions))] {
		immediate = append(immediate, a.action)
	}

	return []Recommendation{
		{
			Priority:    PriorityHigh,
			Category:    "Immediate Compliance Actions",
			Description: "Address critical compliance gaps to avoid penalties",
			Actions:     immediate,
		},
		{
			Priority:    PriorityMedium,
			Category:    "Security Implementation",
			Description: "Implement cybersecurity controls for regulatory compliance",
			Actions: []string{
				"Implement encryption for all communications",
				"Deploy multi-factor authentication",
				"Establish security monitoring and logging",
				"Conduct regular security assessments",
			},
		},
		{
			Priority:    PriorityLow,
			Category:    "Continuous Improvement",
			Description: "Ongoing compliance monitoring and improvement",
			Actions: []string{
				"Establish compliance monitoring processes",
				"Regular compliance audits and assessments",
				"Staff training on regulatory requirements",
				"Compliance management system implementation",
			},
		},
	}
}

// Export writes the report as indented JSON.
func (r Report) Export(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal compliance report: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write compliance report: %w", err)
	}
	return nil
}

// Assessments flattens the framework results in assessment order.
func (r Report) Assessments() []schemas.ComplianceAssessment {
	var out []schemas.ComplianceAssessment
	for _, f := range r.Frameworks {
		out = append(out, r.FrameworkResults[f]...)
	}
	return out
}

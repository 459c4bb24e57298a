package dread

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

const (
	// NoScoresMessage is the error carried by a report built from no scores.
	NoScoresMessage = "No DREAD scores available. Run assessment first."

	reportTopN = 20
)

// Recommendation priorities.
const (
	PriorityImmediate = "IMMEDIATE"
	PriorityHigh      = "HIGH"
)

// Summary is the headline block of a DREAD report.
type Summary struct {
	TotalThreatsAssessed int     `json:"total_threats_assessed"`
	AverageRiskScore     float64 `json:"average_risk_score"`
	HighestRiskThreat    *string `json:"highest_risk_threat"`
	CriticalThreatsCount int     `json:"critical_threats_count"`
}

// ComponentRisk aggregates the scores of threats sharing an id prefix.
type ComponentRisk struct {
	Component        string                    `json:"-"`
	ThreatCount      int                       `json:"threat_count"`
	TotalRiskScore   float64                   `json:"total_risk_score"`
	AverageRiskScore float64                   `json:"average_risk_score"`
	MaxRiskScore     float64                   `json:"max_risk_score"`
	RiskDistribution map[schemas.RiskLevel]int `json:"risk_distribution"`
}

// Recommendation is one prioritized action block.
type Recommendation struct {
	Priority       string   `json:"priority"`
	Category       string   `json:"category"`
	Recommendation string   `json:"recommendation"`
	ActionItems    []string `json:"action_items"`
}

// Report is the DREAD assessment export. An empty assessment carries only
// AssessmentTimestamp and Error.
type Report struct {
	AssessmentTimestamp time.Time                `json:"assessment_timestamp"`
	Error               string                   `json:"error,omitempty"`
	Summary             *Summary                 `json:"summary,omitempty"`
	RiskMetrics         *Metrics                 `json:"risk_metrics,omitempty"`
	PrioritizedThreats  []PrioritizedThreat      `json:"prioritized_threats,omitempty"`
	PriorityMatrix      map[string][]string      `json:"priority_matrix,omitempty"`
	ComponentAnalysis   map[string]ComponentRisk `json:"component_analysis,omitempty"`
	Recommendations     []Recommendation         `json:"recommendations,omitempty"`
	DetailedScores      []schemas.DreadScore     `json:"detailed_scores,omitempty"`
}

// ReportOption customizes GenerateReport.
type ReportOption func(*reportOptions)

type reportOptions struct {
	now     func() time.Time
	weights Weights
	topN    int
}

// WithReportClock fixes the report timestamp source.
func WithReportClock(now func() time.Time) ReportOption {
	return func(o *reportOptions) { o.now = now }
}

// WithReportWeights overrides the prioritizer weights.
func WithReportWeights(w Weights) ReportOption {
	return func(o *reportOptions) { o.weights = w }
}

// WithReportTopN limits the prioritized list. Non-positive values keep the
// default of 20.
func WithReportTopN(n int) ReportOption {
	return func(o *reportOptions) {
		if n > 0 {
			o.topN = n
		}
	}
}

// GenerateReport assembles the full DREAD report for scores.
func GenerateReport(scores []schemas.DreadScore, opts ...ReportOption) Report {
	o := reportOptions{now: time.Now, weights: PrioritizerWeights, topN: reportTopN}
	for _, opt := range opts {
		opt(&o)
	}

	r := Report{AssessmentTimestamp: o.now()}
	metrics, err := CalculateMetrics(scores)
	if err != nil {
		r.Error = NoScoresMessage
		return r
	}

	ranked := NewPrioritizer(o.weights).Prioritize(scores, 0)
	components := ComponentAnalysis(scores)

	var highest *string
	if len(ranked) > 0 {
		id := ranked[0].ThreatID
		highest = &id
	}
	if len(ranked) > o.topN {
		ranked = ranked[:o.topN]
	}

	r.Summary = &Summary{
		TotalThreatsAssessed: len(scores),
		AverageRiskScore:     metrics.AverageScoreStats.Mean,
		HighestRiskThreat:    highest,
		CriticalThreatsCount: metrics.RiskLevelDistribution[schemas.RiskCritical],
	}
	r.RiskMetrics = &metrics
	r.PrioritizedThreats = ranked
	r.PriorityMatrix = PriorityMatrix(scores)
	r.ComponentAnalysis = make(map[string]ComponentRisk, len(components))
	for _, c := range components {
		r.ComponentAnalysis[c.Component] = c
	}
	r.Recommendations = recommendations(components, metrics)
	r.DetailedScores = scores
	return r
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DREAD report: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write DREAD report: %w", err)
	}
	return nil
}

// componentKey groups a threat id by the text before its first underscore.
func componentKey(threatID string) string {
	if prefix, _, ok := strings.Cut(threatID, "_"); ok {
		return prefix
	}
	return "unknown"
}

// ComponentAnalysis groups scores by threat-id prefix, in first-seen order.
func ComponentAnalysis(scores []schemas.DreadScore) []ComponentRisk {
	var out []ComponentRisk
	index := map[string]int{}
	for _, s := range scores {
		key := componentKey(s.ThreatID)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, ComponentRisk{Component: key, RiskDistribution: RiskDistribution(nil)})
		}
		c := &out[i]
		avg := s.Average()
		c.ThreatCount++
		c.TotalRiskScore += avg
		c.MaxRiskScore = max(c.MaxRiskScore, avg)
		c.RiskDistribution[s.RiskLevel()]++
	}
	for i := range out {
		out[i].AverageRiskScore = schemas.Round2(out[i].TotalRiskScore / float64(out[i].ThreatCount))
		out[i].TotalRiskScore = schemas.Round2(out[i].TotalRiskScore)
	}
	return out
}

var subScoreRecommendations = []struct {
	name string
	rec  Recommendation
}{
	{SubDamage, Recommendation{
		Priority:       PriorityHigh,
		Category:       "Impact Reduction",
		Recommendation: "Implement damage limitation controls",
		ActionItems: []string{
			"Deploy backup and recovery systems",
			"Implement fault tolerance mechanisms",
			"Establish business continuity procedures",
		},
	}},
	{SubExploitability, Recommendation{
		Priority:       PriorityHigh,
		Category:       "Exploit Prevention",
		Recommendation: "Reduce attack surface and exploitability",
		ActionItems: []string{
			"Implement defense in depth",
			"Enhance access controls",
			"Deploy intrusion detection systems",
		},
	}},
}

func recommendations(components []ComponentRisk, m Metrics) []Recommendation {
	recs := []Recommendation{}

	if critical := m.RiskLevelDistribution[schemas.RiskCritical]; critical > 0 {
		recs = append(recs, Recommendation{
			Priority:       PriorityImmediate,
			Category:       "Critical Risk Mitigation",
			Recommendation: fmt.Sprintf("Address %d critical risk threats immediately", critical),
			ActionItems: []string{
				"Establish incident response team",
				"Implement emergency security controls",
				"Conduct detailed risk assessment for critical threats",
			},
		})
	}
	if high := m.RiskLevelDistribution[schemas.RiskHigh]; high > 3 {
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       "High Risk Management",
			Recommendation: fmt.Sprintf("Develop mitigation plan for %d high-risk threats", high),
			ActionItems: []string{
				"Prioritize high-risk threats by business impact",
				"Allocate security resources accordingly",
				"Implement risk monitoring and reporting",
			},
		})
	}

	for _, c := range components {
		if c.AverageRiskScore < 7 {
			continue
		}
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       "Component Security - " + c.Component,
			Recommendation: fmt.Sprintf("Enhance security controls for %s component", c.Component),
			ActionItems: []string{
				fmt.Sprintf("Review %s security configuration", c.Component),
				fmt.Sprintf("Implement additional monitoring for %s", c.Component),
				fmt.Sprintf("Consider security architecture changes for %s", c.Component),
			},
		})
	}

	for _, sr := range subScoreRecommendations {
		if m.ComponentAnalysis[sr.name].Mean >= 7 {
			rec := sr.rec
			rec.ActionItems = append([]string(nil), sr.rec.ActionItems...)
			recs = append(recs, rec)
		}
	}
	return recs
}

// LoadThreatsFromStride reads the all_threats records of a threat-model
// export for AssessMultiple. A leading ~ is expanded to the user's home
// directory.
func LoadThreatsFromStride(path string) ([]map[string]any, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read threat model %s: %w", path, err)
	}
	var doc struct {
		AllThreats []map[string]any `json:"all_threats"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse threat model %s: %w", path, err)
	}
	if doc.AllThreats == nil {
		doc.AllThreats = []map[string]any{}
	}
	return doc.AllThreats, nil
}

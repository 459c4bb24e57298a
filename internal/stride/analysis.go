package stride

import (
	"sort"
	"time"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

const (
	topThreatLimit     = 10
	mitigationTopLimit = 15
)

// Risk-score buckets used by the threat-model analysis. These apply to
// likelihood x impact (1..25), not to DREAD averages.
const (
	BucketLow      = "LOW"
	BucketMedium   = "MEDIUM"
	BucketHigh     = "HIGH"
	BucketCritical = "CRITICAL"
)

// Analysis is the threat-model export.
type Analysis struct {
	AnalysisTimestamp         time.Time                      `json:"analysis_timestamp"`
	SystemSummary             SystemSummary                  `json:"system_summary"`
	StrideBreakdown           map[schemas.StrideCategory]int `json:"stride_breakdown"`
	RiskDistribution          map[string]int                 `json:"risk_distribution"`
	ComponentSummary          map[string]ComponentSummary    `json:"component_summary"`
	TopThreats                []schemas.Threat               `json:"top_threats"`
	AllThreats                []schemas.Threat               `json:"all_threats"`
	MitigationRecommendations []MitigationRecommendation     `json:"mitigation_recommendations"`
}

// SystemSummary counts the model's contents.
type SystemSummary struct {
	TotalComponents int `json:"total_components"`
	TotalDataFlows  int `json:"total_data_flows"`
	TotalThreats    int `json:"total_threats"`
}

// ComponentSummary aggregates the threats against one component.
type ComponentSummary struct {
	Name              string                `json:"name"`
	Type              schemas.ComponentType `json:"type"`
	ThreatCount       int                   `json:"threat_count"`
	AverageRiskScore  float64               `json:"average_risk_score"`
	HighestRiskThreat *string               `json:"highest_risk_threat"`
}

// MitigationRecommendation ranks a mitigation by how much risk it addresses.
type MitigationRecommendation struct {
	Mitigation           string   `json:"mitigation"`
	ThreatCount          int      `json:"threat_count"`
	AverageRiskReduction float64  `json:"average_risk_reduction"`
	ImpactScore          float64  `json:"impact_score"`
	AffectedThreats      []string `json:"affected_threats"`
}

// RiskBucket classifies a likelihood x impact risk score.
func RiskBucket(score int) string {
	switch {
	case score <= 5:
		return BucketLow
	case score <= 10:
		return BucketMedium
	case score <= 15:
		return BucketHigh
	default:
		return BucketCritical
	}
}

// Analyze summarizes the current threat list. It does not regenerate threats.
func (m *Model) Analyze() Analysis {
	threats := m.threats
	if threats == nil {
		threats = []schemas.Threat{}
	}

	a := Analysis{
		AnalysisTimestamp: m.now(),
		SystemSummary: SystemSummary{
			TotalComponents: len(m.components),
			TotalDataFlows:  len(m.flows),
			TotalThreats:    len(threats),
		},
		StrideBreakdown:  make(map[schemas.StrideCategory]int, len(schemas.StrideCategories)),
		RiskDistribution: map[string]int{BucketLow: 0, BucketMedium: 0, BucketHigh: 0, BucketCritical: 0},
		ComponentSummary: make(map[string]ComponentSummary, len(m.components)),
		AllThreats:       threats,
	}

	for _, c := range schemas.StrideCategories {
		a.StrideBreakdown[c] = 0
	}
	for _, t := range threats {
		a.StrideBreakdown[t.StrideCategory]++
		a.RiskDistribution[RiskBucket(t.RiskScore)]++
	}

	for _, c := range m.components {
		a.ComponentSummary[c.ID] = summarizeComponent(c, threats)
	}

	top := append([]schemas.Threat(nil), threats...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].RiskScore > top[j].RiskScore })
	if len(top) > topThreatLimit {
		top = top[:topThreatLimit]
	}
	a.TopThreats = top
	a.MitigationRecommendations = mitigationRecommendations(threats)
	return a
}

func summarizeComponent(c schemas.Component, threats []schemas.Threat) ComponentSummary {
	s := ComponentSummary{Name: c.Name, Type: c.Type}
	var (
		total   int
		highest *schemas.Threat
	)
	for i := range threats {
		t := &threats[i]
		if t.AffectedComponent != c.ID {
			continue
		}
		s.ThreatCount++
		total += t.RiskScore
		// First maximum wins.
		if highest == nil || t.RiskScore > highest.RiskScore {
			highest = t
		}
	}
	if s.ThreatCount > 0 {
		s.AverageRiskScore = schemas.Round2(float64(total) / float64(s.ThreatCount))
		title := highest.Title
		s.HighestRiskThreat = &title
	}
	return s
}

func mitigationRecommendations(threats []schemas.Threat) []MitigationRecommendation {
	type tally struct {
		count     int
		totalRisk int
		threatIDs []string
	}
	var order []string
	tallies := make(map[string]*tally)

	for _, t := range threats {
		for _, mitigation := range t.MitigationStrategies {
			tl, ok := tallies[mitigation]
			if !ok {
				tl = &tally{}
				tallies[mitigation] = tl
				order = append(order, mitigation)
			}
			tl.count++
			tl.totalRisk += t.RiskScore
			tl.threatIDs = append(tl.threatIDs, t.ID)
		}
	}

	recs := make([]MitigationRecommendation, 0, len(order))
	for _, mitigation := range order {
		tl := tallies[mitigation]
		avg := float64(tl.totalRisk) / float64(tl.count)
		recs = append(recs, MitigationRecommendation{
			Mitigation:           mitigation,
			ThreatCount:          tl.count,
			AverageRiskReduction: schemas.Round2(avg),
			ImpactScore:          schemas.Round2(float64(tl.count) * avg),
			AffectedThreats:      tl.threatIDs,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].ImpactScore > recs[j].ImpactScore })
	if len(recs) > mitigationTopLimit {
		recs = recs[:mitigationTopLimit]
	}
	return recs
}

package dread

import (
	"sort"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/config"
)

// Weights is the per-sub-score weight map. Weights need not sum to one.
type Weights struct {
	Damage          float64 `json:"damage"`
	Reproducibility float64 `json:"reproducibility"`
	Exploitability  float64 `json:"exploitability"`
	AffectedUsers   float64 `json:"affected_users"`
	Discoverability float64 `json:"discoverability"`
}

// UniformWeights weighs every sub-score equally.
var UniformWeights = Weights{0.2, 0.2, 0.2, 0.2, 0.2}

// PrioritizerWeights favour damage and exploitability.
var PrioritizerWeights = Weights{
	Damage:          0.30,
	Reproducibility: 0.15,
	Exploitability:  0.25,
	AffectedUsers:   0.20,
	Discoverability: 0.10,
}

// WeightsFromConfig converts the configured weight map.
func WeightsFromConfig(c config.WeightsConfig) Weights {
	return Weights{
		Damage:          c.Damage,
		Reproducibility: c.Reproducibility,
		Exploitability:  c.Exploitability,
		AffectedUsers:   c.AffectedUsers,
		Discoverability: c.Discoverability,
	}
}

// Scale multiplies every weight by k.
func (w Weights) Scale(k float64) Weights {
	return Weights{w.Damage * k, w.Reproducibility * k, w.Exploitability * k, w.AffectedUsers * k, w.Discoverability * k}
}

// WeightedScore is the weighted sum of the sub-scores rounded to two decimals.
func WeightedScore(s schemas.DreadScore, w Weights) float64 {
	return schemas.Round2(rawWeighted(s, w))
}

func rawWeighted(s schemas.DreadScore, w Weights) float64 {
	return float64(s.Damage)*w.Damage +
		float64(s.Reproducibility)*w.Reproducibility +
		float64(s.Exploitability)*w.Exploitability +
		float64(s.AffectedUsers)*w.AffectedUsers +
		float64(s.Discoverability)*w.Discoverability
}

// PrioritizedThreat is one entry of a weighted ranking.
type PrioritizedThreat struct {
	ThreatID      string            `json:"threat_id"`
	WeightedScore float64           `json:"weighted_score"`
	RiskLevel     schemas.RiskLevel `json:"risk_level"`
}

// Prioritizer ranks scores by weighted sum.
type Prioritizer struct {
	weights Weights
}

// NewPrioritizer creates a prioritizer with the given weights.
func NewPrioritizer(w Weights) *Prioritizer {
	return &Prioritizer{weights: w}
}

// Weights returns the weights in use.
func (p *Prioritizer) Weights() Weights { return p.weights }

// Prioritize sorts by weighted score, highest first. Ties keep their input
// order. A positive limit truncates the result.
func (p *Prioritizer) Prioritize(scores []schemas.DreadScore, limit int) []PrioritizedThreat {
	ranked := make([]PrioritizedThreat, 0, len(scores))
	for _, s := range scores {
		ranked = append(ranked, PrioritizedThreat{
			ThreatID:      s.ThreatID,
			WeightedScore: WeightedScore(s, p.weights),
			RiskLevel:     s.RiskLevel(),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WeightedScore > ranked[j].WeightedScore
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Priority matrix cells.
const (
	CellHighRiskHighExploit = "high_risk_high_exploitability"
	CellHighRiskLowExploit  = "high_risk_low_exploitability"
	CellLowRiskHighExploit  = "low_risk_high_exploitability"
	CellLowRiskLowExploit   = "low_risk_low_exploitability"
)

// MatrixCell places a score in the 2x2 risk/exploitability matrix.
func MatrixCell(s schemas.DreadScore) string {
	highRisk := float64(s.Damage+s.AffectedUsers)/2 >= 6
	highExploit := float64(s.Reproducibility+s.Exploitability)/2 >= 6
	switch {
	case highRisk && highExploit:
		return CellHighRiskHighExploit
	case highRisk:
		return CellHighRiskLowExploit
	case highExploit:
		return CellLowRiskHighExploit
	default:
		return CellLowRiskLowExploit
	}
}

// PriorityMatrix buckets every threat id into exactly one matrix cell.
func PriorityMatrix(scores []schemas.DreadScore) map[string][]string {
	matrix := map[string][]string{
		CellHighRiskHighExploit: {},
		CellHighRiskLowExploit:  {},
		CellLowRiskHighExploit:  {},
		CellLowRiskLowExploit:   {},
	}
	for _, s := range scores {
		cell := MatrixCell(s)
		matrix[cell] = append(matrix[cell], s.ThreatID)
	}
	return matrix
}

package dread

import (
	"errors"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/stats"
)

// ErrNoScores is returned when metrics are requested for an empty score set.
var ErrNoScores = errors.New("no DREAD scores provided")

// Stats describes one sample of values.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SubScoreStats describes one DREAD sub-score across a score set.
type SubScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
	Min    int     `json:"min"`
}

// Metrics aggregates a score set.
type Metrics struct {
	Count                 int                       `json:"count"`
	TotalScoreStats       Stats                     `json:"total_score_stats"`
	AverageScoreStats     Stats                     `json:"average_score_stats"`
	RiskLevelDistribution map[schemas.RiskLevel]int `json:"risk_level_distribution"`
	ComponentAnalysis     map[string]SubScoreStats  `json:"component_analysis"`
}

// Sub-score names used as component_analysis keys.
const (
	SubDamage          = "damage"
	SubReproducibility = "reproducibility"
	SubExploitability  = "exploitability"
	SubAffectedUsers   = "affected_users"
	SubDiscoverability = "discoverability"
)

// CalculateMetrics returns descriptive statistics over scores.
func CalculateMetrics(scores []schemas.DreadScore) (Metrics, error) {
	if len(scores) == 0 {
		return Metrics{}, ErrNoScores
	}

	totals := make([]float64, len(scores))
	averages := make([]float64, len(scores))
	subs := map[string][]int{}
	for i, s := range scores {
		totals[i] = float64(s.Total())
		averages[i] = s.Average()
		subs[SubDamage] = append(subs[SubDamage], s.Damage)
		subs[SubReproducibility] = append(subs[SubReproducibility], s.Reproducibility)
		subs[SubExploitability] = append(subs[SubExploitability], s.Exploitability)
		subs[SubAffectedUsers] = append(subs[SubAffectedUsers], s.AffectedUsers)
		subs[SubDiscoverability] = append(subs[SubDiscoverability], s.Discoverability)
	}

	m := Metrics{
		Count:                 len(scores),
		TotalScoreStats:       describe(totals),
		AverageScoreStats:     describe(averages),
		RiskLevelDistribution: RiskDistribution(scores),
		ComponentAnalysis:     make(map[string]SubScoreStats, len(subs)),
	}
	for name, vals := range subs {
		fs := make([]float64, len(vals))
		for i, v := range vals {
			fs[i] = float64(v)
		}
		d := describe(fs)
		m.ComponentAnalysis[name] = SubScoreStats{
			Mean:   d.Mean,
			Median: d.Median,
			Max:    int(d.Max),
			Min:    int(d.Min),
		}
	}
	return m, nil
}

// RiskDistribution counts scores per risk level. Every level is present.
func RiskDistribution(scores []schemas.DreadScore) map[schemas.RiskLevel]int {
	dist := make(map[schemas.RiskLevel]int, len(schemas.RiskLevels))
	for _, l := range schemas.RiskLevels {
		dist[l] = 0
	}
	for _, s := range scores {
		dist[s.RiskLevel()]++
	}
	return dist
}

func describe(vals []float64) Stats {
	d := stats.Describe(vals)
	return Stats{
		Mean:   schemas.Round2(d.Mean),
		Median: schemas.Round2(d.Median),
		StdDev: schemas.Round2(d.StdDev),
		Min:    d.Min,
		Max:    d.Max,
	}
}

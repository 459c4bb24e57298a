package schemas

import "math"

// -- DREAD Schemas --

// RiskLevel buckets a DREAD average score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
	RiskMinimal  RiskLevel = "MINIMAL"
)

// RiskLevels lists the buckets from most to least severe.
var RiskLevels = []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow, RiskMinimal}

// DREAD sub-scores are rated 1 to 10.
const (
	MinDread = 1
	MaxDread = 10
)

// DreadScore holds the five DREAD sub-scores of one threat. The total,
// average and risk level are methods so they can never drift from the
// sub-scores they are derived from.
type DreadScore struct {
	ThreatID        string
	Damage          int
	Reproducibility int
	Exploitability  int
	AffectedUsers   int
	Discoverability int
}

// Total is the sum of the five sub-scores.
func (d DreadScore) Total() int {
	return d.Damage + d.Reproducibility + d.Exploitability + d.AffectedUsers + d.Discoverability
}

// Average is Total divided by five.
func (d DreadScore) Average() float64 {
	return float64(d.Total()) / 5
}

// RiskLevel maps the average onto the fixed 8/6/4/2 thresholds.
func (d DreadScore) RiskLevel() RiskLevel {
	return RiskLevelFor(d.Average())
}

// RiskLevelFor buckets any 1-10 average.
func RiskLevelFor(avg float64) RiskLevel {
	switch {
	case avg >= 8:
		return RiskCritical
	case avg >= 6:
		return RiskHigh
	case avg >= 4:
		return RiskMedium
	case avg >= 2:
		return RiskLow
	default:
		return RiskMinimal
	}
}

type dreadWire struct {
	ThreatID        string    `json:"threat_id"`
	Damage          int       `json:"damage"`
	Reproducibility int       `json:"reproducibility"`
	Exploitability  int       `json:"exploitability"`
	AffectedUsers   int       `json:"affected_users"`
	Discoverability int       `json:"discoverability"`
	TotalScore      int       `json:"total_score"`
	AverageScore    float64   `json:"average_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
}

// MarshalJSON emits the sub-scores together with the derived fields.
func (d DreadScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(dreadWire{
		ThreatID:        d.ThreatID,
		Damage:          d.Damage,
		Reproducibility: d.Reproducibility,
		Exploitability:  d.Exploitability,
		AffectedUsers:   d.AffectedUsers,
		Discoverability: d.Discoverability,
		TotalScore:      d.Total(),
		AverageScore:    Round2(d.Average()),
		RiskLevel:       d.RiskLevel(),
	})
}

// UnmarshalJSON reads the sub-scores only. Persisted totals, averages and
// risk levels are discarded and recomputed on access.
func (d *DreadScore) UnmarshalJSON(data []byte) error {
	var w dreadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = DreadScore{
		ThreatID:        w.ThreatID,
		Damage:          w.Damage,
		Reproducibility: w.Reproducibility,
		Exploitability:  w.Exploitability,
		AffectedUsers:   w.AffectedUsers,
		Discoverability: w.Discoverability,
	}
	return nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package schemas

// -- Threat Schemas --

// StrideCategory is one of the six STRIDE threat classes.
type StrideCategory string

const (
	StrideSpoofing              StrideCategory = "SPOOFING"
	StrideTampering             StrideCategory = "TAMPERING"
	StrideRepudiation           StrideCategory = "REPUDIATION"
	StrideInformationDisclosure StrideCategory = "INFORMATION_DISCLOSURE"
	StrideDenialOfService       StrideCategory = "DENIAL_OF_SERVICE"
	StrideElevationOfPrivilege  StrideCategory = "ELEVATION_OF_PRIVILEGE"
)

// StrideCategories lists the categories in their canonical order.
var StrideCategories = []StrideCategory{
	StrideSpoofing,
	StrideTampering,
	StrideRepudiation,
	StrideInformationDisclosure,
	StrideDenialOfService,
	StrideElevationOfPrivilege,
}

// Valid reports whether c is a known category.
func (c StrideCategory) Valid() bool {
	for _, known := range StrideCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Likelihood and impact are both rated on a 1 to 5 scale.
const (
	MinRating = 1
	MaxRating = 5
)

// Threat is a single identified threat against a component. RiskScore is
// always Likelihood * Impact.
type Threat struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	StrideCategory       StrideCategory `json:"stride_category"`
	AffectedComponent    string         `json:"affected_component"`
	AttackVector         string         `json:"attack_vector"`
	ImpactDescription    string         `json:"impact_description"`
	Likelihood           int            `json:"likelihood"`
	Impact               int            `json:"impact"`
	RiskScore            int            `json:"risk_score"`
	MitigationStrategies []string       `json:"mitigation_strategies"`
	References           []string       `json:"references"`
}

// NewThreat clamps the ratings and derives the risk score.
func NewThreat(t Threat) Threat {
	t.Likelihood = clampRating(t.Likelihood)
	t.Impact = clampRating(t.Impact)
	if t.MitigationStrategies == nil {
		t.MitigationStrategies = []string{}
	}
	if t.References == nil {
		t.References = []string{}
	}
	t.recompute()
	return t
}

// AdjustLikelihood shifts the likelihood by delta, keeps it inside the rating
// scale and recomputes the risk score.
func (t *Threat) AdjustLikelihood(delta int) {
	t.Likelihood = clampRating(t.Likelihood + delta)
	t.recompute()
}

func (t *Threat) recompute() {
	t.RiskScore = t.Likelihood * t.Impact
}

// UnmarshalJSON decodes a threat and recomputes RiskScore from the ratings.
// A persisted risk_score is never trusted.
func (t *Threat) UnmarshalJSON(data []byte) error {
	type plain Threat
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = NewThreat(Threat(p))
	return nil
}

func clampRating(v int) int {
	if v < MinRating {
		return MinRating
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

package stride

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

// ComponentThreats instantiates every template registered for the
// component's type and lowers each likelihood for the matching declared
// controls. An unregistered type yields no threats.
func ComponentThreats(c schemas.Component) []schemas.Threat {
	tmpls := templates[c.Type]
	threats := make([]schemas.Threat, 0, len(tmpls))

	for i, tmpl := range tmpls {
		threat := schemas.NewThreat(schemas.Threat{
			ID:                   fmt.Sprintf("%s_%s_%d", c.ID, tmpl.category, i+1),
			Title:                tmpl.title,
			Description:          tmpl.description,
			StrideCategory:       tmpl.category,
			AffectedComponent:    c.ID,
			AttackVector:         tmpl.vector,
			ImpactDescription:    tmpl.impact,
			Likelihood:           tmpl.likelihood,
			Impact:               tmpl.severity,
			MitigationStrategies: append([]string(nil), tmpl.mitigations...),
		})
		threat.AdjustLikelihood(-controlReductionFor(tmpl.category, c.SecurityControls))
		threats = append(threats, threat)
	}
	return threats
}

// controlReductionFor sums the reductions of every control keyword found
// (case-insensitively, as a substring) in the declared controls.
func controlReductionFor(category schemas.StrideCategory, controls []string) int {
	total := 0
	for _, control := range controls {
		lower := strings.ToLower(control)
		for _, cr := range controlReductions {
			if strings.Contains(lower, cr.keyword) {
				total += cr.reductions[category]
			}
		}
	}
	return total
}

// DataFlowThreats emits the trust-boundary threats for each crossing flow:
// one for missing encryption and one for missing authentication.
func DataFlowThreats(flows []schemas.DataFlow) []schemas.Threat {
	var threats []schemas.Threat
	for _, f := range flows {
		if !f.CrossesTrustBoundary {
			continue
		}
		if !f.EncryptionInTransit {
			threats = append(threats, schemas.NewThreat(schemas.Threat{
				ID:                   fmt.Sprintf("dataflow_%s_encryption", f.ID),
				Title:                "Unencrypted Trust Boundary Crossing",
				Description:          fmt.Sprintf("Data flow %s crosses trust boundary without encryption", f.ID),
				StrideCategory:       schemas.StrideInformationDisclosure,
				AffectedComponent:    f.DestinationComponent,
				AttackVector:         "Network interception",
				ImpactDescription:    "Sensitive data exposure",
				Likelihood:           4,
				Impact:               3,
				MitigationStrategies: append([]string(nil), encryptionMitigations...),
			}))
		}
		if !f.AuthenticationRequired {
			threats = append(threats, schemas.NewThreat(schemas.Threat{
				ID:                   fmt.Sprintf("dataflow_%s_auth", f.ID),
				Title:                "Unauthenticated Trust Boundary Access",
				Description:          fmt.Sprintf("Data flow %s allows unauthenticated access across trust boundary", f.ID),
				StrideCategory:       schemas.StrideSpoofing,
				AffectedComponent:    f.DestinationComponent,
				AttackVector:         "Identity spoofing",
				ImpactDescription:    "Unauthorized system access",
				Likelihood:           3,
				Impact:               4,
				MitigationStrategies: append([]string(nil), authMitigations...),
			}))
		}
	}
	return threats
}

package dread

import (
	"strings"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

const baseline = 5

// rule applies delta when any keyword is found, then caps the result. A cap
// below the current score lowers it; negative rules floor at MinDread.
type rule struct {
	keywords []string
	delta    int
	cap      int
}

func (r rule) matches(text string) bool {
	for _, k := range r.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (r rule) apply(score int) int {
	score += r.delta
	if r.delta < 0 {
		return max(schemas.MinDread, score)
	}
	return min(r.cap, score)
}

// firstMatch applies the first matching rule of an if/else-if chain.
func firstMatch(score int, text string, chain ...rule) int {
	for _, r := range chain {
		if r.matches(text) {
			return r.apply(score)
		}
	}
	return score
}

func clampDread(v int) int {
	return max(schemas.MinDread, min(schemas.MaxDread, v))
}

var (
	damageSevere   = rule{[]string{"complete system", "total control", "grid disruption", "power outage"}, 4, 10}
	damageModerate = rule{[]string{"unauthorized control", "data manipulation", "service disruption"}, 2, 8}
	damageInverter = rule{[]string{"inverter"}, 1, 10}
	damageAPI      = rule{[]string{"api"}, 2, 9}

	reproEasy     = rule{[]string{"default credentials", "plaintext", "unencrypted", "automated"}, 3, 10}
	reproHard     = rule{[]string{"race condition", "timing", "specific configuration"}, -2, 0}
	reproProtocol = rule{[]string{"modbus", "mqtt", "http"}, 1, 10}

	exploitTrivial = rule{[]string{"no authentication", "default password", "public exploit", "simple attack"}, 3, 10}
	exploitEasy    = rule{[]string{"weak authentication", "known vulnerability", "basic tools"}, 1, 8}
	exploitHard    = rule{[]string{"complex attack", "requires expertise", "advanced knowledge"}, -2, 0}

	affectedWide     = rule{[]string{"grid-wide", "multiple systems", "cascading", "network-wide"}, 4, 10}
	affectedHub      = rule{[]string{"gateway", "api"}, 2, 10}
	affectedInverter = rule{[]string{"inverter"}, 1, 7}

	discoverObvious = rule{[]string{"public interface", "web interface", "default settings", "obvious"}, 3, 10}
	discoverHidden  = rule{[]string{"internal", "hidden", "undocumented", "requires access"}, -2, 0}
)

func assessDamage(description, category, component string) int {
	score := firstMatch(baseline, description, damageSevere, damageModerate)
	score = firstMatch(score, component, damageInverter, damageAPI)
	switch schemas.StrideCategory(strings.ToUpper(category)) {
	case schemas.StrideDenialOfService, schemas.StrideTampering:
		score = min(schemas.MaxDread, score+1)
	}
	return clampDread(score)
}

func assessReproducibility(description string) int {
	score := firstMatch(baseline, description, reproEasy, reproHard)
	if reproProtocol.matches(description) {
		score = reproProtocol.apply(score)
	}
	return clampDread(score)
}

func assessExploitability(description string) int {
	return clampDread(firstMatch(baseline, description, exploitTrivial, exploitEasy, exploitHard))
}

func assessAffectedUsers(description, component string) int {
	score := firstMatch(baseline, description, affectedWide)
	score = firstMatch(score, component, affectedHub, affectedInverter)
	return clampDread(score)
}

func assessDiscoverability(description string) int {
	return clampDread(firstMatch(baseline, description, discoverObvious, discoverHidden))
}

// Package dread scores threats with DREAD keyword heuristics and ranks,
// buckets and summarizes the resulting scores.
package dread

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

// Assessor computes DREAD scores. Scoring is deterministic and keeps no
// state; the logger is the only dependency.
type Assessor struct {
	log *zap.Logger
}

// NewAssessor creates an assessor that logs under "dread".
func NewAssessor(logger *zap.Logger) *Assessor {
	return &Assessor{log: logger.Named("dread")}
}

// AssessThreat scores one threat from its description, STRIDE category and
// affected component id.
func (a *Assessor) AssessThreat(id, description, category, component string) schemas.DreadScore {
	desc := strings.ToLower(description)
	comp := strings.ToLower(component)

	score := schemas.DreadScore{
		ThreatID:        id,
		Damage:          assessDamage(desc, category, comp),
		Reproducibility: assessReproducibility(desc),
		Exploitability:  assessExploitability(desc),
		AffectedUsers:   assessAffectedUsers(desc, comp),
		Discoverability: assessDiscoverability(desc),
	}
	a.log.Debug("DREAD assessment completed.",
		zap.String("threat_id", id),
		zap.Float64("average_score", score.Average()),
		zap.String("risk_level", string(score.RiskLevel())))
	return score
}

// SkippedRecord explains why a batch record was not scored.
type SkippedRecord struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// BatchResult holds the scored subset of a batch and the records skipped.
type BatchResult struct {
	Scores  []schemas.DreadScore `json:"scores"`
	Skipped []SkippedRecord      `json:"skipped"`
}

// AssessMultiple scores raw threat records such as the all_threats entries
// of a threat-model export. A malformed record is logged and skipped; it
// never aborts the batch.
func (a *Assessor) AssessMultiple(records []map[string]any) BatchResult {
	res := BatchResult{
		Scores:  make([]schemas.DreadScore, 0, len(records)),
		Skipped: []SkippedRecord{},
	}

	for i, rec := range records {
		in, err := decodeRecord(rec)
		if err != nil {
			id, _ := rec["id"].(string)
			if id == "" {
				id = "unknown"
			}
			a.log.Error("Error assessing threat; record skipped.",
				zap.Int("index", i), zap.String("threat_id", id), zap.Error(err))
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, ID: id, Reason: err.Error()})
			continue
		}
		res.Scores = append(res.Scores, a.AssessThreat(in.id, in.description, in.category, in.component))
	}

	a.log.Info("Completed DREAD assessment.",
		zap.Int("scored", len(res.Scores)),
		zap.Int("skipped", len(res.Skipped)))
	return res
}

// AssessThreats scores typed threats. Every threat is well formed, so
// nothing is skipped.
func (a *Assessor) AssessThreats(threats []schemas.Threat) []schemas.DreadScore {
	scores := make([]schemas.DreadScore, 0, len(threats))
	for _, t := range threats {
		scores = append(scores, a.AssessThreat(t.ID, t.Description, string(t.StrideCategory), t.AffectedComponent))
	}
	return scores
}

type recordInput struct {
	id, description, category, component string
}

func decodeRecord(rec map[string]any) (recordInput, error) {
	var in recordInput
	var err error
	if in.id, err = requiredString(rec, "id"); err != nil {
		return in, err
	}
	if in.id == "" {
		return in, fmt.Errorf("field %q must not be empty", "id")
	}
	if in.description, err = requiredString(rec, "description"); err != nil {
		return in, err
	}
	if in.category, err = optionalString(rec, "stride_category"); err != nil {
		return in, err
	}
	if in.component, err = optionalString(rec, "affected_component"); err != nil {
		return in, err
	}
	return in, nil
}

func requiredString(rec map[string]any, key string) (string, error) {
	v, ok := rec[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string, got %T", key, v)
	}
	return s, nil
}

func optionalString(rec map[string]any, key string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string, got %T", key, v)
	}
	return s, nil
}

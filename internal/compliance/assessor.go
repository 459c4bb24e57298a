package compliance

import (
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

// Assessor scores requirements against a system configuration.
type Assessor struct {
	log *zap.Logger
	now func() time.Time
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithClock fixes the assessment date.
func WithClock(now func() time.Time) Option {
	return func(a *Assessor) { a.now = now }
}

// NewAssessor creates an assessor.
func NewAssessor(logger *zap.Logger, opts ...Option) *Assessor {
	a := &Assessor{log: logger.Named("compliance"), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess dispatches req to its scorer. A requirement without a scorer is
// left for manual review.
func (a *Assessor) Assess(req schemas.ComplianceRequirement, cfg schemas.SystemConfig) schemas.ComplianceAssessment {
	score, ok := scorers[req.RequirementID]
	if !ok {
		a.log.Warn("No scorer for requirement; pending manual review.", zap.String("requirement_id", req.RequirementID))
		return schemas.ComplianceAssessment{
			RequirementID:   req.RequirementID,
			Status:          schemas.StatusPendingReview,
			ComplianceScore: 0,
			AssessmentDate:  a.now(),
			Evidence:        []string{},
			GapsIdentified:  []string{"Manual assessment required"},
			Recommendations: []string{"Conduct detailed compliance review"},
		}
	}

	f := score(cfg)
	value := max(0, min(100, f.score))
	assessment := schemas.ComplianceAssessment{
		RequirementID:   req.RequirementID,
		Status:          schemas.StatusForScore(value),
		ComplianceScore: value,
		AssessmentDate:  a.now(),
		Evidence:        nonNil(f.evidence),
		GapsIdentified:  nonNil(f.gaps),
		Recommendations: nonNil(f.recommendations),
		AssessorNotes:   f.notes,
	}
	a.log.Debug("Requirement assessed.",
		zap.String("requirement_id", req.RequirementID),
		zap.Float64("score", value),
		zap.String("status", string(assessment.Status)))
	return assessment
}

// AssessFramework assesses every catalog requirement of f.
func (a *Assessor) AssessFramework(f schemas.Framework, cfg schemas.SystemConfig) []schemas.ComplianceAssessment {
	reqs := RequirementsFor(f)
	out := make([]schemas.ComplianceAssessment, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, a.Assess(req, cfg))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package schemas

import "time"

// -- Compliance Schemas --

// ComplianceStatus is the outcome of assessing one requirement.
type ComplianceStatus string

const (
	StatusCompliant          ComplianceStatus = "COMPLIANT"
	StatusNonCompliant       ComplianceStatus = "NON_COMPLIANT"
	StatusPartiallyCompliant ComplianceStatus = "PARTIALLY_COMPLIANT"
	StatusNotApplicable      ComplianceStatus = "NOT_APPLICABLE"
	StatusPendingReview      ComplianceStatus = "PENDING_REVIEW"
)

// ComplianceStatuses lists every status in declaration order.
var ComplianceStatuses = []ComplianceStatus{
	StatusCompliant,
	StatusNonCompliant,
	StatusPartiallyCompliant,
	StatusNotApplicable,
	StatusPendingReview,
}

// StatusForScore maps a 0-100 score onto a status: 90 and above is
// compliant, 50 and above partially compliant.
func StatusForScore(score float64) ComplianceStatus {
	switch {
	case score >= 90:
		return StatusCompliant
	case score >= 50:
		return StatusPartiallyCompliant
	default:
		return StatusNonCompliant
	}
}

// Framework is a regulatory framework applicable to South Australian
// solar installations.
type Framework string

const (
	FrameworkAEMOVPP          Framework = "AEMO_VPP"
	FrameworkAS4777           Framework = "AS4777"
	FrameworkNER              Framework = "NER"
	FrameworkSASolarPolicy    Framework = "SA_SOLAR_POLICY"
	FrameworkCybersecurityAct Framework = "CYBERSECURITY_ACT"
)

// ComplianceRequirement is fixed catalog data.
type ComplianceRequirement struct {
	RequirementID           string     `json:"requirement_id"`
	Framework               Framework  `json:"framework"`
	Title                   string     `json:"title"`
	Description             string     `json:"description"`
	Mandatory               bool       `json:"mandatory"`
	ImplementationDeadline  *time.Time `json:"implementation_deadline,omitempty"`
	ComplianceCriteria      []string   `json:"compliance_criteria"`
	VerificationMethod      string     `json:"verification_method"`
	PenaltyForNonCompliance string     `json:"penalty_for_non_compliance"`
	RelatedSecurityControls []string   `json:"related_security_controls"`
	AffectedComponents      []string   `json:"affected_components"`
}

// ComplianceAssessment is a scored evaluation of one requirement against a
// system configuration snapshot.
type ComplianceAssessment struct {
	RequirementID   string           `json:"requirement_id"`
	Status          ComplianceStatus `json:"status"`
	ComplianceScore float64          `json:"compliance_score"`
	AssessmentDate  time.Time        `json:"assessment_date"`
	Evidence        []string         `json:"evidence"`
	GapsIdentified  []string         `json:"gaps_identified"`
	Recommendations []string         `json:"recommendations"`
	AssessorNotes   string           `json:"assessor_notes"`
}

package compliance

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/architecture"
)

var fixedNow = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func newAssessor() *Assessor {
	return NewAssessor(zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
}

// hardenedConfig satisfies every automated check.
func hardenedConfig() schemas.SystemConfig {
	return schemas.SystemConfig{
		SystemName: "Hardened Site",
		Location:   "Mawson Lakes, SA",
		Components: []schemas.ComponentConfig{
			{
				ID:                     "inverter_001",
				Type:                   "solar_inverter",
				Features:               []string{"Manual_Override"},
				SecurityControls:       []string{"firmware_signing"},
				ComplianceRequirements: map[string]any{"as4777": true},
			},
			{ID: "gateway_001", Type: "gateway", SecurityControls: []string{"TLS", "security_monitoring"}},
			{
				ID:               "api_001",
				Type:             "api",
				Name:             "VPP Dispatch API",
				APIEndpoints:     []string{"/api/v1/control", "/api/v1/Status"},
				SecurityControls: []string{"api_authentication"},
			},
		},
		DataFlows: []schemas.DataFlowConfig{
			{
				ID:                   "flow_001",
				SourceComponent:      "gateway_001",
				DestinationComponent: "api_001",
				CrossesTrustBoundary: true,
				DataTypes:            []string{"power_output", "frequency"},
				Frequency:            "real_time",
			},
		},
		NetworkTopology: schemas.NetworkTopology{
			FirewallEnabled:     true,
			NetworkSegmentation: true,
			IntrusionDetection:  true,
		},
	}
}

func scoresByID(assessments []schemas.ComplianceAssessment) map[string]float64 {
	out := make(map[string]float64, len(assessments))
	for _, a := range assessments {
		out[a.RequirementID] = a.ComplianceScore
	}
	return out
}

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 6)

	seen := map[string]bool{}
	for _, r := range catalog {
		assert.False(t, seen[r.RequirementID], "duplicate id %s", r.RequirementID)
		seen[r.RequirementID] = true
		assert.NotEmpty(t, r.ComplianceCriteria)
		require.NotNil(t, r.ImplementationDeadline)
		_, ok := scorers[r.RequirementID]
		assert.True(t, ok, "no scorer for %s", r.RequirementID)
	}

	assert.Len(t, RequirementsFor(schemas.FrameworkAEMOVPP), 4)
	assert.Len(t, RequirementsFor(schemas.FrameworkAS4777), 2)
	assert.Empty(t, RequirementsFor(schemas.FrameworkNER))

	cyber, ok := Lookup(ReqCybersecurity)
	require.True(t, ok)
	assert.False(t, cyber.Mandatory)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), *cyber.ImplementationDeadline)

	// Callers get their own copy.
	catalog[0].Title = "changed"
	first, _ := Lookup(catalog[0].RequirementID)
	assert.NotEqual(t, "changed", first.Title)
}

func TestAssessDefaultSystem(t *testing.T) {
	report := newAssessor().AssessAll(*architecture.DefaultSystemConfig())

	assert.Equal(t, map[string]float64{
		ReqRemoteAccess:      50,
		ReqTelemetry:         30,
		ReqCybersecurity:     50,
		ReqEmergencyResponse: 0,
		ReqVoltageResponse:   50,
		ReqFrequencyResponse: 50,
	}, scoresByID(report.Assessments()))

	s := report.ComplianceSummary
	assert.Equal(t, schemas.StatusNonCompliant, s.OverallStatus)
	assert.Equal(t, 2, s.FrameworksAnalyzed)
	assert.Equal(t, 6, s.TotalRequirements)
	assert.Equal(t, 0, s.CompliantRequirements)
	assert.Equal(t, 4, s.PartiallyCompliantRequirements)
	assert.Equal(t, 2, s.NonCompliantRequirements)
	assert.InDelta(t, 38.33, s.AverageComplianceScore, 1e-9)
	assert.InDelta(t, 32.5, s.FrameworkSummaries[schemas.FrameworkAEMOVPP].AverageScore, 1e-9)
	assert.Equal(t, 2, s.FrameworkSummaries[schemas.FrameworkAS4777].StatusDistribution[schemas.StatusPartiallyCompliant])
	assert.Len(t, s.FrameworkSummaries[schemas.FrameworkAS4777].StatusDistribution, len(schemas.ComplianceStatuses))

	assert.Equal(t, SystemInfo{Name: "Adelaide Solar Network", Location: "Adelaide, SA", ComponentsCount: 4}, report.SystemInfo)
	assert.Equal(t, fixedNow, report.AnalysisTimestamp)
}

func TestAssessHardenedSystem(t *testing.T) {
	report := newAssessor().AssessAll(hardenedConfig())

	assert.Equal(t, map[string]float64{
		ReqRemoteAccess:      100,
		ReqTelemetry:         100,
		ReqCybersecurity:     100,
		ReqEmergencyResponse: 100,
		ReqVoltageResponse:   90,
		ReqFrequencyResponse: 90,
	}, scoresByID(report.Assessments()))

	for _, a := range report.Assessments() {
		assert.Equal(t, schemas.StatusCompliant, a.Status, a.RequirementID)
		assert.Equal(t, fixedNow, a.AssessmentDate)
	}
	assert.Equal(t, schemas.StatusCompliant, report.ComplianceSummary.OverallStatus)
	assert.InDelta(t, 96.67, report.ComplianceSummary.AverageComplianceScore, 1e-9)
}

func TestEnumTypedComponents(t *testing.T) {
	cfg := hardenedConfig()
	enumTypes := map[string]string{
		"inverter_001": "SOLAR_INVERTER",
		"gateway_001":  "COMMUNICATION_GATEWAY",
		"api_001":      "API_ENDPOINT",
	}
	for i := range cfg.Components {
		cfg.Components[i].Type = enumTypes[cfg.Components[i].ID]
	}

	want := scoresByID(newAssessor().AssessAll(hardenedConfig()).Assessments())
	got := newAssessor().AssessAll(cfg)
	assert.Equal(t, want, scoresByID(got.Assessments()))

	r, ok := Lookup(ReqRemoteAccess)
	require.True(t, ok)
	remote := newAssessor().Assess(r, schemas.SystemConfig{Components: []schemas.ComponentConfig{{
		ID:           "api_001",
		Type:         "API_ENDPOINT",
		Name:         "AEMO VPP API",
		APIEndpoints: []string{"/control", "/status"},
	}}})
	assert.InDelta(t, 100.0, remote.ComplianceScore, 1e-9)
	assert.Equal(t, schemas.StatusCompliant, remote.Status)
}

func TestScorerDetails(t *testing.T) {
	a := newAssessor()
	req := func(id string) schemas.ComplianceRequirement {
		r, ok := Lookup(id)
		require.True(t, ok)
		return r
	}

	t.Run("remote access without api components", func(t *testing.T) {
		got := a.Assess(req(ReqRemoteAccess), schemas.SystemConfig{})
		assert.Zero(t, got.ComplianceScore)
		assert.Equal(t, schemas.StatusNonCompliant, got.Status)
		assert.Equal(t, []string{
			"No API endpoint components found",
			"No remote control capability found",
			"No status reporting capability found",
		}, got.GapsIdentified)
		assert.Empty(t, got.Evidence)
		assert.NotNil(t, got.Evidence)
		assert.Equal(t, automatedNotes, got.AssessorNotes)
	})

	t.Run("telemetry evidence lists matching data types", func(t *testing.T) {
		got := a.Assess(req(ReqTelemetry), hardenedConfig())
		assert.Contains(t, got.Evidence, "Relevant telemetry data types found: power_output")
	})

	t.Run("cybersecurity network checks are partial", func(t *testing.T) {
		cfg := hardenedConfig()
		cfg.NetworkTopology = schemas.NetworkTopology{IntrusionDetection: true}
		got := a.Assess(req(ReqCybersecurity), cfg)
		assert.InDelta(t, 84.0, got.ComplianceScore, 1e-9)
		assert.Equal(t, schemas.StatusPartiallyCompliant, got.Status)
		assert.Contains(t, got.Evidence, "Encryption implemented on 1 components")
	})

	t.Run("emergency endpoints on inverters count", func(t *testing.T) {
		cfg := schemas.SystemConfig{Components: []schemas.ComponentConfig{
			{ID: "inv", Type: "solar_inverter", APIEndpoints: []string{"/emergency/stop"}},
		}}
		got := a.Assess(req(ReqEmergencyResponse), cfg)
		assert.InDelta(t, 40.0, got.ComplianceScore, 1e-9)
	})

	t.Run("as4777 without inverters stays at baseline", func(t *testing.T) {
		got := a.Assess(req(ReqVoltageResponse), schemas.SystemConfig{})
		assert.InDelta(t, 50.0, got.ComplianceScore, 1e-9)
		assert.Equal(t, []string{"System configuration reviewed"}, got.Evidence)
	})

	t.Run("as4777 declaration must be boolean true", func(t *testing.T) {
		cfg := schemas.SystemConfig{Components: []schemas.ComponentConfig{
			{ID: "inv", Type: "solar_inverter", ComplianceRequirements: map[string]any{"as4777": "yes"}},
		}}
		got := a.Assess(req(ReqFrequencyResponse), cfg)
		assert.InDelta(t, 50.0, got.ComplianceScore, 1e-9)
		assert.Contains(t, got.Evidence, "Found 1 solar inverter(s)")
	})
}

func TestScoresStayInRange(t *testing.T) {
	cfg := hardenedConfig()
	// Duplicate every component and flow so each check has many matches.
	cfg.Components = append(cfg.Components, cfg.Components...)
	cfg.DataFlows = append(cfg.DataFlows, cfg.DataFlows...)

	for _, a := range newAssessor().AssessAll(cfg).Assessments() {
		assert.GreaterOrEqual(t, a.ComplianceScore, 0.0)
		assert.LessOrEqual(t, a.ComplianceScore, 100.0)
	}
}

func TestUnknownRequirementPendingReview(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAssessor(zap.New(core), WithClock(func() time.Time { return fixedNow }))

	got := a.Assess(schemas.ComplianceRequirement{RequirementID: "NER_999", Framework: schemas.FrameworkNER}, hardenedConfig())
	assert.Equal(t, schemas.StatusPendingReview, got.Status)
	assert.Zero(t, got.ComplianceScore)
	assert.Equal(t, []string{"Manual assessment required"}, got.GapsIdentified)
	assert.Equal(t, 1, logs.FilterField(zap.String("requirement_id", "NER_999")).Len())
}

func TestRecommendations(t *testing.T) {
	report := newAssessor().AssessAll(*architecture.DefaultSystemConfig())
	require.Len(t, report.Recommendations, 3)

	high := report.Recommendations[0]
	assert.Equal(t, PriorityHigh, high.Priority)
	assert.Equal(t, []string{
		"Implement emergency shutdown and control capabilities",
		"Implement real-time response capability",
		"Implement manual override mechanisms",
		"Implement data transmission to AEMO systems",
		"Configure telemetry data collection for required parameters",
	}, high.Actions)
	assert.Equal(t, PriorityMedium, report.Recommendations[1].Priority)
	assert.Equal(t, PriorityLow, report.Recommendations[2].Priority)

	assert.Empty(t, Recommend(nil, nil))
}

func TestFrameworkWithoutCatalog(t *testing.T) {
	report := newAssessor().AssessAll(hardenedConfig(), schemas.FrameworkNER)
	assert.Empty(t, report.Assessments())
	assert.Equal(t, schemas.StatusNotApplicable, report.ComplianceSummary.OverallStatus)
	assert.Zero(t, report.ComplianceSummary.AverageComplianceScore)
	assert.Empty(t, report.Recommendations)
}

func TestExport(t *testing.T) {
	report := newAssessor().AssessAll(schemas.SystemConfig{})
	assert.Equal(t, "Unknown", report.SystemInfo.Name)

	var buf bytes.Buffer
	require.NoError(t, report.Export(&buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"compliance_summary", "framework_results", "recommendations", "regulatory_context"} {
		assert.Contains(t, doc, key)
	}
	frameworks := doc["framework_results"].(map[string]any)
	assert.Len(t, frameworks["AEMO_VPP"], 4)
	assert.NotContains(t, doc, "Frameworks")
}

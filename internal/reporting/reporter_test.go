package reporting_test

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/architecture"
	"github.com/xkilldash9x/solarsec-cli/internal/compliance"
	"github.com/xkilldash9x/solarsec-cli/internal/config"
	"github.com/xkilldash9x/solarsec-cli/internal/dread"
	"github.com/xkilldash9x/solarsec-cli/internal/economic"
	"github.com/xkilldash9x/solarsec-cli/internal/economic/spotprice"
	"github.com/xkilldash9x/solarsec-cli/internal/reporting"
	"github.com/xkilldash9x/solarsec-cli/internal/stride"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func noon() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

var fixtureFlows = []schemas.DataFlow{
	{
		ID:                     "flow_001",
		SourceComponent:        "gateway_001",
		DestinationComponent:   "api_001",
		DataDescription:        "Aggregated telemetry",
		Protocol:               "HTTPS",
		EncryptionInTransit:    true,
		AuthenticationRequired: true,
		CrossesTrustBoundary:   true,
		TrustBoundaryCrossed:   schemas.BoundaryDMZ,
	},
	{
		ID:                   "flow_002",
		SourceComponent:      "external_client",
		DestinationComponent: "api_001",
		DataDescription:      "Dispatch commands",
		Protocol:             "HTTP",
		CrossesTrustBoundary: true,
		TrustBoundaryCrossed: schemas.BoundaryInternet,
	},
}

// fixtureBundle runs every analysis against the reference architecture
// with a flat price series and a fixed clock.
func fixtureBundle(t *testing.T) *reporting.Bundle {
	t.Helper()
	logger := zap.NewNop()
	system := architecture.DefaultSystemConfig()

	model := stride.NewModel(architecture.DefaultModel(), logger, stride.WithClock(noon))
	for _, f := range fixtureFlows {
		require.NoError(t, model.AddDataFlow(f))
	}
	threats := model.GenerateThreats()
	scores := dread.NewAssessor(logger).AssessThreats(threats)

	prices, err := spotprice.NewModelFromRecords([]spotprice.PriceRecord{
		{Timestamp: noon(), PriceAUDPerMWh: 100, Region: spotprice.Region},
		{Timestamp: noon().Add(time.Hour), PriceAUDPerMWh: 100, Region: spotprice.Region},
	}, logger)
	require.NoError(t, err)
	econ, err := economic.NewCalculator(*system, prices, logger, economic.WithClock(noon)).ComprehensiveAnalysis(nil)
	require.NoError(t, err)

	b := &reporting.Bundle{
		RunID:       "run-fixture",
		GeneratedAt: noon(),
		System: reporting.SystemInfo{
			Name:            system.SystemName,
			Location:        system.Location,
			TotalCapacityKW: system.CapacityKW(),
		},
		ThreatModel: model.Analyze(),
		Diagram:     model.DataFlowDiagram(),
		Dread:       dread.GenerateReport(scores, dread.WithReportClock(noon)),
		Economic:    econ,
		Compliance:  compliance.NewAssessor(logger, compliance.WithClock(noon)).AssessAll(*system),
	}
	b.Summary = reporting.Summarize(b)
	return b
}

// TestNew_Success_Stdout tests creating reporters writing to stdout.
func TestNew_Success_Stdout(t *testing.T) {
	for _, format := range reporting.Formats {
		t.Run(format, func(t *testing.T) {
			r, err := reporting.New(format, "stdout", reporting.DefaultConfiguration(), zap.NewNop())
			require.NoError(t, err)
			assert.NotNil(t, r)
			// Close is a no-op for the stdout wrapper.
			assert.NoError(t, r.Close())

			r, err = reporting.New(format, "", reporting.DefaultConfiguration(), nil)
			require.NoError(t, err)
			assert.NoError(t, r.Close())
		})
	}
}

// TestNew_Failure_UnsupportedFormat tests handling of unknown formats and ensures cleanup.
func TestNew_Failure_UnsupportedFormat(t *testing.T) {
	r, err := reporting.New("sarif", "stdout", reporting.DefaultConfiguration(), zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "unsupported output format: sarif")

	tmpFile := filepath.Join(t.TempDir(), "output.txt")
	r, err = reporting.New("sarif", tmpFile, reporting.DefaultConfiguration(), zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, r)

	// The file is created before the format is checked, then closed empty.
	info, err := os.Stat(tmpFile)
	require.NoError(t, err, "File should still exist after failure")
	assert.Equal(t, int64(0), info.Size())
}

func TestNew_Failure_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	_, err := reporting.New(reporting.FormatJSON, path, reporting.DefaultConfiguration(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func writeReport(t *testing.T, format string, b *reporting.Bundle, cfg reporting.ReportConfiguration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), reporting.FileName(b.RunID, format))
	r, err := reporting.New(format, path, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, r.Write(b))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestJSONReporter(t *testing.T) {
	b := fixtureBundle(t)
	out := writeReport(t, reporting.FormatJSON, b, reporting.DefaultConfiguration())

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	for _, key := range []string{
		"run_id", "generated_at", "system", "executive_summary", "threat_model",
		"data_flow_diagram", "dread_assessment", "economic_analysis", "compliance_analysis",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "run-fixture", doc["run_id"])
	assert.NotContains(t, doc, "skipped_records")

	system := doc["system"].(map[string]any)
	assert.Equal(t, "Adelaide Solar Network", system["system_name"])
}

func TestCSVReporter(t *testing.T) {
	b := fixtureBundle(t)
	out := writeReport(t, reporting.FormatCSV, b, reporting.DefaultConfiguration())

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, len(schemas.AttackScenarios)+1)
	assert.Equal(t, strings.Join(economic.CSVHeader, ","), lines[0])
}

func TestHTMLReporter(t *testing.T) {
	b := fixtureBundle(t)
	out := writeReport(t, reporting.FormatHTML, b, reporting.DefaultConfiguration())

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	for _, id := range []string{"executive-summary", "technical-details", "visualizations", "recommendations"} {
		assert.Contains(t, out, `id="`+id+`"`)
	}
	assert.Contains(t, out, "Solar Inverter Cybersecurity Assessment")
	assert.Contains(t, out, "CONFIDENTIAL")
	assert.Contains(t, out, "<svg")
	assert.Equal(t, 5, strings.Count(out, `src="data:image/png;base64,`))
	assert.Contains(t, out, "Firmware Injection")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "solar_security_report_abc.html", reporting.FileName("abc", "HTML"))
}

func TestFromConfig(t *testing.T) {
	cfg := reporting.DefaultConfiguration()
	assert.Equal(t, reporting.FormatHTML, cfg.OutputFormat)
	assert.True(t, cfg.IncludeVisualizations)
	assert.Equal(t, "CONFIDENTIAL", cfg.Classification)

	blank := reporting.FromConfig(config.ReportConfig{})
	assert.Equal(t, "CONFIDENTIAL", blank.Classification)
	assert.False(t, blank.IncludeExecutiveSummary)
}

package assessment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/config"
	"github.com/xkilldash9x/solarsec-cli/internal/economic/spotprice"
	"github.com/xkilldash9x/solarsec-cli/internal/reporting"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noon() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func flatPrices(t *testing.T) *spotprice.Model {
	t.Helper()
	m, err := spotprice.NewModelFromRecords([]spotprice.PriceRecord{
		{Timestamp: noon(), PriceAUDPerMWh: 100, Region: spotprice.Region},
		{Timestamp: noon().Add(time.Hour), PriceAUDPerMWh: 100, Region: spotprice.Region},
	}, zap.NewNop())
	require.NoError(t, err)
	return m
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("run-%d", n.Add(1)) }
}

func newRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	base := []Option{WithClock(noon), WithPriceModel(flatPrices(t)), WithIDGenerator(sequentialIDs())}
	return NewRunner(config.NewDefaultConfig(), zap.NewNop(), append(base, opts...)...)
}

func TestRunDefaultSystem(t *testing.T) {
	res, err := newRunner(t).Run(context.Background(), Input{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "Adelaide Solar Network", res.System.SystemName)

	b := res.Bundle
	require.NotNil(t, b)
	assert.Equal(t, res.RunID, b.RunID)
	assert.Equal(t, noon(), b.GeneratedAt)
	assert.InDelta(t, 8.0, b.System.TotalCapacityKW, 1e-9)
	assert.Equal(t, 4, b.ThreatModel.SystemSummary.TotalComponents)
	assert.Equal(t, len(res.Threats), b.Summary.TotalThreats)
	assert.Len(t, b.Dread.DetailedScores, len(res.Threats))
	assert.Empty(t, b.Skipped)
	assert.Equal(t, len(schemas.AttackScenarios), b.Economic.AggregatedMetrics.ScenarioCount)
	assert.Equal(t, schemas.ScenarioFirmwareInjection, b.Summary.HighestImpactScenario)
	assert.Equal(t, schemas.StatusNonCompliant, b.Compliance.ComplianceSummary.OverallStatus)
	assert.Equal(t, 2, b.Compliance.ComplianceSummary.FrameworksAnalyzed)
}

func TestRunUsesUUIDByDefault(t *testing.T) {
	r := NewRunner(config.NewDefaultConfig(), zap.NewNop(), WithClock(noon), WithPriceModel(flatPrices(t)))
	res, err := r.Run(context.Background(), Input{})
	require.NoError(t, err)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
}

func TestRunThreatRecords(t *testing.T) {
	records := []map[string]any{
		{"id": "api_001_SPOOFING_1", "description": "Credential theft enables remote attack", "stride_category": "SPOOFING"},
		{"description": "missing id"},
	}
	res, err := newRunner(t).Run(context.Background(), Input{ThreatRecords: records})
	require.NoError(t, err)

	require.Len(t, res.Bundle.Skipped, 1)
	assert.Equal(t, 1, res.Bundle.Skipped[0].Index)
	assert.Len(t, res.Bundle.Dread.DetailedScores, 1)
}

func TestRunSubsets(t *testing.T) {
	res, err := newRunner(t).Run(context.Background(), Input{
		Frameworks: []schemas.Framework{schemas.FrameworkAS4777},
		Scenarios:  []schemas.AttackScenario{schemas.ScenarioAPIEndpointAttack},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Bundle.Compliance.ComplianceSummary.FrameworksAnalyzed)
	assert.Equal(t, 1, res.Bundle.Economic.AggregatedMetrics.ScenarioCount)
}

func TestRunInvalidSystem(t *testing.T) {
	system := &schemas.SystemConfig{Components: []schemas.ComponentConfig{{Type: "solar_inverter"}}}
	_, err := newRunner(t).Run(context.Background(), Input{System: system})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build system model")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(t).Run(ctx, Input{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMissingConfigFallsBack(t *testing.T) {
	res, err := newRunner(t).Run(context.Background(), Input{ConfigPath: filepath.Join(t.TempDir(), "absent.json")})
	require.NoError(t, err)
	assert.Equal(t, "Adelaide Solar Network", res.System.SystemName)
}

func TestRunMany(t *testing.T) {
	inputs := make([]Input, 6)
	for i := range inputs {
		system := &schemas.SystemConfig{
			SystemName: fmt.Sprintf("Site %d", i),
			Components: []schemas.ComponentConfig{{ID: "inverter_001", Type: "solar_inverter"}},
		}
		inputs[i] = Input{System: system}
	}

	results, err := newRunner(t).RunMany(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	ids := map[string]bool{}
	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, fmt.Sprintf("Site %d", i), res.System.SystemName)
		ids[res.RunID] = true
	}
	assert.Len(t, ids, len(inputs))
}

func TestRunManyFailure(t *testing.T) {
	inputs := []Input{
		{},
		{System: &schemas.SystemConfig{Components: []schemas.ComponentConfig{{}}}},
	}
	_, err := newRunner(t).RunMany(context.Background(), inputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 1")
}

func TestSeededPriceModelIsReproducible(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SetAssessmentPriceSeed(42)

	total := func() float64 {
		r := NewRunner(cfg, zap.NewNop(), WithClock(noon))
		res, err := r.Run(context.Background(), Input{})
		require.NoError(t, err)
		return res.Bundle.Economic.AggregatedMetrics.TotalPotentialImpactAUD
	}
	assert.Equal(t, total(), total())
}

func TestWriteArtifacts(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(context.Background(), Input{})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := r.WriteArtifacts(context.Background(), res, dir, []string{"JSON", "html", "csv", "json"})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, reporting.FileName(res.RunID, "json")),
		filepath.Join(dir, reporting.FileName(res.RunID, "html")),
		filepath.Join(dir, reporting.FileName(res.RunID, "csv")),
	}, paths)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}
}

func TestWriteArtifactsDefaults(t *testing.T) {
	cfg := config.NewDefaultConfig()
	dir := t.TempDir()
	cfg.SetAssessmentOutputDir(dir)
	cfg.SetAssessmentFormats([]string{"json"})

	r := NewRunner(cfg, zap.NewNop(), WithClock(noon), WithPriceModel(flatPrices(t)), WithIDGenerator(sequentialIDs()))
	res, err := r.Run(context.Background(), Input{})
	require.NoError(t, err)

	paths, err := r.WriteArtifacts(context.Background(), res, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "solar_security_report_run-1.json")}, paths)
}

func TestWriteArtifactsUnsupportedFormat(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(context.Background(), Input{})
	require.NoError(t, err)

	_, err = r.WriteArtifacts(context.Background(), res, t.TempDir(), []string{"pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: pdf")
}

func TestFrameworksFromConfig(t *testing.T) {
	assert.Equal(t,
		[]schemas.Framework{schemas.FrameworkAEMOVPP, schemas.FrameworkAS4777},
		FrameworksFromConfig([]string{"aemo_vpp", " ", "AS4777"}))
	assert.Nil(t, FrameworksFromConfig(nil))
}

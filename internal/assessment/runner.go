// Package assessment runs the complete analysis pipeline for one or more
// system configurations and writes the resulting reports.
package assessment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

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

// Input describes one run.
type Input struct {
	// ConfigPath is a system configuration document. Empty falls back to
	// assessment.system_config and then to the default system.
	ConfigPath string
	// System, when set, is used instead of loading ConfigPath.
	System *schemas.SystemConfig
	// ThreatRecords, when set, are scored in place of the generated threats.
	ThreatRecords []map[string]any
	Frameworks    []schemas.Framework
	Scenarios     []schemas.AttackScenario
}

// Result is the output of one run.
type Result struct {
	RunID   string
	System  schemas.SystemConfig
	Threats []schemas.Threat
	Bundle  *reporting.Bundle
}

// Runner executes assessment runs. It is safe for concurrent use.
type Runner struct {
	cfg   config.Interface
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	pricesOnce sync.Once
	prices     *spotprice.Model
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock fixes the clock used for every timestamp of a run.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithPriceModel supplies the spot-price model instead of building one from
// the assessment settings.
func WithPriceModel(m *spotprice.Model) Option {
	return func(r *Runner) { r.prices = m }
}

// WithIDGenerator replaces the uuid run id generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Runner) { r.newID = gen }
}

// NewRunner creates a runner for the given configuration.
func NewRunner(cfg config.Interface, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		log:   logger.Named("assessment"),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// priceModel builds the shared spot-price model on first use.
func (r *Runner) priceModel() *spotprice.Model {
	r.pricesOnce.Do(func() {
		if r.prices != nil {
			return
		}
		ac := r.cfg.Assessment()
		opts := []spotprice.Option{spotprice.WithLogger(r.log)}
		if ac.PriceSeed != 0 {
			opts = append(opts, spotprice.WithSeed(ac.PriceSeed))
		}
		if ac.HistoricalPrices != "" {
			opts = append(opts, spotprice.WithHistoricalFile(ac.HistoricalPrices))
		}
		r.prices = spotprice.NewModel(opts...)
	})
	return r.prices
}

// FrameworksFromConfig parses configured framework names. Blank entries are
// dropped.
func FrameworksFromConfig(names []string) []schemas.Framework {
	var out []schemas.Framework
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, schemas.Framework(strings.ToUpper(n)))
		}
	}
	return out
}

func (r *Runner) system(in Input, log *zap.Logger) *schemas.SystemConfig {
	if in.System != nil {
		return in.System
	}
	path := in.ConfigPath
	if path == "" {
		path = r.cfg.Assessment().SystemConfig
	}
	return architecture.LoadOrDefault(path, log)
}

// Run executes the pipeline for one system: model build, threat
// generation, DREAD scoring and prioritization, economic analysis and
// compliance assessment.
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := r.newID()
	log := r.log.With(zap.String("run_id", id))

	system := r.system(in, log)
	arch, err := architecture.Build(system)
	if err != nil {
		return nil, fmt.Errorf("failed to build system model: %w", err)
	}
	log.Info("Starting assessment run.",
		zap.String("system", system.SystemName),
		zap.Int("components", len(arch.Components)),
		zap.Int("data_flows", len(arch.DataFlows)))

	model := stride.NewModel(arch, log, stride.WithClock(r.now))
	threats := model.GenerateThreats()

	assessor := dread.NewAssessor(log)
	var scores []schemas.DreadScore
	var skipped []dread.SkippedRecord
	if in.ThreatRecords != nil {
		batch := assessor.AssessMultiple(in.ThreatRecords)
		scores, skipped = batch.Scores, batch.Skipped
	} else {
		scores = assessor.AssessThreats(threats)
	}
	dc := r.cfg.Dread()
	dreadReport := dread.GenerateReport(scores,
		dread.WithReportClock(r.now),
		dread.WithReportWeights(dread.WeightsFromConfig(dc.Weights)),
		dread.WithReportTopN(dc.TopN))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	econ, err := economic.NewCalculator(*system, r.priceModel(), log, economic.WithClock(r.now)).
		ComprehensiveAnalysis(in.Scenarios)
	if err != nil {
		return nil, fmt.Errorf("economic analysis failed: %w", err)
	}

	frameworks := in.Frameworks
	if len(frameworks) == 0 {
		frameworks = FrameworksFromConfig(r.cfg.Assessment().Frameworks)
	}
	comp := compliance.NewAssessor(log, compliance.WithClock(r.now)).AssessAll(*system, frameworks...)

	b := &reporting.Bundle{
		RunID:       id,
		GeneratedAt: r.now(),
		System: reporting.SystemInfo{
			Name:            system.SystemName,
			Location:        system.Location,
			TotalCapacityKW: system.CapacityKW(),
		},
		ThreatModel: model.Analyze(),
		Diagram:     model.DataFlowDiagram(),
		Dread:       dreadReport,
		Skipped:     skipped,
		Economic:    econ,
		Compliance:  comp,
	}
	b.Summary = reporting.Summarize(b)

	log.Info("Assessment run completed.",
		zap.String("overall_risk", string(b.Summary.OverallRiskLevel)),
		zap.Int("threats", b.Summary.TotalThreats),
		zap.String("compliance", string(b.Summary.ComplianceStatus)))
	return &Result{RunID: id, System: *system, Threats: threats, Bundle: b}, nil
}

// RunMany executes independent runs in parallel, at most
// assessment.max_parallel_runs at a time. Results keep the input order. The
// first failure cancels the remaining runs.
func (r *Runner) RunMany(ctx context.Context, inputs []Input) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Assessment().MaxParallelRuns))

	for i, in := range inputs {
		g.Go(func() error {
			res, err := r.Run(gctx, in)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func normalizeFormats(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	var out []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// WriteArtifacts writes one report per format into dir concurrently and
// returns the written paths in format order. Empty dir and formats fall back
// to the assessment settings.
func (r *Runner) WriteArtifacts(ctx context.Context, res *Result, dir string, formats []string) ([]string, error) {
	ac := r.cfg.Assessment()
	if dir == "" {
		dir = ac.OutputDir
	}
	if len(formats) == 0 {
		formats = ac.Formats
	}
	formats = normalizeFormats(formats)

	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand output directory %q: %w", dir, err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", expanded, err)
	}

	reportCfg := reporting.FromConfig(r.cfg.Report())
	paths := make([]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(expanded, reporting.FileName(res.RunID, format))
			rep, err := reporting.New(format, path, reportCfg, r.log)
			if err != nil {
				return err
			}
			if err := rep.Write(res.Bundle); err != nil {
				_ = rep.Close()
				return err
			}
			if err := rep.Close(); err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Info("Report artifacts written.", zap.String("run_id", res.RunID), zap.Strings("paths", paths))
	return paths, nil
}

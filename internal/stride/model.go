// Package stride generates STRIDE threats for a component/data-flow model
// and summarizes them into a threat-model analysis.
package stride

import (
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/architecture"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Model holds the components, flows and threats of one analysis run. It is
// owned by a single caller and is not safe for concurrent use.
type Model struct {
	components []schemas.Component
	flows      []schemas.DataFlow
	threats    []schemas.Threat
	log        *zap.Logger
	now        func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the clock used for analysis timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// NewModel seeds a threat model with an architecture.
func NewModel(arch architecture.Model, logger *zap.Logger, opts ...Option) *Model {
	m := &Model{
		components: append([]schemas.Component(nil), arch.Components...),
		flows:      append([]schemas.DataFlow(nil), arch.DataFlows...),
		log:        logger.Named("stride"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddComponent appends a component to the model.
func (m *Model) AddComponent(c schemas.Component) { m.components = append(m.components, c) }

// AddDataFlow validates and appends a data flow.
func (m *Model) AddDataFlow(f schemas.DataFlow) error {
	flow, err := schemas.NewDataFlow(f)
	if err != nil {
		return err
	}
	m.flows = append(m.flows, flow)
	return nil
}

// Components returns the modelled components.
func (m *Model) Components() []schemas.Component { return m.components }

// DataFlows returns the modelled flows.
func (m *Model) DataFlows() []schemas.DataFlow { return m.flows }

// Threats returns the threats from the last GenerateThreats call.
func (m *Model) Threats() []schemas.Threat { return m.threats }

// GenerateThreats discards previous results and regenerates the threat
// list: component threats in component order, then data-flow threats.
func (m *Model) GenerateThreats() []schemas.Threat {
	m.log.Info("Starting STRIDE threat analysis.",
		zap.Int("components", len(m.components)),
		zap.Int("data_flows", len(m.flows)))

	m.threats = make([]schemas.Threat, 0, len(m.components)*4)
	for _, c := range m.components {
		found := ComponentThreats(c)
		m.log.Debug("Analyzed component.",
			zap.String("component", c.ID),
			zap.String("type", string(c.Type)),
			zap.Int("threats", len(found)))
		m.threats = append(m.threats, found...)
	}
	m.threats = append(m.threats, DataFlowThreats(m.flows)...)

	m.log.Info("STRIDE analysis completed.", zap.Int("threats", len(m.threats)))
	return m.threats
}

// Export runs the analysis and writes it as indented JSON.
func (m *Model) Export(w io.Writer) error {
	if m.threats == nil {
		m.GenerateThreats()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m.Analyze())
}

package stride

import "github.com/xkilldash9x/solarsec-cli/api/schemas"

// Diagram is a data-flow diagram of the model, suitable for rendering.
type Diagram struct {
	Nodes           []DiagramNode           `json:"nodes"`
	Edges           []DiagramEdge           `json:"edges"`
	TrustBoundaries []schemas.TrustBoundary `json:"trust_boundaries"`
}

// DiagramNode is one component.
type DiagramNode struct {
	ID            string                `json:"id"`
	Label         string                `json:"label"`
	Type          schemas.ComponentType `json:"type"`
	TrustBoundary schemas.TrustBoundary `json:"trust_boundary"`
	ThreatCount   int                   `json:"threat_count"`
}

// DiagramEdge is one data flow. Endpoints may name pseudo-nodes such as
// external_client that are not components.
type DiagramEdge struct {
	Source               string `json:"source"`
	Target               string `json:"target"`
	Label                string `json:"label"`
	Protocol             string `json:"protocol"`
	Encrypted            bool   `json:"encrypted"`
	CrossesTrustBoundary bool   `json:"crosses_trust_boundary"`
}

// DataFlowDiagram describes the model as nodes and edges, annotated with
// the threat count of each component.
func (m *Model) DataFlowDiagram() Diagram {
	counts := make(map[string]int)
	for _, t := range m.threats {
		counts[t.AffectedComponent]++
	}

	d := Diagram{
		Nodes:           make([]DiagramNode, 0, len(m.components)),
		Edges:           make([]DiagramEdge, 0, len(m.flows)),
		TrustBoundaries: append([]schemas.TrustBoundary(nil), schemas.TrustBoundaries...),
	}
	for _, c := range m.components {
		d.Nodes = append(d.Nodes, DiagramNode{
			ID:            c.ID,
			Label:         c.Name,
			Type:          c.Type,
			TrustBoundary: c.TrustBoundary,
			ThreatCount:   counts[c.ID],
		})
	}
	for _, f := range m.flows {
		d.Edges = append(d.Edges, DiagramEdge{
			Source:               f.SourceComponent,
			Target:               f.DestinationComponent,
			Label:                f.DataDescription,
			Protocol:             f.Protocol,
			Encrypted:            f.EncryptionInTransit,
			CrossesTrustBoundary: f.CrossesTrustBoundary,
		})
	}
	return d
}

package schemas

import "slices"

// -- System Configuration Schemas --

// SystemConfig is the input document describing an installation. It is
// loaded from JSON or YAML and never mutated by the analyses.
type SystemConfig struct {
	SystemName      string            `json:"system_name" yaml:"system_name"`
	Location        string            `json:"location" yaml:"location"`
	TotalCapacityKW float64           `json:"total_capacity_kw" yaml:"total_capacity_kw"`
	Components      []ComponentConfig `json:"components" yaml:"components"`
	DataFlows       []DataFlowConfig  `json:"data_flows,omitempty" yaml:"data_flows,omitempty"`
	NetworkTopology NetworkTopology   `json:"network_topology" yaml:"network_topology"`
}

// ComponentConfig describes one configured component.
type ComponentConfig struct {
	ID                     string         `json:"id" yaml:"id"`
	Type                   string         `json:"type" yaml:"type"`
	Name                   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description            string         `json:"description,omitempty" yaml:"description,omitempty"`
	Manufacturer           string         `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Model                  string         `json:"model,omitempty" yaml:"model,omitempty"`
	CapacityKW             *float64       `json:"capacity_kw,omitempty" yaml:"capacity_kw,omitempty"`
	APIEndpoints           []string       `json:"api_endpoints,omitempty" yaml:"api_endpoints,omitempty"`
	Protocols              []string       `json:"protocols,omitempty" yaml:"protocols,omitempty"`
	SecurityControls       []string       `json:"security_controls,omitempty" yaml:"security_controls,omitempty"`
	Features               []string       `json:"features,omitempty" yaml:"features,omitempty"`
	DataTypes              []string       `json:"data_types,omitempty" yaml:"data_types,omitempty"`
	ProcessesData          []string       `json:"processes_data,omitempty" yaml:"processes_data,omitempty"`
	StoresData             []string       `json:"stores_data,omitempty" yaml:"stores_data,omitempty"`
	ExternalDependencies   []string       `json:"external_dependencies,omitempty" yaml:"external_dependencies,omitempty"`
	InternetFacing         bool           `json:"internet_facing,omitempty" yaml:"internet_facing,omitempty"`
	ComplianceRequirements map[string]any `json:"compliance_requirements,omitempty" yaml:"compliance_requirements,omitempty"`
}

// ComponentType parses the configured type.
func (c ComponentConfig) ComponentType() ComponentType {
	return ParseComponentType(c.Type)
}

// Declares reports whether the component's compliance_requirements marks
// key as satisfied with a boolean true.
func (c ComponentConfig) Declares(key string) bool {
	v, ok := c.ComplianceRequirements[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// DataFlowConfig is an explicitly configured data flow.
type DataFlowConfig struct {
	ID                     string   `json:"id" yaml:"id"`
	SourceComponent        string   `json:"source_component" yaml:"source_component"`
	DestinationComponent   string   `json:"destination_component" yaml:"destination_component"`
	DataDescription        string   `json:"data_description,omitempty" yaml:"data_description,omitempty"`
	Protocol               string   `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	EncryptionInTransit    bool     `json:"encryption_in_transit,omitempty" yaml:"encryption_in_transit,omitempty"`
	AuthenticationRequired bool     `json:"authentication_required,omitempty" yaml:"authentication_required,omitempty"`
	CrossesTrustBoundary   bool     `json:"crosses_trust_boundary,omitempty" yaml:"crosses_trust_boundary,omitempty"`
	TrustBoundaryCrossed   string   `json:"trust_boundary_crossed,omitempty" yaml:"trust_boundary_crossed,omitempty"`
	DataTypes              []string `json:"data_types,omitempty" yaml:"data_types,omitempty"`
	Frequency              string   `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// NetworkTopology carries the perimeter controls declared for the site.
type NetworkTopology struct {
	FirewallEnabled     bool `json:"firewall_enabled,omitempty" yaml:"firewall_enabled,omitempty"`
	NetworkSegmentation bool `json:"network_segmentation,omitempty" yaml:"network_segmentation,omitempty"`
	IntrusionDetection  bool `json:"intrusion_detection,omitempty" yaml:"intrusion_detection,omitempty"`
}

// CapacityKW sums the declared component capacities. When no component
// declares one, the document-level total is used instead.
func (s SystemConfig) CapacityKW() float64 {
	var (
		sum      float64
		declared bool
	)
	for _, c := range s.Components {
		if c.CapacityKW != nil {
			sum += *c.CapacityKW
			declared = true
		}
	}
	if !declared {
		return s.TotalCapacityKW
	}
	return sum
}

// ComponentsOfType returns the configured components whose parsed type is
// one of types, in configuration order.
func (s SystemConfig) ComponentsOfType(types ...ComponentType) []ComponentConfig {
	var out []ComponentConfig
	for _, c := range s.Components {
		if slices.Contains(types, c.ComponentType()) {
			out = append(out, c)
		}
	}
	return out
}

// Package architecture builds the component and data-flow model of a solar
// installation from its configuration document.
package architecture

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

// Pseudo-nodes used as endpoints of derived flows.
const (
	ExternalClient   = "external_client"
	MonitoringSystem = "monitoring_system"
)

// Model is the static architecture of one system: nodes and directed edges.
type Model struct {
	Components []schemas.Component
	DataFlows  []schemas.DataFlow
}

// BoundaryFor places a configured component in a trust zone.
func BoundaryFor(c schemas.ComponentConfig) schemas.TrustBoundary {
	if c.InternetFacing {
		return schemas.BoundaryInternet
	}
	switch c.ComponentType() {
	case schemas.ComponentAPIEndpoint:
		return schemas.BoundaryDMZ
	case schemas.ComponentSolarInverter, schemas.ComponentCommunicationGateway:
		return schemas.BoundaryDeviceNetwork
	default:
		return schemas.BoundaryInternalNetwork
	}
}

func parseBoundary(raw string) (schemas.TrustBoundary, error) {
	if raw == "" {
		return "", nil
	}
	b := schemas.TrustBoundary(strings.ToUpper(raw))
	for _, known := range schemas.TrustBoundaries {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown trust boundary %q", raw)
}

// Build turns a configuration document into a Model. Components keep their
// configured order; derived flows come first, explicit data_flows after.
func Build(cfg *schemas.SystemConfig) (Model, error) {
	var m Model
	m.Components = make([]schemas.Component, 0, len(cfg.Components))

	for i, cc := range cfg.Components {
		if cc.ID == "" {
			return Model{}, fmt.Errorf("component %d: id is required", i)
		}
		name := cc.Name
		if name == "" {
			name = cc.ID
		}
		m.Components = append(m.Components, schemas.Component{
			ID:                   cc.ID,
			Name:                 name,
			Type:                 cc.ComponentType(),
			Description:          cc.Description,
			TrustBoundary:        BoundaryFor(cc),
			ProcessesData:        orEmpty(cc.ProcessesData),
			StoresData:           orEmpty(cc.StoresData),
			ExternalDependencies: orEmpty(cc.ExternalDependencies),
			SecurityControls:     orEmpty(cc.SecurityControls),
		})
	}

	for _, cc := range cfg.Components {
		for _, endpoint := range cc.APIEndpoints {
			m.DataFlows = append(m.DataFlows, schemas.DataFlow{
				ID:                     fmt.Sprintf("flow_%s_api_%d", cc.ID, len(m.DataFlows)),
				SourceComponent:        ExternalClient,
				DestinationComponent:   cc.ID,
				DataDescription:        "API requests to " + endpoint,
				Protocol:               "HTTPS",
				EncryptionInTransit:    true,
				AuthenticationRequired: true,
				CrossesTrustBoundary:   true,
				TrustBoundaryCrossed:   schemas.BoundaryInternet,
			})
		}
		for _, proto := range cc.Protocols {
			lower := strings.ToLower(proto)
			if lower != "modbus" && lower != "mqtt" {
				continue
			}
			m.DataFlows = append(m.DataFlows, schemas.DataFlow{
				ID:                   fmt.Sprintf("flow_%s_%s_%d", cc.ID, proto, len(m.DataFlows)),
				SourceComponent:      cc.ID,
				DestinationComponent: MonitoringSystem,
				DataDescription:      strings.ToUpper(proto) + " telemetry data",
				Protocol:             strings.ToUpper(proto),
				EncryptionInTransit:  lower == "mqtt",
			})
		}
	}

	for _, fc := range cfg.DataFlows {
		boundary, err := parseBoundary(fc.TrustBoundaryCrossed)
		if err != nil {
			return Model{}, fmt.Errorf("flow %s: %w", fc.ID, err)
		}
		flow, err := schemas.NewDataFlow(schemas.DataFlow{
			ID:                     fc.ID,
			SourceComponent:        fc.SourceComponent,
			DestinationComponent:   fc.DestinationComponent,
			DataDescription:        fc.DataDescription,
			Protocol:               fc.Protocol,
			EncryptionInTransit:    fc.EncryptionInTransit,
			AuthenticationRequired: fc.AuthenticationRequired,
			CrossesTrustBoundary:   fc.CrossesTrustBoundary,
			TrustBoundaryCrossed:   boundary,
		})
		if err != nil {
			return Model{}, err
		}
		m.DataFlows = append(m.DataFlows, flow)
	}
	return m, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}

// DefaultModel is DefaultSystemConfig built into a Model. It has no data
// flows.
func DefaultModel() Model {
	m, err := Build(DefaultSystemConfig())
	if err != nil {
		panic(fmt.Sprintf("architecture: default system config: %v", err))
	}
	return m
}

func kw(v float64) *float64 { return &v }

// DefaultSystemConfig is the built-in "Adelaide Solar Network": two
// inverters totalling 8 kW behind a gateway and the AEMO VPP API.
func DefaultSystemConfig() *schemas.SystemConfig {
	return &schemas.SystemConfig{
		SystemName:      "Adelaide Solar Network",
		Location:        "Adelaide, SA",
		TotalCapacityKW: 8.0,
		Components: []schemas.ComponentConfig{
			{
				ID:               "inverter_001",
				Type:             "solar_inverter",
				Name:             "Solar Inverter SG5KTL",
				Description:      "Primary solar inverter converting DC to AC power",
				CapacityKW:       kw(5.0),
				ProcessesData:    []string{"power_generation_data", "control_commands"},
				StoresData:       []string{"configuration_data", "operational_logs"},
				SecurityControls: []string{"basic_authentication"},
			},
			{
				ID:               "inverter_002",
				Type:             "solar_inverter",
				Name:             "Solar Inverter SG3KTL",
				Description:      "Secondary solar inverter converting DC to AC power",
				CapacityKW:       kw(3.0),
				ProcessesData:    []string{"power_generation_data", "control_commands"},
				StoresData:       []string{"configuration_data", "operational_logs"},
				SecurityControls: []string{"basic_authentication"},
			},
			{
				ID:               "gateway_001",
				Type:             "gateway",
				Name:             "IoT Communication Gateway",
				Description:      "Gateway for aggregating and forwarding inverter data",
				ProcessesData:    []string{"aggregated_telemetry", "control_commands"},
				SecurityControls: []string{"encryption", "authentication"},
			},
			{
				ID:               "api_001",
				Type:             "api",
				Name:             "AEMO VPP API Endpoint",
				Description:      "API endpoint for AEMO Virtual Power Plant integration",
				ProcessesData:    []string{"control_commands", "status_data"},
				SecurityControls: []string{"https", "api_authentication", "rate_limiting"},
			},
		},
	}
}

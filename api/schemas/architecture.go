package schemas

import (
	"errors"
	"fmt"
	"strings"
)

// -- Architecture Schemas --

// ComponentType enumerates the kinds of node found in a solar inverter
// deployment's architecture.
type ComponentType string

const (
	ComponentSolarInverter         ComponentType = "SOLAR_INVERTER"
	ComponentCommunicationGateway  ComponentType = "COMMUNICATION_GATEWAY"
	ComponentMonitoringSystem      ComponentType = "MONITORING_SYSTEM"
	ComponentAPIEndpoint           ComponentType = "API_ENDPOINT"
	ComponentDatabase              ComponentType = "DATABASE"
	ComponentWebInterface          ComponentType = "WEB_INTERFACE"
	ComponentNetworkInfrastructure ComponentType = "NETWORK_INFRASTRUCTURE"
	ComponentExternalService       ComponentType = "EXTERNAL_SERVICE"
	// ComponentUnknown marks a configured type with no known mapping. No
	// threat templates exist for it.
	ComponentUnknown ComponentType = "UNKNOWN"
)

// ComponentTypes lists the recognised component types in declaration order.
var ComponentTypes = []ComponentType{
	ComponentSolarInverter,
	ComponentCommunicationGateway,
	ComponentMonitoringSystem,
	ComponentAPIEndpoint,
	ComponentDatabase,
	ComponentWebInterface,
	ComponentNetworkInfrastructure,
	ComponentExternalService,
}

var componentTypeAliases = map[string]ComponentType{
	"solar_inverter": ComponentSolarInverter,
	"gateway":        ComponentCommunicationGateway,
	"api":            ComponentAPIEndpoint,
	"database":       ComponentDatabase,
	"web_interface":  ComponentWebInterface,
	"monitoring":     ComponentMonitoringSystem,
	"network":        ComponentNetworkInfrastructure,
	"external":       ComponentExternalService,
}

// ParseComponentType maps a configured type onto a ComponentType. Both the
// short configuration aliases and the enum values are accepted, in any case.
// Anything else is ComponentUnknown.
func ParseComponentType(raw string) ComponentType {
	if t, ok := componentTypeAliases[strings.ToLower(raw)]; ok {
		return t
	}
	upper := ComponentType(strings.ToUpper(raw))
	for _, t := range ComponentTypes {
		if t == upper {
			return t
		}
	}
	return ComponentUnknown
}

// TrustBoundary labels a network zone.
type TrustBoundary string

const (
	BoundaryInternet          TrustBoundary = "INTERNET"
	BoundaryDMZ               TrustBoundary = "DMZ"
	BoundaryInternalNetwork   TrustBoundary = "INTERNAL_NETWORK"
	BoundaryDeviceNetwork     TrustBoundary = "DEVICE_NETWORK"
	BoundaryManagementNetwork TrustBoundary = "MANAGEMENT_NETWORK"
)

// TrustBoundaries lists every zone in declaration order.
var TrustBoundaries = []TrustBoundary{
	BoundaryInternet,
	BoundaryDMZ,
	BoundaryInternalNetwork,
	BoundaryDeviceNetwork,
	BoundaryManagementNetwork,
}

// Component is a device or service in the analysed system. It is built once
// from configuration and treated as read-only afterwards.
type Component struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Type                 ComponentType `json:"component_type"`
	Description          string        `json:"description"`
	TrustBoundary        TrustBoundary `json:"trust_boundary"`
	ProcessesData        []string      `json:"processes_data"`
	StoresData           []string      `json:"stores_data"`
	ExternalDependencies []string      `json:"external_dependencies"`
	SecurityControls     []string      `json:"security_controls"`
}

// ErrMissingBoundaryLabel is returned when a data flow claims to cross a
// trust boundary without naming it.
var ErrMissingBoundaryLabel = errors.New("data flow crosses a trust boundary but does not name it")

// DataFlow is a directed edge between two components.
type DataFlow struct {
	ID                     string        `json:"id"`
	SourceComponent        string        `json:"source_component"`
	DestinationComponent   string        `json:"destination_component"`
	DataDescription        string        `json:"data_description"`
	Protocol               string        `json:"protocol"`
	EncryptionInTransit    bool          `json:"encryption_in_transit"`
	AuthenticationRequired bool          `json:"authentication_required"`
	CrossesTrustBoundary   bool          `json:"crosses_trust_boundary"`
	TrustBoundaryCrossed   TrustBoundary `json:"trust_boundary_crossed,omitempty"`
}

// NewDataFlow validates and returns a data flow. A flow that crosses a trust
// boundary must name the boundary it crosses.
func NewDataFlow(f DataFlow) (DataFlow, error) {
	if f.ID == "" {
		return DataFlow{}, errors.New("data flow id is required")
	}
	if f.CrossesTrustBoundary && f.TrustBoundaryCrossed == "" {
		return DataFlow{}, fmt.Errorf("flow %s: %w", f.ID, ErrMissingBoundaryLabel)
	}
	if !f.CrossesTrustBoundary {
		f.TrustBoundaryCrossed = ""
	}
	return f, nil
}

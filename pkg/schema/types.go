// Package schema handles loading and validating push command definitions.
//
// A schema file maps each command name to the table it reads, the entity it
// pushes, and the rules used to turn a table row into a controller request.
package schema

import "sort"

// EntityType identifies the controller object class a command pushes.
// Row derivation rules are selected by entity type.
type EntityType string

const (
	EntityTenant       EntityType = "tenant"
	EntityVRF          EntityType = "vrf"
	EntityAppProfile   EntityType = "anp"
	EntityBridgeDomain EntityType = "bd"
	EntityBDSubnet     EntityType = "bd_subnet"
	EntityEPG          EntityType = "epg"
	EntityEPGDomain    EntityType = "epg_domain"
)

var knownEntityTypes = map[EntityType]bool{
	EntityTenant:       true,
	EntityVRF:          true,
	EntityAppProfile:   true,
	EntityBridgeDomain: true,
	EntityBDSubnet:     true,
	EntityEPG:          true,
	EntityEPGDomain:    true,
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	return knownEntityTypes[t]
}

// DerivedFields lists the fields computed from other row fields for this
// entity type. They are available to templates alongside table columns.
func (t EntityType) DerivedFields() []string {
	switch t {
	case EntityBDSubnet:
		return []string{"scope"}
	}
	return nil
}

// File represents a schema file (launcher.json / launcher.yaml).
type File struct {
	Version  string                  `json:"version" yaml:"version"`
	Commands map[string]*CommandSpec `json:"commands" yaml:"commands"`
}

// CommandSpec is the on-disk definition of one push command.
type CommandSpec struct {
	Table       string            `json:"table" yaml:"table"`
	Worksheet   string            `json:"worksheet,omitempty" yaml:"worksheet,omitempty"`
	EntityType  string            `json:"entity_type" yaml:"entity_type"`
	Mandatory   []string          `json:"mandatory" yaml:"mandatory"`
	Defaults    map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Optional    []string          `json:"optional,omitempty" yaml:"optional,omitempty"`
	Template    string            `json:"template" yaml:"template"`
	Path        string            `json:"path" yaml:"path"`
	StatusField string            `json:"status_field,omitempty" yaml:"status_field,omitempty"`
	ActionMsg   string            `json:"action_msg,omitempty" yaml:"action_msg,omitempty"`
}

// EntitySchema is the resolved, immutable definition of one command.
type EntitySchema struct {
	Command         string
	EntityType      EntityType
	Table           string
	Worksheet       string
	MandatoryFields []string
	DefaultValues   map[string]string
	OptionalFields  []string
	TemplateName    string
	PathTemplate    string
	StatusField     string
	ActionMessage   string

	// PayloadTemplate is the decoded JSON template. Treat as read-only.
	PayloadTemplate interface{}
}


// KnownFields returns every field the schema names: mandatory, defaulted,
// optional and derived, sorted and de-duplicated.
func (s *EntitySchema) KnownFields() []string {
	seen := make(map[string]bool)
	for _, f := range s.MandatoryFields {
		seen[f] = true
	}
	for f := range s.DefaultValues {
		seen[f] = true
	}
	for _, f := range s.OptionalFields {
		seen[f] = true
	}
	for _, f := range s.EntityType.DerivedFields() {
		seen[f] = true
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

package schema

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/newtron-network/acipush/pkg/util"
)

// Helper to create a schema directory with a launcher file and templates
func createTestSchemaDir(t *testing.T, launcherName, launcher string, templates map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, launcherName), []byte(launcher), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", launcherName, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0755); err != nil {
		t.Fatalf("Failed to create templates dir: %v", err)
	}
	for name, body := range templates {
		if err := os.WriteFile(filepath.Join(dir, "templates", name+".json"), []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write template %s: %v", name, err)
		}
	}
	return filepath.Join(dir, launcherName)
}

const tenantTemplate = `{"fvTenant": {"attributes": {"name": "{{tn_name}}", "descr": "{{description}}", "status": "{{action}}"}}}`

func TestLoadDefault(t *testing.T) {
	r, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}

	want := []string{
		"push_anp", "push_bd", "push_bd_subnet", "push_epg",
		"push_epg_domain", "push_tenant", "push_vrf",
	}
	if got := r.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Commands() = %v, want %v", got, want)
	}

	subnet, err := r.Lookup("push_bd_subnet")
	if err != nil {
		t.Fatalf("Lookup(push_bd_subnet) failed: %v", err)
	}
	if subnet.EntityType != EntityBDSubnet {
		t.Errorf("EntityType = %s, want %s", subnet.EntityType, EntityBDSubnet)
	}
	if subnet.Table != "TABLE_BD_SUBNET" {
		t.Errorf("Table = %s", subnet.Table)
	}
	if subnet.DefaultValues["shared_between_vrfs"] != "false" {
		t.Errorf("shared_between_vrfs default = %q, want false", subnet.DefaultValues["shared_between_vrfs"])
	}
	if _, ok := subnet.PayloadTemplate.(map[string]interface{}); !ok {
		t.Errorf("PayloadTemplate should be a decoded JSON object, got %T", subnet.PayloadTemplate)
	}
}

func TestLoadDefault_ChildStatusTextPreserved(t *testing.T) {
	r, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}

	bd, _ := r.Lookup("push_bd")
	child := bd.PayloadTemplate.(map[string]interface{})["fvBD"].(map[string]interface{})["children"].([]interface{})[0]
	status := child.(map[string]interface{})["fvRsCtx"].(map[string]interface{})["attributes"].(map[string]interface{})["status"]
	if status != "created,modified" {
		t.Errorf("fvRsCtx status = %v, want created,modified", status)
	}

	epg, _ := r.Lookup("push_epg")
	child = epg.PayloadTemplate.(map[string]interface{})["fvAEPg"].(map[string]interface{})["children"].([]interface{})[0]
	status = child.(map[string]interface{})["fvRsBd"].(map[string]interface{})["attributes"].(map[string]interface{})["status"]
	if status != "created" {
		t.Errorf("fvRsBd status = %v, want created", status)
	}
}

func TestLookupUnknown(t *testing.T) {
	r, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}

	_, err = r.Lookup("push_widget")
	if err == nil {
		t.Fatal("Lookup of unknown command should fail")
	}
	if !errors.Is(err, util.ErrUnknownCommand) {
		t.Errorf("error should wrap ErrUnknownCommand: %v", err)
	}
	var schemaErr *util.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("error should be a *SchemaError, got %T", err)
	}
}

func TestLoadJSON(t *testing.T) {
	launcher := `{
		"version": "1.0",
		"commands": {
			"push_tenant": {
				"table": "TABLE_TENANT",
				"entity_type": "tenant",
				"mandatory": ["tn_name"],
				"defaults": {"action": "created", "description": ""},
				"template": "tenant",
				"path": "mo/uni/tn-{{tn_name}}",
				"status_field": "status_cell",
				"action_msg": "Tenants pushed"
			}
		}
	}`
	path := createTestSchemaDir(t, "launcher.json", launcher, map[string]string{"tenant": tenantTemplate})

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	s, err := r.Lookup("push_tenant")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if s.StatusField != "status_cell" {
		t.Errorf("StatusField = %q", s.StatusField)
	}
	if s.ActionMessage != "Tenants pushed" {
		t.Errorf("ActionMessage = %q", s.ActionMessage)
	}
	if !reflect.DeepEqual(s.MandatoryFields, []string{"tn_name"}) {
		t.Errorf("MandatoryFields = %v", s.MandatoryFields)
	}
	if got := r.Tables(); !reflect.DeepEqual(got, []string{"TABLE_TENANT"}) {
		t.Errorf("Tables() = %v", got)
	}
}

func TestLoadYAML(t *testing.T) {
	launcher := `
commands:
  push_tenant:
    table: TABLE_TENANT
    entity_type: tenant
    mandatory: [tn_name]
    defaults:
      action: created
      description: ""
      archived: false
    template: tenant
    path: "mo/uni/tn-{{tn_name}}"
`
	path := createTestSchemaDir(t, "launcher.yaml", launcher, map[string]string{"tenant": tenantTemplate})

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	s, _ := r.Lookup("push_tenant")
	if s.DefaultValues["archived"] != "false" {
		t.Errorf("unquoted YAML bool default should load as string, got %q", s.DefaultValues["archived"])
	}
	if s.ActionMessage != "push_tenant" {
		t.Errorf("ActionMessage should fall back to command name, got %q", s.ActionMessage)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name      string
		launcher  string
		templates map[string]string
		wantErr   string
	}{
		{
			name:     "malformed schema file",
			launcher: `{"commands": `,
			wantErr:  "parsing schema file",
		},
		{
			name:     "no commands",
			launcher: `{"commands": {}}`,
			wantErr:  "defines no commands",
		},
		{
			name:      "missing table",
			launcher:  `{"commands": {"c": {"entity_type": "tenant", "template": "tenant", "path": "x"}}}`,
			templates: map[string]string{"tenant": tenantTemplate},
			wantErr:   "has no table",
		},
		{
			name:      "unknown entity type",
			launcher:  `{"commands": {"c": {"table": "T", "entity_type": "widget", "template": "tenant", "path": "x"}}}`,
			templates: map[string]string{"tenant": tenantTemplate},
			wantErr:   "unknown entity type",
		},
		{
			name:      "mandatory with default",
			launcher:  `{"commands": {"c": {"table": "T", "entity_type": "tenant", "template": "tenant", "path": "x", "mandatory": ["tn_name"], "defaults": {"tn_name": "x"}}}}`,
			templates: map[string]string{"tenant": tenantTemplate},
			wantErr:   "mandatory and also has a default",
		},
		{
			name:     "missing template",
			launcher: `{"commands": {"c": {"table": "T", "entity_type": "tenant", "template": "tenant", "path": "x"}}}`,
			wantErr:  "loading template tenant",
		},
		{
			name:      "template not JSON",
			launcher:  `{"commands": {"c": {"table": "T", "entity_type": "tenant", "template": "tenant", "path": "x"}}}`,
			templates: map[string]string{"tenant": `{"fvTenant": {{tn_name}}}`},
			wantErr:   "not valid JSON",
		},
		{
			name:      "template not object",
			launcher:  `{"commands": {"c": {"table": "T", "entity_type": "tenant", "template": "tenant", "path": "x"}}}`,
			templates: map[string]string{"tenant": `["{{tn_name}}"]`},
			wantErr:   "must be a JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestSchemaDir(t, "launcher.json", tt.launcher, tt.templates)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			var schemaErr *util.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Errorf("error should be a *SchemaError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Load() of missing file should fail")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestKnownFields(t *testing.T) {
	s := &EntitySchema{
		EntityType:      EntityBDSubnet,
		MandatoryFields: []string{"tn_name", "subnet"},
		DefaultValues:   map[string]string{"action": "created"},
		OptionalFields:  []string{"description", "tn_name"},
	}
	want := []string{"action", "description", "scope", "subnet", "tn_name"}
	if got := s.KnownFields(); !reflect.DeepEqual(got, want) {
		t.Errorf("KnownFields() = %v, want %v", got, want)
	}
}

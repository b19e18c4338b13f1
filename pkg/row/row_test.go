package row

import (
	"testing"

	"github.com/newtron-network/acipush/pkg/schema"
)

func subnetSchema() *schema.EntitySchema {
	return &schema.EntitySchema{
		Command:         "push_bd_subnet",
		EntityType:      schema.EntityBDSubnet,
		Table:           "TABLE_BD_SUBNET",
		MandatoryFields: []string{"tn_name", "bd_name", "subnet"},
		DefaultValues: map[string]string{
			"action":                "created",
			"description":           "",
			"private_to_vrf":        "false",
			"advertised_externally": "false",
			"shared_between_vrfs":   "false",
		},
		OptionalFields: []string{"description", "treat_as_virtual_ip"},
	}
}

func TestNormalize_MissingMandatory(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		reason string
	}{
		{"absent", map[string]string{"tn_name": "prod", "subnet": "10.0.0.1/24"}, "missing mandatory field: bd_name"},
		{"empty", map[string]string{"tn_name": "", "bd_name": "web", "subnet": "10.0.0.1/24"}, "missing mandatory field: tn_name"},
		{"whitespace", map[string]string{"tn_name": "prod", "bd_name": "web", "subnet": "  "}, "missing mandatory field: subnet"},
		{"first in schema order wins", map[string]string{}, "missing mandatory field: tn_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(Raw{Index: 2, Line: 5, Fields: tt.fields, Ref: "TABLE_BD_SUBNET!5"}, subnetSchema())
			if n.Valid {
				t.Fatal("row should be invalid")
			}
			if n.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", n.Reason, tt.reason)
			}
			if n.Fields != nil {
				t.Error("invalid row should not carry normalized fields")
			}
			if n.Index != 2 || n.Line != 5 || n.Ref != "TABLE_BD_SUBNET!5" {
				t.Errorf("row identity not preserved: %+v", n)
			}
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	raw := Raw{Fields: map[string]string{
		"tn_name":     "prod",
		"bd_name":     "web",
		"subnet":      "10.0.0.1/24",
		"action":      "",
		"description": "web tier",
	}}
	n := Normalize(raw, subnetSchema())
	if !n.Valid {
		t.Fatalf("row should be valid: %s", n.Reason)
	}
	if n.Fields["action"] != "created" {
		t.Errorf("action = %q, want default created", n.Fields["action"])
	}
	if n.Fields["description"] != "web tier" {
		t.Errorf("description should keep row value, got %q", n.Fields["description"])
	}
	if n.Fields["private_to_vrf"] != "false" {
		t.Errorf("absent defaulted field should be filled, got %q", n.Fields["private_to_vrf"])
	}
}

func TestNormalize_EmptyValuesAreExplicit(t *testing.T) {
	raw := Raw{Fields: map[string]string{
		"tn_name": "prod",
		"bd_name": "web",
		"subnet":  "10.0.0.1/24",
		"extra":   "   ",
	}}
	n := Normalize(raw, subnetSchema())
	if !n.Valid {
		t.Fatalf("row should be valid: %s", n.Reason)
	}

	v, ok := n.Fields["extra"]
	if !ok || v != "" {
		t.Errorf("blank unknown column should be an explicit empty string, got %q (present=%v)", v, ok)
	}
	v, ok = n.Fields["treat_as_virtual_ip"]
	if !ok || v != "" {
		t.Errorf("absent optional field should be an explicit empty string, got %q (present=%v)", v, ok)
	}
}

func TestNormalize_DoesNotMutateRaw(t *testing.T) {
	fields := map[string]string{"tn_name": "prod", "bd_name": "web", "subnet": "10.0.0.1/24"}
	Normalize(Raw{Fields: fields}, subnetSchema())
	if len(fields) != 3 {
		t.Errorf("raw fields were modified: %v", fields)
	}
}

func TestNormalize_StatusField(t *testing.T) {
	s := subnetSchema()
	s.StatusField = "status_cell"

	raw := Raw{Ref: "TABLE_BD_SUBNET!7", Fields: map[string]string{
		"tn_name": "prod", "bd_name": "web", "subnet": "10.0.0.1/24", "status_cell": "A7",
	}}
	if n := Normalize(raw, s); n.Ref != "A7" {
		t.Errorf("Ref = %q, want status field value A7", n.Ref)
	}

	raw.Fields["status_cell"] = ""
	if n := Normalize(raw, s); n.Ref != "TABLE_BD_SUBNET!7" {
		t.Errorf("Ref = %q, want source ref when status field is blank", n.Ref)
	}

	// Rejected rows still report to the status field location
	delete(raw.Fields, "subnet")
	raw.Fields["status_cell"] = "A7"
	if n := Normalize(raw, s); n.Valid || n.Ref != "A7" {
		t.Errorf("invalid row Ref = %q valid=%v, want A7 invalid", n.Ref, n.Valid)
	}
}

func TestNormalize_DerivedOnlyForSubnets(t *testing.T) {
	tenant := &schema.EntitySchema{
		EntityType:      schema.EntityTenant,
		MandatoryFields: []string{"tn_name"},
	}
	n := Normalize(Raw{Fields: map[string]string{"tn_name": "prod", "private_to_vrf": "enabled"}}, tenant)
	if _, ok := n.Derived[FieldScope]; ok {
		t.Error("tenant rows should not derive a scope")
	}

	n = Normalize(Raw{Fields: map[string]string{
		"tn_name": "prod", "bd_name": "web", "subnet": "10.0.0.1/24", "private_to_vrf": "enabled",
	}}, subnetSchema())
	if v, _ := n.Lookup(FieldScope); v != "private" {
		t.Errorf("scope = %q, want private", v)
	}
}

func TestNormalizedLookup(t *testing.T) {
	n := Normalized{
		Fields:  map[string]string{"scope": "from-table", "tn_name": "prod"},
		Derived: map[string]string{"scope": "public"},
	}
	if v, _ := n.Lookup("scope"); v != "public" {
		t.Errorf("derived field should shadow column, got %q", v)
	}
	if v, ok := n.Lookup("tn_name"); !ok || v != "prod" {
		t.Errorf("Lookup(tn_name) = %q, %v", v, ok)
	}
	if _, ok := n.Lookup("missing"); ok {
		t.Error("Lookup of unknown field should report not found")
	}
}

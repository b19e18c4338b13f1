// Package row validates raw table rows against an entity schema.
package row

import (
	"fmt"

	"github.com/newtron-network/acipush/pkg/schema"
	"github.com/newtron-network/acipush/pkg/util"
)

// Raw is one data row as read from a table source.
type Raw struct {
	Index  int               // position among data rows, table order
	Line   int               // source row number, for display
	Fields map[string]string // absent and blank values are equivalent
	Ref    string            // opaque handle the status sink writes to
}

// Normalized is a Raw row after validation, defaulting and derivation.
// When Valid is false, Reason says why and the row must not be rendered.
type Normalized struct {
	Index   int
	Line    int
	Ref     string
	Fields  map[string]string
	Derived map[string]string
	Valid   bool
	Reason  string
}

// Lookup resolves a field for template expansion. Derived fields shadow
// table columns of the same name.
func (n *Normalized) Lookup(field string) (string, bool) {
	if v, ok := n.Derived[field]; ok {
		return v, true
	}
	v, ok := n.Fields[field]
	return v, ok
}

// MissingFieldReason is the rejection reason for a row lacking a mandatory field.
func MissingFieldReason(field string) string {
	return "missing mandatory field: " + field
}

// Normalize validates raw against s. Mandatory fields are checked in schema
// order and the first missing one rejects the row. Valid rows get defaults
// for blank fields, an explicit empty string for every other blank or
// schema-known field, and the derived fields of their entity type.
func Normalize(raw Raw, s *schema.EntitySchema) Normalized {
	n := Normalized{
		Index: raw.Index,
		Line:  raw.Line,
		Ref:   raw.Ref,
	}
	if s.StatusField != "" {
		if ref := raw.Fields[s.StatusField]; !util.IsBlank(ref) {
			n.Ref = ref
		}
	}

	for _, f := range s.MandatoryFields {
		if util.IsBlank(raw.Fields[f]) {
			n.Reason = MissingFieldReason(f)
			return n
		}
	}

	fields := make(map[string]string, len(raw.Fields)+len(s.DefaultValues)+len(s.OptionalFields))
	for k, v := range raw.Fields {
		if util.IsBlank(v) {
			v = ""
		}
		fields[k] = v
	}
	for f, def := range s.DefaultValues {
		if fields[f] == "" {
			fields[f] = def
		}
	}
	for _, f := range s.OptionalFields {
		if _, ok := fields[f]; !ok {
			fields[f] = ""
		}
	}

	n.Fields = fields
	n.Derived = derive(s.EntityType, fields)
	n.Valid = true
	return n
}

// String summarizes the row for logs.
func (n *Normalized) String() string {
	if !n.Valid {
		return fmt.Sprintf("row %d (line %d): invalid: %s", n.Index, n.Line, n.Reason)
	}
	return fmt.Sprintf("row %d (line %d): %d fields", n.Index, n.Line, len(n.Fields))
}

package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/acipush/pkg/util"
)

//go:embed defaults/launcher.yaml defaults/templates/*.json
var defaultFS embed.FS

// Registry holds the resolved schema of every known command.
// It is read-only after Load and safe to share between runs.
type Registry struct {
	source  string
	schemas map[string]*EntitySchema
}

// Load reads a schema file (JSON or YAML, by extension) and the templates
// it references from the templates/ directory next to it.
func Load(schemaPath string) (*Registry, error) {
	dir, name := filepath.Split(schemaPath)
	if dir == "" {
		dir = "."
	}
	return LoadFS(os.DirFS(dir), name, schemaPath)
}

// LoadDefault returns the registry built from the embedded ACI schema.
func LoadDefault() (*Registry, error) {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		return nil, util.NewSchemaError("", "opening embedded schema", err)
	}
	return LoadFS(sub, "launcher.yaml", "embedded")
}

// LoadFS reads the schema file name from fsys. source is used in messages.
func LoadFS(fsys fs.FS, name, source string) (*Registry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, util.NewSchemaError("", "reading schema file "+source, err)
	}

	file, err := parseFile(name, data)
	if err != nil {
		return nil, util.NewSchemaError("", "parsing schema file "+source, err)
	}
	if len(file.Commands) == 0 {
		return nil, util.NewSchemaError("", "schema file "+source+" defines no commands", nil)
	}

	r := &Registry{
		source:  source,
		schemas: make(map[string]*EntitySchema, len(file.Commands)),
	}

	templates := make(map[string]interface{})
	for _, cmd := range util.SortedKeys(file.Commands) {
		spec := file.Commands[cmd]
		if err := validateCommand(cmd, spec); err != nil {
			return nil, util.NewSchemaError(cmd, "invalid command definition", err)
		}

		tmpl, ok := templates[spec.Template]
		if !ok {
			tmpl, err = loadTemplate(fsys, spec.Template)
			if err != nil {
				return nil, util.NewSchemaError(cmd, "loading template "+spec.Template, err)
			}
			templates[spec.Template] = tmpl
		}

		es := &EntitySchema{
			Command:         cmd,
			EntityType:      EntityType(spec.EntityType),
			Table:           spec.Table,
			Worksheet:       spec.Worksheet,
			MandatoryFields: append([]string(nil), spec.Mandatory...),
			DefaultValues:   copyMap(spec.Defaults),
			OptionalFields:  append([]string(nil), spec.Optional...),
			TemplateName:    spec.Template,
			PathTemplate:    spec.Path,
			StatusField:     spec.StatusField,
			ActionMessage:   util.CoalesceString(spec.ActionMsg, cmd),
			PayloadTemplate: tmpl,
		}
		warnUndeclaredFields(es)
		r.schemas[cmd] = es
	}

	util.WithField("source", source).Debugf("loaded %d commands", len(r.schemas))
	return r, nil
}

// Lookup returns the schema for a command.
func (r *Registry) Lookup(command string) (*EntitySchema, error) {
	s, ok := r.schemas[command]
	if !ok {
		return nil, util.NewSchemaError(command, "no schema registered", util.ErrUnknownCommand)
	}
	return s, nil
}

// Commands returns all command names, sorted.
func (r *Registry) Commands() []string {
	return util.SortedKeys(r.schemas)
}

// Tables returns the distinct table names referenced by commands, sorted.
func (r *Registry) Tables() []string {
	seen := make(map[string]bool)
	for _, s := range r.schemas {
		seen[s.Table] = true
	}
	return util.SortedKeys(seen)
}

// Source describes where the registry was loaded from.
func (r *Registry) Source() string {
	return r.source
}

func parseFile(name string, data []byte) (*File, error) {
	var file File
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	}
	return &file, nil
}

func validateCommand(cmd string, spec *CommandSpec) error {
	v := &util.ValidationBuilder{}
	if spec == nil {
		v.AddErrorf("command '%s' has an empty definition", cmd)
		return v.Build()
	}
	v.Add(spec.Table != "", fmt.Sprintf("command '%s' has no table", cmd))
	v.Add(spec.Template != "", fmt.Sprintf("command '%s' has no template", cmd))
	v.Add(spec.Path != "", fmt.Sprintf("command '%s' has no path", cmd))
	if !EntityType(spec.EntityType).Valid() {
		v.AddErrorf("command '%s' has unknown entity type '%s'", cmd, spec.EntityType)
	}
	for _, f := range spec.Mandatory {
		if _, ok := spec.Defaults[f]; ok {
			v.AddErrorf("command '%s' field '%s' is mandatory and also has a default", cmd, f)
		}
	}
	return v.Build()
}

func loadTemplate(fsys fs.FS, name string) (interface{}, error) {
	data, err := fs.ReadFile(fsys, path.Join("templates", name+".json"))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tmpl interface{}
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("template %s is not valid JSON: %w", name, err)
	}
	if _, ok := tmpl.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("template %s must be a JSON object", name)
	}
	return tmpl, nil
}

// warnUndeclaredFields logs template fields the schema does not name. They
// still render when the table has a matching column.
func warnUndeclaredFields(es *EntitySchema) {
	used := make(map[string]bool)
	templateFields(es.PayloadTemplate, used)
	for _, f := range Placeholders(es.PathTemplate) {
		used[f] = true
	}
	known := make(map[string]bool)
	for _, f := range es.KnownFields() {
		known[f] = true
	}
	for _, f := range util.SortedKeys(used) {
		if !known[f] {
			util.WithCommand(es.Command).Warnf("template field '%s' is not declared in the schema", f)
		}
	}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

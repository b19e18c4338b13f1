// Package render expands a normalized row through its entity templates
// into a controller request.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newtron-network/acipush/pkg/row"
	"github.com/newtron-network/acipush/pkg/schema"
	"github.com/newtron-network/acipush/pkg/util"
)

// Result is a fully resolved request: no placeholders remain in either part.
type Result struct {
	URI  string
	Path string
	Body []byte
}

// Renderer composes resource paths with a controller base address.
type Renderer struct {
	controller string
}

// New returns a renderer for the given controller host (host or host:port).
func New(controller string) *Renderer {
	return &Renderer{controller: strings.TrimSuffix(controller, "/")}
}

// NodeURI returns the fully qualified node API address for a resource path.
func NodeURI(controller, path string) string {
	return fmt.Sprintf("https://%s/api/node/%s.json", controller, strings.TrimPrefix(path, "/"))
}

// Render expands s's path and payload templates with n's fields. Rendering an
// invalid row, or a template that names a field the row does not carry, is a
// *util.RenderError.
func (r *Renderer) Render(n *row.Normalized, s *schema.EntitySchema) (*Result, error) {
	if !n.Valid {
		return nil, &util.RenderError{Template: s.TemplateName, Reason: "row is invalid: " + n.Reason}
	}

	path, missing := schema.Expand(s.PathTemplate, n.Lookup)
	if missing != "" {
		return nil, &util.RenderError{Template: s.Command + " path", Field: missing}
	}

	payload, err := expandNode(s.PayloadTemplate, n.Lookup)
	if err != nil {
		if re, ok := err.(*util.RenderError); ok {
			re.Template = s.TemplateName
		}
		return nil, err
	}

	body, err := encode(payload)
	if err != nil {
		return nil, &util.RenderError{Template: s.TemplateName, Reason: err.Error()}
	}

	return &Result{
		URI:  NodeURI(r.controller, path),
		Path: path,
		Body: body,
	}, nil
}

// expandNode returns a deep copy of node with placeholders expanded in every
// object key and string value. The template itself is never modified.
func expandNode(node interface{}, lookup func(string) (string, bool)) (interface{}, error) {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			key, missing := schema.Expand(k, lookup)
			if missing != "" {
				return nil, &util.RenderError{Field: missing}
			}
			expanded, err := expandNode(child, lookup)
			if err != nil {
				return nil, err
			}
			out[key] = expanded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			expanded, err := expandNode(child, lookup)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	case string:
		s, missing := schema.Expand(v, lookup)
		if missing != "" {
			return nil, &util.RenderError{Field: missing}
		}
		return s, nil
	default:
		return v, nil
	}
}

// encode serializes the payload and checks the result parses back.
func encode(payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	body := bytes.TrimRight(buf.Bytes(), "\n")
	if !json.Valid(body) {
		return nil, fmt.Errorf("rendered payload is not valid JSON")
	}
	return body, nil
}

// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Registry validates section payloads against the schema registered for
// their content-type tag. Schemas are compiled once at load time.
type Registry struct {
	schemas map[string]*gojsonschema.Schema
}

// LoadRegistry reads a SectionRegistry file and compiles its schemas.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg SectionRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return build(&reg)
}

// Default returns the built-in registry covering the core section types.
func Default() *Registry {
	reg, err := build(&defaultRegistry)
	if err != nil {
		// The built-in schemas are static; a compile failure is a
		// programming error.
		panic(fmt.Sprintf("registry: default schemas failed to compile: %v", err))
	}
	return reg
}

func build(reg *SectionRegistry) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(reg.Sections))}
	for _, st := range reg.Sections {
		schemaJSON, err := json.Marshal(st.Schema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %q: %w", st.ContentType, err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %q: %w", st.ContentType, err)
		}
		r.schemas[st.ContentType] = compiled
	}
	return r, nil
}

// Known reports whether a content-type tag is registered.
func (r *Registry) Known(contentType string) bool {
	_, ok := r.schemas[contentType]
	return ok
}

// Validate checks a payload against the schema for its content type. The
// returned messages name the offending fields.
func (r *Registry) Validate(contentType string, payload []byte) ([]string, error) {
	schema, ok := r.schemas[contentType]
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", contentType)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return msgs, nil
}

// defaultRegistry covers the section types the content resolver ships with.
var defaultRegistry = SectionRegistry{
	Version: "1.0",
	Sections: []SectionType{
		{
			ContentType: "image",
			DisplayName: "Image",
			Description: "A single image with optional alt text and caption",
			Schema: map[string]interface{}{
				"type":                 "object",
				"required":             []interface{}{"url"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"url":     map[string]interface{}{"type": "string", "minLength": 1},
					"alt":     map[string]interface{}{"type": "string"},
					"caption": map[string]interface{}{"type": "string"},
				},
			},
		},
		{
			ContentType: "richText",
			DisplayName: "Rich Text",
			Description: "A block of formatted text",
			Schema: map[string]interface{}{
				"type":                 "object",
				"required":             []interface{}{"body"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"body": map[string]interface{}{"type": "string", "minLength": 1},
				},
			},
		},
		{
			ContentType: "list",
			DisplayName: "List",
			Description: "An ordered or unordered list of text items",
			Schema: map[string]interface{}{
				"type":                 "object",
				"required":             []interface{}{"items"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"items": map[string]interface{}{
						"type":     "array",
						"minItems": 1,
						"items":    map[string]interface{}{"type": "string"},
					},
					"ordered": map[string]interface{}{"type": "boolean"},
				},
			},
		},
	},
}

package registry

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/storepilot/internal/ir"
)

const draft2020 = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema returns a draft 2020-12 JSON Schema describing one action
// envelope of the given kind. Payload properties outside the schema are
// allowed, matching the validator's drop-unknown behaviour.
func (r *Registry) JSONSchema(kind ir.Kind) ([]byte, error) {
	s, ok := r.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for %s", kind)
	}

	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = fieldSchema(f)
	}
	payload := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := s.Required(); len(req) > 0 {
		payload["required"] = req
	}

	doc := map[string]any{
		"$schema":     draft2020,
		"$id":         "https://storepilot.local/actions/" + string(kind) + ".schema.json",
		"title":       string(kind),
		"description": s.Description,
		"type":        "object",
		"properties": map[string]any{
			"type":    map[string]any{"const": string(kind)},
			"payload": payload,
		},
		"required": []string{"type", "payload"},
	}
	return json.MarshalIndent(doc, "", "  ")
}

func fieldSchema(f ir.FieldSpec) map[string]any {
	out := map[string]any{"type": string(f.Type)}
	if f.Type == ir.TypeNumber && f.Integer {
		out["type"] = "integer"
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if len(f.Enum) > 0 {
		out["enum"] = f.Enum
	}
	if f.MinLength != nil {
		out["minLength"] = *f.MinLength
	}
	if f.MaxLength != nil {
		out["maxLength"] = *f.MaxLength
	}
	if f.Min != nil {
		out["minimum"] = *f.Min
	}
	if f.Max != nil {
		out["maximum"] = *f.Max
	}
	switch {
	case f.Items != "" && f.Type == ir.TypeObject:
		out["additionalProperties"] = map[string]any{"type": string(f.Items)}
	case f.Items != "":
		out["items"] = map[string]any{"type": string(f.Items)}
	}
	if f.MinItems != nil {
		out["minItems"] = *f.MinItems
	}
	if f.MaxItems != nil {
		out["maxItems"] = *f.MaxItems
	}
	return out
}

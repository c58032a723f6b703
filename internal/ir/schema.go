package ir

import "fmt"

// FieldType is the primitive JSON type a payload field must carry.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// ValidFieldTypes defines the allowed type strings for payload fields.
var ValidFieldTypes = map[FieldType]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
}

// FieldSpec declares the rules for one payload field.
// Pointer refinements are unset when nil. Items is the element type of an
// array field or the value type of an object field.
type FieldSpec struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	MinLength   *int      `json:"min_length,omitempty"`
	MaxLength   *int      `json:"max_length,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Integer     bool      `json:"integer,omitempty"`
	Items       FieldType `json:"items,omitempty"`
	MinItems    *int      `json:"min_items,omitempty"`
	MaxItems    *int      `json:"max_items,omitempty"`
}

// ActionSchema declares what a well-formed action of one kind looks like.
// Fields keep their declaration order.
type ActionSchema struct {
	Kind        Kind        `json:"type"`
	Description string      `json:"description"`
	Fields      []FieldSpec `json:"fields"`
}

// Field returns the spec for name.
func (s ActionSchema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Required returns required field names in declaration order.
func (s ActionSchema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Optional returns optional field names in declaration order.
func (s ActionSchema) Optional() []string {
	var out []string
	for _, f := range s.Fields {
		if !f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// SchemaError represents a structural problem in a schema declaration.
type SchemaError struct {
	Field   string
	Message string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the schema's own consistency.
// Returns all errors (not fail-fast).
func (s ActionSchema) Validate() []SchemaError {
	var errs []SchemaError
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		path := fmt.Sprintf("%s.fields[%d]", s.Kind, i)
		if f.Name == "" {
			errs = append(errs, SchemaError{Field: path, Message: "field name is required"})
		}
		if seen[f.Name] {
			errs = append(errs, SchemaError{Field: path, Message: fmt.Sprintf("duplicate field %q", f.Name)})
		}
		seen[f.Name] = true
		if !ValidFieldTypes[f.Type] {
			errs = append(errs, SchemaError{Field: path + ".type", Message: fmt.Sprintf("invalid type %q", f.Type)})
		}
		if f.Items != "" && f.Type != TypeArray && f.Type != TypeObject {
			errs = append(errs, SchemaError{Field: path + ".items", Message: "items is only valid on array and object fields"})
		}
		if f.Items != "" && !ValidFieldTypes[f.Items] {
			errs = append(errs, SchemaError{Field: path + ".items", Message: fmt.Sprintf("invalid item type %q", f.Items)})
		}
		if len(f.Enum) > 0 && f.Type != TypeString {
			errs = append(errs, SchemaError{Field: path + ".enum", Message: "enum is only valid on string fields"})
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			errs = append(errs, SchemaError{Field: path, Message: "min is greater than max"})
		}
		if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
			errs = append(errs, SchemaError{Field: path, Message: "min_length is greater than max_length"})
		}
	}
	return errs
}

// SectionSpec is one entry of the section component catalog.
//
// Defaults are the full internal settings for a new section. AgentKeys maps
// internal setting keys to the simplified agent-facing names; internal keys
// absent from AgentKeys are never shown to the agent.
type SectionSpec struct {
	Type        string            `json:"type"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Zone        string            `json:"zone"`
	Defaults    map[string]any    `json:"defaults"`
	AgentKeys   map[string]string `json:"agent_keys"`
}

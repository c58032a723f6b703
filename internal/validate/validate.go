package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/registry"
)

// Result is the outcome of validating one raw action.
// Action is only meaningful when Valid is true.
type Result struct {
	Valid  bool
	Action ir.Action
	Issues []ValidationError
}

// Errors returns the human-readable messages of all issues.
func (r Result) Errors() []string {
	out := make([]string, len(r.Issues))
	for i, e := range r.Issues {
		out[i] = e.Message
	}
	return out
}

// Validator checks raw actions against a registry.
type Validator struct {
	reg *registry.Registry
}

// New returns a validator for reg.
func New(reg *registry.Registry) *Validator {
	return &Validator{reg: reg}
}

// Default returns a validator over the embedded registry.
func Default() *Validator {
	return New(registry.Default())
}

// Validate checks one raw action.
//
// raw may be a decoded JSON object (map[string]any), an ir.Action or an
// ir.Payload. Both the {"type", "payload": {...}} envelope and the flat
// {"type", field...} form are accepted. A kind that passes the structural
// check but has no schema panics with *registry.DriftError.
func (v *Validator) Validate(raw any) Result {
	obj, issue := envelope(raw)
	if issue != nil {
		return Result{Issues: []ValidationError{*issue}}
	}

	kind, issue := kindOf(obj)
	if issue != nil {
		return Result{Issues: []ValidationError{*issue}}
	}
	schema := v.reg.MustLookup(kind)

	payload, issue := payloadOf(kind, obj)
	if issue != nil {
		return Result{Issues: []ValidationError{*issue}}
	}

	var issues []ValidationError
	for _, name := range schema.Required() {
		if !payload.Has(name) {
			issues = append(issues, ValidationError{
				Kind:    kind,
				Field:   name,
				Code:    ErrCodeMissing,
				Message: fmt.Sprintf("%s: Missing required field %q", kind, name),
			})
		}
	}

	sanitized := Sanitize(schema, payload)
	for _, f := range schema.Fields {
		val, ok := sanitized[f.Name]
		if !ok {
			continue
		}
		issues = append(issues, checkField(kind, f, val)...)
	}

	if len(issues) > 0 {
		return Result{Issues: issues}
	}
	return Result{Valid: true, Action: ir.Action{Kind: kind, Payload: sanitized}}
}

func envelope(raw any) (map[string]any, *ValidationError) {
	switch a := raw.(type) {
	case ir.Action:
		raw = map[string]any{"type": string(a.Kind), "payload": map[string]any(a.Payload)}
	case *ir.Action:
		if a == nil {
			return nil, structural("action must be an object, got null")
		}
		raw = map[string]any{"type": string(a.Kind), "payload": map[string]any(a.Payload)}
	}

	norm, err := ir.Normalize(raw)
	if err != nil {
		return nil, structural("invalid action: " + err.Error())
	}
	obj, ok := norm.(map[string]any)
	if !ok {
		return nil, structural("action must be an object, got " + ir.TypeName(norm))
	}
	return obj, nil
}

func kindOf(obj map[string]any) (ir.Kind, *ValidationError) {
	t, ok := obj["type"]
	if !ok || t == nil {
		return "", structural(`action is missing "type"`)
	}
	s, ok := t.(string)
	if !ok {
		return "", structural("action type must be a string, got " + ir.TypeName(t))
	}
	kind, ok := ir.ParseKind(strings.TrimSpace(s))
	if !ok {
		return "", structural(fmt.Sprintf("unknown action type %q", s))
	}
	return kind, nil
}

func payloadOf(kind ir.Kind, obj map[string]any) (ir.Payload, *ValidationError) {
	if p, ok := obj["payload"]; ok && p != nil {
		m, ok := p.(map[string]any)
		if !ok {
			return nil, &ValidationError{
				Kind:    kind,
				Field:   "payload",
				Code:    ErrCodeType,
				Message: fmt.Sprintf("%s: payload must be an object, got %s", kind, ir.TypeName(p)),
			}
		}
		return ir.Payload(m), nil
	}

	flat := make(ir.Payload, len(obj))
	for k, val := range obj {
		if k == "type" || k == "payload" {
			continue
		}
		flat[k] = val
	}
	return flat, nil
}

func structural(msg string) *ValidationError {
	return &ValidationError{Field: "type", Code: ErrCodeStructural, Message: msg}
}

func checkField(kind ir.Kind, f ir.FieldSpec, val any) []ValidationError {
	fail := func(code, format string, args ...any) []ValidationError {
		return []ValidationError{{
			Kind:    kind,
			Field:   f.Name,
			Code:    code,
			Message: fmt.Sprintf("%s: Field %q ", kind, f.Name) + fmt.Sprintf(format, args...),
		}}
	}

	if got := ir.TypeName(val); got != string(f.Type) {
		return fail(ErrCodeType, "must be %s, got %s", article(string(f.Type)), got)
	}

	switch f.Type {
	case ir.TypeString:
		s := val.(string)
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return fail(ErrCodeEnum, "must be one of [%s], got %q", strings.Join(f.Enum, ", "), s)
		}
		n := utf8.RuneCountInString(s)
		if f.MinLength != nil && n < *f.MinLength {
			return fail(ErrCodeLength, "must be at least %d characters", *f.MinLength)
		}
		if f.MaxLength != nil && n > *f.MaxLength {
			return fail(ErrCodeLength, "must be at most %d characters", *f.MaxLength)
		}

	case ir.TypeNumber:
		x, _ := ir.AsFloat(val)
		if f.Integer {
			if _, ok := val.(int64); !ok {
				return fail(ErrCodeType, "must be a whole number, got %v", val)
			}
		}
		if f.Min != nil && x < *f.Min {
			return fail(ErrCodeRange, "must be >= %v", *f.Min)
		}
		if f.Max != nil && x > *f.Max {
			return fail(ErrCodeRange, "must be <= %v", *f.Max)
		}

	case ir.TypeArray:
		arr := val.([]any)
		if f.MinItems != nil && len(arr) < *f.MinItems {
			return fail(ErrCodeItems, "must have at least %d items", *f.MinItems)
		}
		if f.MaxItems != nil && len(arr) > *f.MaxItems {
			return fail(ErrCodeItems, "must have at most %d items", *f.MaxItems)
		}
		if f.Items != "" {
			for i, e := range arr {
				if got := ir.TypeName(e); got != string(f.Items) {
					return fail(ErrCodeItems, "item %d must be %s, got %s", i, article(string(f.Items)), got)
				}
			}
		}

	case ir.TypeObject:
		if f.Items == "" {
			break
		}
		obj := val.(map[string]any)
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if got := ir.TypeName(obj[k]); got != string(f.Items) {
				return fail(ErrCodeItems, "value %q must be %s, got %s", k, article(string(f.Items)), got)
			}
		}
	}
	return nil
}

func article(typeName string) string {
	switch typeName {
	case "array", "object":
		return "an " + typeName
	default:
		return "a " + typeName
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Payload is the type-specific argument map of an action.
//
// After Normalize, values are limited to string, int64, float64, bool,
// []any and map[string]any. Integral numbers are always int64 so that
// prices, positions and inventory never drift through float rounding.
type Payload map[string]any

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = CloneValue(v)
	}
	return out
}

// SortedKeys returns the payload keys in lexical order.
func (p Payload) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Has reports whether key is present with a non-nil value.
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the string at key.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Int returns the whole number at key. Floats with an integral value are
// accepted; anything else reports false.
func (p Payload) Int(key string) (int64, bool) {
	return AsInt(p[key])
}

// Bool returns the boolean at key.
func (p Payload) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Strings returns the string elements of the array at key.
// Non-string elements are skipped.
func (p Payload) Strings(key string) ([]string, bool) {
	arr, ok := p[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Object returns the object at key.
func (p Payload) Object(key string) (map[string]any, bool) {
	m, ok := p[key].(map[string]any)
	return m, ok
}

// AsInt converts a normalised number to int64.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

// AsFloat converts any normalised number to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// CloneValue deep-copies a normalised value. Scalars are returned as-is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = CloneValue(e)
		}
		return out
	case Payload:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a settings-style map. Nil stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return CloneValue(m).(map[string]any)
}

// Normalize converts an arbitrary decoded JSON value (or Go literal used in
// tests) into the Payload value domain.
//
// json.Number and Go integer/float types become int64 when integral and
// float64 otherwise. NaN and infinities are rejected; unsupported Go types
// are rejected with their dynamic type in the message.
func Normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float32:
		return normalizeFloat(float64(val))
	case float64:
		return normalizeFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return normalizeFloat(f)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out, nil
	case Payload:
		return Normalize(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func normalizeFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	if i, ok := AsInt(f); ok {
		return i, nil
	}
	return f, nil
}

// DecodeJSON decodes data into the Payload value domain, preserving number
// precision via json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	// Trailing garbage after the first value is an error for whole-document decoding.
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return Normalize(raw)
}

// TypeName reports the JSON type of a normalised value using the registry's
// vocabulary: string, number, boolean, array, object or null.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case int64, int, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any, Payload:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

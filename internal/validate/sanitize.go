package validate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storepilot/internal/ir"
)

// Sanitize copies the schema-known, non-null fields of payload with every
// string NFC-normalised and trimmed, recursively. Numbers are assumed to be
// normalised already. Sanitize(Sanitize(p)) equals Sanitize(p).
func Sanitize(schema ir.ActionSchema, payload ir.Payload) ir.Payload {
	out := make(ir.Payload, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := payload[f.Name]
		if !ok || v == nil {
			continue
		}
		out[f.Name] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return cleanString(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = sanitizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = sanitizeValue(e)
		}
		return out
	default:
		return v
	}
}

func cleanString(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Sanitize normalises payload and sanitizes it against the schema for kind.
// Values that cannot be normalised are dropped.
func (v *Validator) Sanitize(kind ir.Kind, payload ir.Payload) ir.Payload {
	schema := v.reg.MustLookup(kind)
	clean := make(ir.Payload, len(payload))
	for k, val := range payload {
		n, err := ir.Normalize(val)
		if err != nil {
			continue
		}
		clean[k] = n
	}
	return Sanitize(schema, clean)
}

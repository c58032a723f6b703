package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/storepilot/internal/ir"
)

// Docs renders the registry as a markdown reference for the agent prompt.
// Output is deterministic: kinds and fields in declaration order.
func (r *Registry) Docs() string {
	var b strings.Builder
	b.WriteString("## Available actions\n\n")
	b.WriteString("Respond with {\"type\": \"<ACTION>\", \"payload\": {...}} objects.\n")
	for _, kind := range r.order {
		s := r.schemas[kind]
		fmt.Fprintf(&b, "\n### %s\n", kind)
		if s.Description != "" {
			b.WriteString(s.Description)
			b.WriteString("\n")
		}
		if len(s.Fields) == 0 {
			b.WriteString("- (no fields)\n")
			continue
		}
		for _, f := range s.Fields {
			b.WriteString("- ")
			b.WriteString(fieldLine(f))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fieldLine(f ir.FieldSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "`%s` (%s", f.Name, typeLabel(f))
	if f.Required {
		b.WriteString(", required")
	}
	b.WriteString(")")
	if f.Description != "" {
		b.WriteString(": ")
		b.WriteString(f.Description)
	}
	if rules := ruleList(f); len(rules) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(rules, "; "))
		b.WriteString("]")
	}
	return b.String()
}

func typeLabel(f ir.FieldSpec) string {
	switch {
	case f.Type == ir.TypeArray && f.Items != "":
		return "array of " + string(f.Items)
	case f.Type == ir.TypeObject && f.Items != "":
		return "object of " + string(f.Items)
	case f.Type == ir.TypeNumber && f.Integer:
		return "integer"
	default:
		return string(f.Type)
	}
}

func ruleList(f ir.FieldSpec) []string {
	var rules []string
	if len(f.Enum) > 0 {
		rules = append(rules, "one of: "+strings.Join(f.Enum, ", "))
	}
	if f.MinLength != nil {
		rules = append(rules, "min length "+strconv.Itoa(*f.MinLength))
	}
	if f.MaxLength != nil {
		rules = append(rules, "max length "+strconv.Itoa(*f.MaxLength))
	}
	if f.Min != nil {
		rules = append(rules, "min "+formatNumber(*f.Min))
	}
	if f.Max != nil {
		rules = append(rules, "max "+formatNumber(*f.Max))
	}
	if f.MinItems != nil {
		rules = append(rules, "min items "+strconv.Itoa(*f.MinItems))
	}
	if f.MaxItems != nil {
		rules = append(rules, "max items "+strconv.Itoa(*f.MaxItems))
	}
	return rules
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

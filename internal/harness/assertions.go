package harness

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
)

// Assertion types.
const (
	AssertSections = "sections"
	AssertSection  = "section"
	AssertProducts = "products"
	AssertBrand    = "brand"
	AssertHero     = "hero"
)

// Assertion checks the final state of a scenario.
type Assertion struct {
	Type string `yaml:"type"`

	// IDs is the expected homepage section order (sections).
	IDs []string `yaml:"ids,omitempty"`

	// ID names the section to check (section).
	ID string `yaml:"id,omitempty"`

	// Count is the expected number of products (products).
	Count *int `yaml:"count,omitempty"`

	// Expect is matched as a subset against the agent-facing JSON of the
	// section, brand or hero. Nested objects are matched as subsets too.
	Expect map[string]any `yaml:"expect,omitempty"`
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertSections:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for sections", index)
		}
	case AssertSection:
		if a.ID == "" || len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: id and expect are required for section", index)
		}
	case AssertProducts:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for products", index)
		}
	case AssertBrand, AssertHero:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// EvaluateAssertions checks each assertion against st and returns one
// message per failure.
func EvaluateAssertions(st state.StoreState, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(st, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(st state.StoreState, a Assertion) error {
	switch a.Type {
	case AssertSections:
		ids := make([]string, len(st.Homepage.Sections))
		for i, s := range st.Homepage.Sections {
			ids[i] = s.ID
		}
		if !slices.Equal(ids, a.IDs) {
			return fmt.Errorf("expected order %v, got %v", a.IDs, ids)
		}
		if !state.DensePositions(st.Homepage.Sections) {
			return fmt.Errorf("positions are not dense per zone")
		}
		return nil
	case AssertSection:
		i := st.FindSection(a.ID)
		if i < 0 {
			return fmt.Errorf("section %q not found", a.ID)
		}
		return matchJSON(st.Homepage.Sections[i], a.Expect)
	case AssertProducts:
		if len(st.Products) != *a.Count {
			return fmt.Errorf("expected %d products, got %d", *a.Count, len(st.Products))
		}
		return nil
	case AssertBrand:
		return matchJSON(st.Brand, a.Expect)
	case AssertHero:
		return matchJSON(st.Homepage.Hero, a.Expect)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// matchJSON renders v as JSON and checks expect against it as a subset.
func matchJSON(v any, expect map[string]any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	actual, err := ir.DecodeJSON(data)
	if err != nil {
		return err
	}
	want, err := ir.Normalize(expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	return subset("", actual, want)
}

func subset(path string, actual, expected any) error {
	if em, ok := expected.(map[string]any); ok {
		am, ok := actual.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected an object, got %s", fieldPath(path), ir.TypeName(actual))
		}
		for k, ev := range em {
			av, exists := am[k]
			if !exists {
				return fmt.Errorf("%s: missing", fieldPath(path+"."+k))
			}
			if err := subset(path+"."+k, av, ev); err != nil {
				return err
			}
		}
		return nil
	}
	if !valuesEqual(actual, expected) {
		return fmt.Errorf("%s: expected %v, got %v", fieldPath(path), expected, actual)
	}
	return nil
}

// valuesEqual compares normalised values, treating numbers by value.
func valuesEqual(actual, expected any) bool {
	if af, ok := ir.AsFloat(actual); ok {
		ef, ok := ir.AsFloat(expected)
		return ok && af == ef
	}
	a, errA := json.Marshal(actual)
	e, errE := json.Marshal(expected)
	return errA == nil && errE == nil && string(a) == string(e)
}

func fieldPath(p string) string {
	if p == "" {
		return "value"
	}
	return p[1:]
}

package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/storepilot/internal/ir"
)

// DefaultZone is the placement bucket for sections that do not declare one.
const DefaultZone = "main"

// CompileCatalog parses a section catalog document.
//
// The document must have a top-level "sections" struct keyed by section
// type. Every agent key must name an internal key present in defaults, so
// the simplified view can always be computed from a freshly added section.
func CompileCatalog(filename string, src []byte) ([]ir.SectionSpec, error) {
	v, err := build(filename, src)
	if err != nil {
		return nil, err
	}

	sectionsVal := v.LookupPath(cue.ParsePath("sections"))
	if !sectionsVal.Exists() {
		return nil, &CompileError{Field: "sections", Message: "sections struct is required", Pos: v.Pos()}
	}

	iter, err := sectionsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.SectionSpec
	for iter.Next() {
		spec, err := compileSection(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func compileSection(typ string, v cue.Value) (ir.SectionSpec, error) {
	spec := ir.SectionSpec{Type: typ}
	var err error

	if spec.Label, err = optString(v, "label"); err != nil {
		return spec, err
	}
	if spec.Description, err = optString(v, "description"); err != nil {
		return spec, err
	}
	if spec.Zone, err = optString(v, "zone"); err != nil {
		return spec, err
	}
	if spec.Zone == "" {
		spec.Zone = DefaultZone
	}
	if spec.Defaults, err = optObject(v, "defaults"); err != nil {
		return spec, err
	}
	if spec.AgentKeys, err = optStringMap(v, "agent_keys"); err != nil {
		return spec, err
	}

	seen := make(map[string]string, len(spec.AgentKeys))
	for internal, agent := range spec.AgentKeys {
		if _, ok := spec.Defaults[internal]; !ok {
			return spec, &CompileError{
				Field:   "sections." + typ + ".agent_keys." + internal,
				Message: "agent key maps an internal key with no default",
				Pos:     v.Pos(),
			}
		}
		if prev, dup := seen[agent]; dup {
			return spec, &CompileError{
				Field:   "sections." + typ + ".agent_keys",
				Message: "agent key " + agent + " is used by both " + prev + " and " + internal,
				Pos:     v.Pos(),
			}
		}
		seen[agent] = internal
	}

	return spec, nil
}

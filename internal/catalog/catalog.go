// Package catalog is the section component catalog: for every section type
// it knows the default internal settings, the placement zone and the
// mapping between internal setting keys and the simplified keys the agent
// sees.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/storepilot/internal/compiler"
	"github.com/roach88/storepilot/internal/ir"
)

//go:embed catalog.cue
var catalogCUE []byte

// HeroType is the section type backing homepage.hero.
const HeroType = "hero"

// Catalog is the lookup table consumed by the state loader and executor.
type Catalog interface {
	// Spec returns the catalog entry for typ.
	Spec(typ string) (ir.SectionSpec, bool)
	// Defaults returns a deep copy of the default internal settings for typ.
	// Unknown types yield an empty map.
	Defaults(typ string) map[string]any
	// Zone returns the placement zone for typ.
	Zone(typ string) string
	// Simplify narrows internal settings to the agent-facing view.
	Simplify(typ string, internal map[string]any) map[string]any
	// Translate maps agent-facing keys back to internal keys.
	Translate(typ string, agent map[string]any) map[string]any
	// Types lists the known section types, sorted.
	Types() []string
}

// Table is the Catalog backed by compiled section specs.
type Table struct {
	specs map[string]ir.SectionSpec
	// reverse maps type -> agent key -> internal key.
	reverse map[string]map[string]string
}

var _ Catalog = (*Table)(nil)

// New builds a table from section specs.
func New(specs []ir.SectionSpec) (*Table, error) {
	t := &Table{
		specs:   make(map[string]ir.SectionSpec, len(specs)),
		reverse: make(map[string]map[string]string, len(specs)),
	}
	for _, s := range specs {
		if _, dup := t.specs[s.Type]; dup {
			return nil, fmt.Errorf("duplicate section type %q", s.Type)
		}
		t.specs[s.Type] = s
		rev := make(map[string]string, len(s.AgentKeys))
		for internal, agent := range s.AgentKeys {
			rev[agent] = internal
		}
		t.reverse[s.Type] = rev
	}
	return t, nil
}

// Load compiles the embedded catalog.
func Load() (*Table, error) {
	specs, err := compiler.CompileCatalog("catalog.cue", catalogCUE)
	if err != nil {
		return nil, fmt.Errorf("compile section catalog: %w", err)
	}
	return New(specs)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded catalog, panicking if it does not compile.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load()
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

func (t *Table) Spec(typ string) (ir.SectionSpec, bool) {
	s, ok := t.specs[typ]
	return s, ok
}

func (t *Table) Defaults(typ string) map[string]any {
	s, ok := t.specs[typ]
	if !ok {
		return map[string]any{}
	}
	return ir.CloneMap(s.Defaults)
}

func (t *Table) Zone(typ string) string {
	if s, ok := t.specs[typ]; ok {
		return s.Zone
	}
	return compiler.DefaultZone
}

// Simplify keeps only internal keys that have an agent name, renamed.
// Settings of unknown types pass through unchanged.
func (t *Table) Simplify(typ string, internal map[string]any) map[string]any {
	s, ok := t.specs[typ]
	if !ok {
		return ir.CloneMap(internal)
	}
	out := make(map[string]any, len(s.AgentKeys))
	for key, agent := range s.AgentKeys {
		if v, ok := internal[key]; ok {
			out[agent] = ir.CloneValue(v)
		}
	}
	return out
}

// Translate renames agent keys to internal keys. Keys with no mapping are
// kept as given so callers can still set settings the catalog does not name.
func (t *Table) Translate(typ string, agent map[string]any) map[string]any {
	rev := t.reverse[typ]
	out := make(map[string]any, len(agent))
	for key, v := range agent {
		if internal, ok := rev[key]; ok {
			key = internal
		}
		out[key] = ir.CloneValue(v)
	}
	return out
}

func (t *Table) Types() []string {
	out := make([]string, 0, len(t.specs))
	for typ := range t.specs {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Listing renders the catalog for the agent prompt. The hero type is
// omitted because it is edited through the hero actions.
func (t *Table) Listing() string {
	var b strings.Builder
	b.WriteString("## Section types\n")
	for _, typ := range t.Types() {
		if typ == HeroType {
			continue
		}
		s := t.specs[typ]
		keys := make([]string, 0, len(s.AgentKeys))
		for _, agent := range s.AgentKeys {
			keys = append(keys, agent)
		}
		sort.Strings(keys)
		fmt.Fprintf(&b, "- %s (zone %s): %s Settings: %s\n", typ, s.Zone, s.Description, strings.Join(keys, ", "))
	}
	return b.String()
}

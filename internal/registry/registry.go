package registry

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/roach88/storepilot/internal/compiler"
	"github.com/roach88/storepilot/internal/ir"
)

//go:embed actions.cue
var actionsCUE []byte

// DriftError reports that the registry and a consumer disagree about which
// action kinds exist. It is a programming error, never a user input error.
type DriftError struct {
	Kind      ir.Kind
	Component string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("registry drift: %s has no entry for %s", e.Component, e.Kind)
}

// Registry maps action kinds to their schemas.
type Registry struct {
	schemas map[ir.Kind]ir.ActionSchema
	order   []ir.Kind
}

// New builds a registry from compiled schemas. Duplicate kinds are rejected.
func New(schemas []ir.ActionSchema) (*Registry, error) {
	r := &Registry{schemas: make(map[ir.Kind]ir.ActionSchema, len(schemas))}
	for _, s := range schemas {
		if _, dup := r.schemas[s.Kind]; dup {
			return nil, fmt.Errorf("duplicate schema for %s", s.Kind)
		}
		r.schemas[s.Kind] = s
		r.order = append(r.order, s.Kind)
	}
	return r, nil
}

// Load compiles the embedded registry.
func Load() (*Registry, error) {
	schemas, err := compiler.CompileActions("actions.cue", actionsCUE)
	if err != nil {
		return nil, fmt.Errorf("compile action registry: %w", err)
	}
	return New(schemas)
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the embedded registry. It panics if the embedded document
// does not compile, which the package tests rule out.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load()
		if err != nil {
			panic(err)
		}
		defaultReg = r
	})
	return defaultReg
}

// Lookup returns the schema for kind.
func (r *Registry) Lookup(kind ir.Kind) (ir.ActionSchema, bool) {
	s, ok := r.schemas[kind]
	return s, ok
}

// MustLookup returns the schema for kind and panics with a *DriftError when
// the registry has none.
func (r *Registry) MustLookup(kind ir.Kind) ir.ActionSchema {
	s, ok := r.schemas[kind]
	if !ok {
		panic(&DriftError{Kind: kind, Component: "registry"})
	}
	return s
}

// Has reports whether kind has a schema.
func (r *Registry) Has(kind ir.Kind) bool {
	_, ok := r.schemas[kind]
	return ok
}

// Kinds returns the registered kinds in declaration order.
func (r *Registry) Kinds() []ir.Kind {
	out := make([]ir.Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Schemas returns all schemas in declaration order.
func (r *Registry) Schemas() []ir.ActionSchema {
	out := make([]ir.ActionSchema, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.schemas[k])
	}
	return out
}

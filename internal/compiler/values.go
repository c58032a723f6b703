package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/storepilot/internal/ir"
)

// build compiles src and validates it for concreteness.
func build(filename string, src []byte) (cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// lookup returns the concrete value at name. Optional constraints that were
// never filled in report false.
func lookup(v cue.Value, name string) (cue.Value, bool) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() || !f.IsConcrete() {
		return f, false
	}
	return f, true
}

func optString(v cue.Value, name string) (string, error) {
	f, ok := lookup(v, name)
	if !ok {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optBool(v cue.Value, name string) (bool, error) {
	f, ok := lookup(v, name)
	if !ok {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func optInt(v cue.Value, name string) (*int, error) {
	f, ok := lookup(v, name)
	if !ok {
		return nil, nil
	}
	n, err := f.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	i := int(n)
	return &i, nil
}

func optFloat(v cue.Value, name string) (*float64, error) {
	f, ok := lookup(v, name)
	if !ok {
		return nil, nil
	}
	if f.IncompleteKind() == cue.IntKind {
		n, err := f.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		x := float64(n)
		return &x, nil
	}
	x, err := f.Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return &x, nil
}

func optStrings(v cue.Value, name string) ([]string, error) {
	f, ok := lookup(v, name)
	if !ok {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// optObject exports the struct at name as a normalised JSON object.
func optObject(v cue.Value, name string) (map[string]any, error) {
	f, ok := lookup(v, name)
	if !ok {
		return map[string]any{}, nil
	}
	data, err := f.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	decoded, err := ir.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		return nil, &CompileError{Field: name, Message: "must be a struct", Pos: f.Pos()}
	}
	return m, nil
}

func optStringMap(v cue.Value, name string) (map[string]string, error) {
	out := make(map[string]string)
	f, ok := lookup(v, name)
	if !ok {
		return out, nil
	}
	iter, err := f.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out[iter.Label()] = s
	}
	return out, nil
}

package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/storepilot/internal/ir"
)

// CompileActions parses an action registry document into schemas.
//
// The document must have a top-level "actions" struct whose labels are
// action kinds and whose values carry a description and a "fields" struct:
//
//	actions: UPDATE_HERO_HEADLINE: {
//		description: "Replace the hero headline"
//		fields: headline: {type: "string", required: true, max_length: 120}
//	}
//
// Labels that are not members of ir.Kinds() are rejected, so the registry
// can never describe an action the executor has no name for. Schemas are
// returned in document order.
func CompileActions(filename string, src []byte) ([]ir.ActionSchema, error) {
	v, err := build(filename, src)
	if err != nil {
		return nil, err
	}

	actionsVal := v.LookupPath(cue.ParsePath("actions"))
	if !actionsVal.Exists() {
		return nil, &CompileError{Field: "actions", Message: "actions struct is required", Pos: v.Pos()}
	}

	iter, err := actionsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var schemas []ir.ActionSchema
	for iter.Next() {
		label := iter.Label()
		kind, ok := ir.ParseKind(label)
		if !ok {
			return nil, &CompileError{
				Field:   "actions." + label,
				Message: fmt.Sprintf("unknown action kind %q", label),
				Pos:     iter.Value().Pos(),
			}
		}

		schema, err := compileAction(kind, iter.Value())
		if err != nil {
			return nil, err
		}
		if errs := schema.Validate(); len(errs) > 0 {
			return nil, &CompileError{
				Field:   errs[0].Field,
				Message: errs[0].Message,
				Pos:     iter.Value().Pos(),
			}
		}
		schemas = append(schemas, schema)
	}

	return schemas, nil
}

func compileAction(kind ir.Kind, v cue.Value) (ir.ActionSchema, error) {
	schema := ir.ActionSchema{Kind: kind}

	desc, err := optString(v, "description")
	if err != nil {
		return schema, err
	}
	schema.Description = desc

	fieldsVal, ok := lookup(v, "fields")
	if !ok {
		return schema, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return schema, formatCUEError(err)
	}
	for iter.Next() {
		field, err := compileField(iter.Label(), iter.Value())
		if err != nil {
			return schema, err
		}
		schema.Fields = append(schema.Fields, field)
	}

	return schema, nil
}

func compileField(name string, v cue.Value) (ir.FieldSpec, error) {
	f := ir.FieldSpec{Name: name}

	typ, err := optString(v, "type")
	if err != nil {
		return f, err
	}
	if typ == "" {
		return f, &CompileError{Field: name + ".type", Message: "type is required", Pos: v.Pos()}
	}
	f.Type = ir.FieldType(typ)

	if f.Required, err = optBool(v, "required"); err != nil {
		return f, err
	}
	if f.Description, err = optString(v, "description"); err != nil {
		return f, err
	}
	if f.Enum, err = optStrings(v, "enum"); err != nil {
		return f, err
	}
	if f.MinLength, err = optInt(v, "min_length"); err != nil {
		return f, err
	}
	if f.MaxLength, err = optInt(v, "max_length"); err != nil {
		return f, err
	}
	if f.Min, err = optFloat(v, "min"); err != nil {
		return f, err
	}
	if f.Max, err = optFloat(v, "max"); err != nil {
		return f, err
	}
	if f.Integer, err = optBool(v, "integer"); err != nil {
		return f, err
	}
	items, err := optString(v, "items")
	if err != nil {
		return f, err
	}
	f.Items = ir.FieldType(items)
	if f.MinItems, err = optInt(v, "min_items"); err != nil {
		return f, err
	}
	if f.MaxItems, err = optInt(v, "max_items"); err != nil {
		return f, err
	}

	return f, nil
}

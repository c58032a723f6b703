package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/ir"
)

func TestCompileActionsBasic(t *testing.T) {
	src := []byte(`
		actions: UPDATE_HERO_HEADLINE: {
			description: "Replace the hero headline"
			fields: headline: {type: "string", required: true, min_length: 1, max_length: 120}
		}
		actions: UPDATE_PRODUCT: {
			description: "Patch a product"
			fields: {
				product_id: {type: "string", required: true}
				price: {type: "number", min: 0, integer: true}
				tags: {type: "array", items: "string", max_items: 20}
			}
		}
	`)

	schemas, err := CompileActions("actions.cue", src)
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	hero := schemas[0]
	assert.Equal(t, ir.KindUpdateHeroHeadline, hero.Kind)
	assert.Equal(t, "Replace the hero headline", hero.Description)
	require.Len(t, hero.Fields, 1)
	assert.Equal(t, "headline", hero.Fields[0].Name)
	assert.True(t, hero.Fields[0].Required)
	require.NotNil(t, hero.Fields[0].MaxLength)
	assert.Equal(t, 120, *hero.Fields[0].MaxLength)

	product := schemas[1]
	assert.Equal(t, []string{"product_id"}, product.Required())
	assert.Equal(t, []string{"price", "tags"}, product.Optional())

	price, ok := product.Field("price")
	require.True(t, ok)
	require.NotNil(t, price.Min)
	assert.Equal(t, 0.0, *price.Min)
	assert.Nil(t, price.Max)
	assert.True(t, price.Integer)

	tags, ok := product.Field("tags")
	require.True(t, ok)
	assert.Equal(t, ir.TypeString, tags.Items)
	require.NotNil(t, tags.MaxItems)
	assert.Equal(t, 20, *tags.MaxItems)
}

func TestCompileActionsEnum(t *testing.T) {
	src := []byte(`
		actions: UPDATE_HERO_LAYOUT: fields: layout: {
			type: "string"
			required: true
			enum: ["centered", "split"]
		}
	`)

	schemas, err := CompileActions("actions.cue", src)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, []string{"centered", "split"}, schemas[0].Fields[0].Enum)
}

func TestCompileActionsUnknownKind(t *testing.T) {
	src := []byte(`actions: PAINT_IT_BLACK: fields: {}`)

	_, err := CompileActions("actions.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action kind")
	assert.Contains(t, err.Error(), "PAINT_IT_BLACK")
}

func TestCompileActionsMissingType(t *testing.T) {
	src := []byte(`actions: DELETE_PRODUCT: fields: product_id: required: true`)

	_, err := CompileActions("actions.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type is required")
}

func TestCompileActionsInvalidSchema(t *testing.T) {
	src := []byte(`actions: UPDATE_BRAND_INFO: fields: tone: {type: "number", enum: ["bold"]}`)

	_, err := CompileActions("actions.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enum is only valid on string fields")
}

func TestCompileActionsMissingRoot(t *testing.T) {
	_, err := CompileActions("actions.cue", []byte(`other: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actions struct is required")
}

func TestCompileActionsSyntaxError(t *testing.T) {
	_, err := CompileActions("actions.cue", []byte(`actions: {`))
	require.Error(t, err)
}

func TestCompileActionsIncomplete(t *testing.T) {
	src := []byte(`actions: DELETE_PRODUCT: fields: product_id: {type: string}`)

	_, err := CompileActions("actions.cue", src)
	require.Error(t, err)
}

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/registry"
)

func TestValidateEnvelopeForm(t *testing.T) {
	res := Default().Validate(map[string]any{
		"type":    "UPDATE_HERO_HEADLINE",
		"payload": map[string]any{"headline": "  Summer sale  "},
	})

	require.True(t, res.Valid, res.Errors())
	assert.Equal(t, ir.KindUpdateHeroHeadline, res.Action.Kind)
	assert.Equal(t, ir.Payload{"headline": "Summer sale"}, res.Action.Payload)
}

func TestValidateFlatForm(t *testing.T) {
	res := Default().Validate(map[string]any{
		"type":      "UPDATE_HERO_LAYOUT",
		"layout":    "split",
		"reasoning": "looks better",
	})

	require.True(t, res.Valid, res.Errors())
	assert.Equal(t, ir.Payload{"layout": "split"}, res.Action.Payload)
}

func TestValidateAcceptsIRAction(t *testing.T) {
	res := Default().Validate(ir.Action{
		Kind:    ir.KindDeleteProduct,
		Payload: ir.Payload{"product_id": "p1"},
	})
	require.True(t, res.Valid)
	assert.Equal(t, "p1", res.Action.Payload["product_id"])
}

func TestValidateStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"not an object", "UPDATE_HERO_HEADLINE", "action must be an object, got string"},
		{"array", []any{1}, "action must be an object, got array"},
		{"null", nil, "action must be an object, got null"},
		{"missing type", map[string]any{"payload": map[string]any{}}, `action is missing "type"`},
		{"null type", map[string]any{"type": nil}, `action is missing "type"`},
		{"numeric type", map[string]any{"type": 3}, "action type must be a string, got number"},
		{"unknown type", map[string]any{"type": "LAUNCH_ROCKET"}, `unknown action type "LAUNCH_ROCKET"`},
		{"unsupported value", map[string]any{"type": "DELETE_PRODUCT", "payload": map[string]any{"product_id": make(chan int)}}, "invalid action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Default().Validate(tt.raw)
			require.False(t, res.Valid)
			require.Len(t, res.Issues, 1)
			assert.True(t, res.Issues[0].IsStructural())
			assert.Contains(t, res.Issues[0].Message, tt.want)
		})
	}
}

func TestValidateMissingRequiredAccumulates(t *testing.T) {
	reg, err := registry.New([]ir.ActionSchema{{
		Kind: ir.KindUpdateHeroCTA,
		Fields: []ir.FieldSpec{
			{Name: "cta_text", Type: ir.TypeString, Required: true},
			{Name: "cta_link", Type: ir.TypeString, Required: true},
		},
	}})
	require.NoError(t, err)

	res := New(reg).Validate(map[string]any{"type": "UPDATE_HERO_CTA", "payload": map[string]any{"cta_link": nil}})

	require.False(t, res.Valid)
	assert.Equal(t, []string{
		`UPDATE_HERO_CTA: Missing required field "cta_text"`,
		`UPDATE_HERO_CTA: Missing required field "cta_link"`,
	}, res.Errors())
	for _, issue := range res.Issues {
		assert.Equal(t, ErrCodeMissing, issue.Code)
		assert.Equal(t, ir.KindUpdateHeroCTA, issue.Kind)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		kind    ir.Kind
		payload map[string]any
		code    string
		want    string
	}{
		{"wrong type", ir.KindUpdateHeroHeadline, map[string]any{"headline": 42}, ErrCodeType, `Field "headline" must be a string, got number`},
		{"enum", ir.KindUpdateHeroLayout, map[string]any{"layout": "diagonal"}, ErrCodeEnum, "must be one of [centered, left, right, split]"},
		{"blank after trim", ir.KindUpdateHeroHeadline, map[string]any{"headline": "   "}, ErrCodeLength, "must be at least 1 characters"},
		{"too long", ir.KindUpdateHeroCTA, map[string]any{"cta_text": "this call to action is far too long to fit"}, ErrCodeLength, "must be at most 40 characters"},
		{"negative", ir.KindCreateProduct, map[string]any{"title": "Mug", "price": -1}, ErrCodeRange, `Field "price" must be >= 0`},
		{"fractional", ir.KindCreateProduct, map[string]any{"title": "Mug", "inventory": 2.5}, ErrCodeType, "must be a whole number"},
		{"array type", ir.KindCreateProduct, map[string]any{"title": "Mug", "tags": "kitchen"}, ErrCodeType, "must be an array, got string"},
		{"item type", ir.KindCreateProduct, map[string]any{"title": "Mug", "tags": []any{"ok", 3}}, ErrCodeItems, "item 1 must be a string, got number"},
		{"empty reorder", ir.KindReorderSections, map[string]any{"section_ids": []any{}}, ErrCodeItems, "must have at least 1 items"},
		{"object type", ir.KindGenerateProductDescriptions, map[string]any{"descriptions": []any{"x"}}, ErrCodeType, "must be an object, got array"},
		{"object value type", ir.KindGenerateProductDescriptions, map[string]any{"descriptions": map[string]any{"p1": "ok", "p2": 3}}, ErrCodeItems, `value "p2" must be a string, got number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Default().Validate(map[string]any{"type": string(tt.kind), "payload": tt.payload})
			require.False(t, res.Valid)
			require.Len(t, res.Issues, 1)
			assert.Equal(t, tt.code, res.Issues[0].Code)
			assert.Contains(t, res.Issues[0].Message, tt.want)
			assert.Contains(t, res.Issues[0].Message, string(tt.kind)+":")
		})
	}
}

func TestValidateReportsMissingAndFieldErrorsTogether(t *testing.T) {
	res := Default().Validate(map[string]any{
		"type":    "UPDATE_PRODUCT",
		"payload": map[string]any{"price": "free"},
	})
	require.False(t, res.Valid)
	assert.Len(t, res.Issues, 2)
}

func TestValidatePayloadNotObject(t *testing.T) {
	res := Default().Validate(map[string]any{"type": "DELETE_PRODUCT", "payload": "p1"})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors()[0], "payload must be an object")
}

func TestValidateDropsUnknownFieldsAndNulls(t *testing.T) {
	res := Default().Validate(map[string]any{
		"type": "CREATE_PRODUCT",
		"payload": map[string]any{
			"title":       "Mug",
			"description": nil,
			"colour":      "blue",
			"price":       1200.0,
		},
	})
	require.True(t, res.Valid, res.Errors())
	assert.Equal(t, ir.Payload{"title": "Mug", "price": int64(1200)}, res.Action.Payload)
}

func TestValidateNormalisesUnicode(t *testing.T) {
	res := Default().Validate(map[string]any{
		"type":    "UPDATE_BRAND_INFO",
		"payload": map[string]any{"name": "Cafe\u0301 Noir "},
	})
	require.True(t, res.Valid)
	assert.Equal(t, "Caf\u00e9 Noir", res.Action.Payload["name"])
}

func TestValidateSanitizesNestedValues(t *testing.T) {
	res := Default().Validate(map[string]any{
		"type": "ADD_SECTION",
		"payload": map[string]any{
			"section_type": " newsletter ",
			"settings":     map[string]any{"title": " Hi ", "tags": []any{" a "}},
		},
	})
	require.True(t, res.Valid)
	assert.Equal(t, "newsletter", res.Action.Payload["section_type"])
	assert.Equal(t, map[string]any{"title": "Hi", "tags": []any{"a"}}, res.Action.Payload["settings"])
}

func TestValidateTrimsType(t *testing.T) {
	res := Default().Validate(map[string]any{"type": " DELETE_PRODUCT ", "product_id": "p1"})
	require.True(t, res.Valid)
	assert.Equal(t, ir.KindDeleteProduct, res.Action.Kind)
}

func TestValidatePanicsOnRegistryDrift(t *testing.T) {
	reg, err := registry.New(nil)
	require.NoError(t, err)

	assert.PanicsWithValue(t, &registry.DriftError{Kind: ir.KindDeleteProduct, Component: "registry"}, func() {
		New(reg).Validate(map[string]any{"type": "DELETE_PRODUCT", "product_id": "p1"})
	})
}

func TestValidateBrandInfoWithNoFields(t *testing.T) {
	res := Default().Validate(map[string]any{"type": "UPDATE_BRAND_INFO", "payload": map[string]any{}})
	require.True(t, res.Valid)
	assert.Empty(t, res.Action.Payload)
}

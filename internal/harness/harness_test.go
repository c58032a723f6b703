package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storepilot/internal/agent"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectations
description: Every expectation here is wrong.
turns:
  - instruction: Add an FAQ
    actions:
      - { type: ADD_SECTION, payload: { section_type: faq } }
    expect: { success: false, mutations: 3, error_contains: boom }
assertions:
  - { type: sections, ids: [] }
  - { type: products, count: 2 }
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "expected success=false")
}

func TestRun_SeedsHeroAndProducts(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: seeded
description: Seeded content is visible to the first turn.
seed:
  brand: { name: Acme Goods, tone: playful }
  products:
    - { id: p1, title: Mug, price: 1200, is_active: false }
  hero: { title: Brew better }
  sections:
    - { id: s1, type: faq, position: 0, visible: false }
turns:
  - instruction: Change the headline
    actions:
      - { type: UPDATE_HERO_HEADLINE, payload: { headline: Brew the best } }
assertions:
  - { type: brand, expect: { name: Acme Goods, tone: playful } }
  - { type: products, count: 1 }
  - { type: hero, expect: { headline: Brew the best } }
  - { type: section, id: s1, expect: { visible: false, type: faq } }
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.State.Products[0].IsActive)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown field":             "name: a\ndescription: b\nturns: [{instruction: x, reply: y}]\nassertion: []\n",
		"no turns":                  "name: a\ndescription: b\n",
		"no name":                   "description: b\nturns: [{instruction: x, reply: y}]\n",
		"both reply and actions":    "name: a\ndescription: b\nturns: [{instruction: x, reply: y, actions: []}]\n",
		"neither reply nor actions": "name: a\ndescription: b\nturns: [{instruction: x}]\n",
		"unknown assertion":         "name: a\ndescription: b\nturns: [{instruction: x, reply: y}]\nassertions: [{type: vibes}]\n",
		"section without id":        "name: a\ndescription: b\nturns: [{instruction: x, reply: y}]\nassertions: [{type: section, expect: {a: 1}}]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseScenario_DefaultsMerchant(t *testing.T) {
	s, err := ParseScenario([]byte("name: a\ndescription: b\nturns: [{instruction: x, reply: y}]\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMerchant, s.Merchant)
}

func TestScriptFor_EncodesActions(t *testing.T) {
	replies, err := scriptFor([]TurnStep{
		{Instruction: "a", Reply: "hello"},
		{Instruction: "b", Actions: []any{map[string]any{"type": "REMOVE_SECTION"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", `{"actions":[{"type":"REMOVE_SECTION"}]}`}, replies)
}

func TestCheckTurn(t *testing.T) {
	yes, two := true, 2
	errs := checkTurn(&TurnExpect{Success: &yes, Mutations: &two, Explanation: "done"},
		agent.Report{Success: true, Explanation: "done"})
	assert.Equal(t, []string{"expected 2 mutations, got 0"}, errs)
	assert.Empty(t, checkTurn(nil, agent.Report{}))
}

func TestSubset(t *testing.T) {
	actual := map[string]any{
		"position": int64(2),
		"settings": map[string]any{"title": "Hi", "items": []any{"a"}},
	}
	assert.NoError(t, subset("", actual, map[string]any{"position": 2.0}))
	assert.NoError(t, subset("", actual, map[string]any{"settings": map[string]any{"items": []any{"a"}}}))
	assert.ErrorContains(t, subset("", actual, map[string]any{"settings": map[string]any{"title": "Bye"}}), "settings.title")
	assert.ErrorContains(t, subset("", actual, map[string]any{"missing": true}), "missing")
}

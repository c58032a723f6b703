package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Cascade(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		strategy    string
		actions     int
		thinking    string
		explanation string
	}{
		{
			name:     "fenced envelope",
			text:     "Sure.\n```json\n{\"thinking\":\"add it\",\"actions\":[{\"type\":\"ADD_SECTION\",\"payload\":{\"section_type\":\"faq\"}}],\"explanation\":\"Added an FAQ.\"}\n```\n",
			strategy: "fenced_json", actions: 1, thinking: "add it", explanation: "Added an FAQ.",
		},
		{
			name:     "fenced block without language tag",
			text:     "```\n[{\"type\":\"REMOVE_SECTION\",\"payload\":{\"section_id\":\"s1\"}}]\n```",
			strategy: "fenced_json", actions: 1,
		},
		{
			name:        "whole document envelope",
			text:        `  {"actions": [], "explanation": "Nothing to change."}  `,
			strategy:    "whole_json",
			explanation: "Nothing to change.",
		},
		{
			name:     "bare action object",
			text:     `{"type":"UPDATE_HERO_HEADLINE","payload":{"headline":"Hi"}}`,
			strategy: "whole_json", actions: 1,
		},
		{
			name:     "bare action array",
			text:     `[{"type":"A"},{"type":"B"}]`,
			strategy: "whole_json", actions: 2,
		},
		{
			name:     "fragment inside broken JSON",
			text:     `{"thinking": "tweak [the] hero", "actions": [{"type":"UPDATE_HERO_LAYOUT","payload":{"layout":"split"}}], "explanation": "Split layout." trailing`,
			strategy: "actions_fragment", actions: 1, thinking: "tweak [the] hero", explanation: "Split layout.",
		},
		{
			name:     "fragment with brackets inside strings",
			text:     `Here: "actions": [{"type":"UPDATE_HERO_HEADLINE","payload":{"headline":"Sale ] now ["}}] done`,
			strategy: "actions_fragment", actions: 1,
		},
		{
			name:        "prose",
			text:        "  I can't do that without a product id.\n",
			strategy:    "prose",
			explanation: "I can't do that without a product id.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.text, DefaultStrategies())
			assert.Equal(t, tt.strategy, p.Strategy)
			assert.Len(t, p.Actions, tt.actions)
			assert.Equal(t, tt.thinking, p.Thinking)
			assert.Equal(t, tt.explanation, p.Explanation)
		})
	}
}

func TestParse_ProseCarriesParseError(t *testing.T) {
	p := Parse("no json here", DefaultStrategies())

	var perr *ParseError
	require.ErrorAs(t, p.Err, &perr)
	assert.Equal(t, "prose", perr.Strategy)
	assert.Equal(t, len("no json here"), perr.Length)
	assert.NotNil(t, p.Actions)
}

func TestParse_JSONStrategiesHaveNoError(t *testing.T) {
	p := Parse(`{"actions":[]}`, DefaultStrategies())
	assert.NoError(t, p.Err)
	assert.Empty(t, p.Actions)
	assert.NotNil(t, p.Actions)
}

func TestParse_NoStrategyMatches(t *testing.T) {
	p := Parse(" plain ", []Strategy{FencedJSON{}, WholeJSON{}})

	assert.Equal(t, "none", p.Strategy)
	assert.Equal(t, "plain", p.Explanation)
	assert.Empty(t, p.Actions)
	assert.Error(t, p.Err)
}

func TestFencedJSON_SkipsUnusableBlocks(t *testing.T) {
	text := "```go\nfunc main() {}\n```\nthen\n```json\n{\"actions\":[{\"type\":\"X\"}]}\n```"
	p, ok := FencedJSON{}.Parse(text)
	require.True(t, ok)
	assert.Len(t, p.Actions, 1)
}

func TestWholeJSON_RejectsNonActionDocuments(t *testing.T) {
	for _, text := range []string{`{"foo": 1}`, `"just a string"`, `42`, `{"actions": "nope"}`, ``} {
		_, ok := WholeJSON{}.Parse(text)
		assert.False(t, ok, text)
	}
}

func TestActionsFragment_Unterminated(t *testing.T) {
	_, ok := ActionsFragment{}.Parse(`"actions": [{"type":"X"}`)
	assert.False(t, ok)
}

func TestMatchBracket(t *testing.T) {
	s := `[1, "a]\"b", [2, {"c": [3]}]] tail`
	assert.Equal(t, len(s)-len(" tail")-1, matchBracket(s, 0))
	assert.Equal(t, -1, matchBracket(`[1, 2`, 0))
}

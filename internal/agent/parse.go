package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/storepilot/internal/ir"
)

// Parsed is the structured reading of one model reply. Actions are the raw
// candidate action values, not yet validated.
type Parsed struct {
	Thinking    string
	Actions     []any
	Explanation string
	Strategy    string
	// Err is a *ParseError when no strategy found JSON in the reply.
	Err error
}

// ParseError reports a reply with no recoverable JSON. It is never fatal:
// the reply is kept as the explanation of a turn with no actions.
type ParseError struct {
	Strategy string
	Length   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no JSON actions in %d-byte reply (fell back to %s)", e.Length, e.Strategy)
}

// Strategy is one way of reading a model reply. Parse reports false when
// the strategy does not apply so the next one can be tried.
type Strategy interface {
	Name() string
	Parse(text string) (Parsed, bool)
}

// DefaultStrategies is the standard cascade, most specific first.
func DefaultStrategies() []Strategy {
	return []Strategy{FencedJSON{}, WholeJSON{}, ActionsFragment{}, ProseFallback{}}
}

// Parse runs strategies in order and returns the first match. When none
// applies the whole text becomes the explanation. Actions is never nil.
func Parse(text string, strategies []Strategy) Parsed {
	for _, s := range strategies {
		if p, ok := s.Parse(text); ok {
			p.Strategy = s.Name()
			if p.Actions == nil {
				p.Actions = []any{}
			}
			if _, prose := s.(ProseFallback); prose {
				p.Err = &ParseError{Strategy: p.Strategy, Length: len(text)}
			}
			return p
		}
	}
	return Parsed{
		Explanation: strings.TrimSpace(text),
		Actions:     []any{},
		Strategy:    "none",
		Err:         &ParseError{Strategy: "none", Length: len(text)},
	}
}

var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z]*[ \\t]*\\r?\\n(.*?)```")

// FencedJSON reads the first fenced code block holding a usable response.
type FencedJSON struct{}

func (FencedJSON) Name() string { return "fenced_json" }

func (FencedJSON) Parse(text string) (Parsed, bool) {
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if p, ok := interpret(strings.TrimSpace(m[1])); ok {
			return p, true
		}
	}
	return Parsed{}, false
}

// WholeJSON reads the entire reply as one JSON document.
type WholeJSON struct{}

func (WholeJSON) Name() string { return "whole_json" }

func (WholeJSON) Parse(text string) (Parsed, bool) {
	return interpret(strings.TrimSpace(text))
}

var actionsKey = regexp.MustCompile(`"actions"\s*:\s*\[`)

// ActionsFragment digs an "actions": [...] array out of otherwise invalid
// JSON, picking up "thinking" and "explanation" strings when present.
type ActionsFragment struct{}

func (ActionsFragment) Name() string { return "actions_fragment" }

func (ActionsFragment) Parse(text string) (Parsed, bool) {
	loc := actionsKey.FindStringIndex(text)
	if loc == nil {
		return Parsed{}, false
	}
	open := loc[1] - 1
	end := matchBracket(text, open)
	if end < 0 {
		return Parsed{}, false
	}
	v, err := ir.DecodeJSON([]byte(text[open : end+1]))
	if err != nil {
		return Parsed{}, false
	}
	actions, ok := v.([]any)
	if !ok {
		return Parsed{}, false
	}
	return Parsed{
		Thinking:    stringField(text, "thinking"),
		Actions:     actions,
		Explanation: stringField(text, "explanation"),
	}, true
}

// ProseFallback accepts anything: the reply is an explanation with no actions.
type ProseFallback struct{}

func (ProseFallback) Name() string { return "prose" }

func (ProseFallback) Parse(text string) (Parsed, bool) {
	return Parsed{Explanation: strings.TrimSpace(text), Actions: []any{}}, true
}

// interpret accepts a response envelope, a bare action array, a single bare
// action object, or an envelope carrying only thinking/explanation.
func interpret(src string) (Parsed, bool) {
	if src == "" {
		return Parsed{}, false
	}
	v, err := ir.DecodeJSON([]byte(src))
	if err != nil {
		return Parsed{}, false
	}
	switch val := v.(type) {
	case []any:
		return Parsed{Actions: val}, true
	case map[string]any:
		thinking, _ := val["thinking"].(string)
		explanation, _ := val["explanation"].(string)
		if raw, ok := val["actions"]; ok {
			actions, isArray := raw.([]any)
			if !isArray && raw != nil {
				return Parsed{}, false
			}
			return Parsed{Thinking: thinking, Actions: actions, Explanation: explanation}, true
		}
		if _, ok := val["type"]; ok {
			return Parsed{Actions: []any{val}}, true
		}
		if _, ok := val["explanation"]; ok {
			return Parsed{Thinking: thinking, Explanation: explanation}, true
		}
	}
	return Parsed{}, false
}

// matchBracket returns the index of the bracket closing the one at open,
// skipping brackets inside JSON strings, or -1.
func matchBracket(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stringField extracts the string value of "key": "..." anywhere in text.
func stringField(text, key string) string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*("(?:[^"\\]|\\.)*")`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	var out string
	if err := json.Unmarshal([]byte(m[1]), &out); err != nil {
		return ""
	}
	return out
}

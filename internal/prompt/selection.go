package prompt

import "fmt"

// Selection is the storefront element the merchant had focused when giving
// an instruction, e.g. a section clicked in the editor preview.
type Selection struct {
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool {
	return s.Kind == "" && s.ID == "" && s.Label == ""
}

// Describe renders the selection for the user message, e.g.
// `section s-faq ("Questions")`.
func (s Selection) Describe() string {
	kind := s.Kind
	if kind == "" {
		kind = "element"
	}
	out := kind
	if s.ID != "" {
		out += " " + s.ID
	}
	if s.Label != "" {
		out += fmt.Sprintf(" (%q)", s.Label)
	}
	return out
}

package state

import (
	"fmt"
	"strings"
)

const notSet = "(not set)"

// Summarize renders a fixed-field digest of s for prompt context.
// It is never parsed back.
func Summarize(s StoreState) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = notSet
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	line("Store name", s.Brand.Name)
	line("Category", s.Brand.Category)
	line("Tone", s.Brand.Tone)
	fmt.Fprintf(&b, "Products: %d\n", len(s.Products))
	line("Hero headline", s.Homepage.Hero.Headline)
	fmt.Fprintf(&b, "Sections: %d\n", len(s.Homepage.Sections))
	fmt.Fprintf(&b, "Assets: %d\n", len(s.Assets))
	return b.String()
}

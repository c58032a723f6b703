package prompt

import (
	"fmt"
	"strings"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/registry"
	"github.com/roach88/storepilot/internal/state"
)

// Builder renders the two prompt halves of one turn.
type Builder interface {
	System(st state.StoreState) (string, error)
	User(instruction string, sel Selection) string
}

const fence = "```"

const intro = `You edit a merchant's storefront by emitting actions. You can read only the
store state below and you change it only through the listed actions.

Reply with one JSON object inside a ` + fence + `json fenced block:
{"thinking": "<your reasoning>", "actions": [<action>, ...], "explanation": "<what you changed, for the merchant>"}

Rules:
- Reference products, sections and assets by the ids shown in the state. Never invent ids.
- Use an empty actions array when the request needs no change or cannot be done.
- Prices and inventory are whole numbers; prices are in the smallest currency unit.
`

// Default is the standard Builder.
type Default struct {
	docs    string
	listing string
}

var _ Builder = (*Default)(nil)

// New returns a Builder embedding the given action reference and section
// catalog listing.
func New(docs, listing string) *Default {
	return &Default{docs: docs, listing: listing}
}

// NewDefault returns a Builder over the built-in registry and catalog.
func NewDefault() *Default {
	return New(registry.Default().Docs(), catalog.Default().Listing())
}

// System renders the system prompt for st.
func (d *Default) System(st state.StoreState) (string, error) {
	doc, err := st.JSON()
	if err != nil {
		return "", fmt.Errorf("render state: %w", err)
	}

	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(d.docs, "\n"))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(d.listing, "\n"))
	b.WriteString("\n\n## Current store\n\n")
	b.WriteString(state.Summarize(st))
	b.WriteString("\n## Store state\n\n" + fence + "json\n")
	b.Write(doc)
	b.WriteString("\n" + fence + "\n")
	return b.String(), nil
}

// User renders the user message.
func (d *Default) User(instruction string, sel Selection) string {
	var b strings.Builder
	b.WriteString("Instruction: ")
	b.WriteString(strings.TrimSpace(instruction))
	b.WriteString("\n")
	if !sel.IsZero() {
		b.WriteString("Selected: ")
		b.WriteString(sel.Describe())
		b.WriteString("\n")
	}
	return b.String()
}

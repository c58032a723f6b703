// Package prompt renders the text sent to the language model: a system
// prompt carrying the action reference, the section catalog and the current
// store state, and a user message carrying the merchant's instruction.
package prompt

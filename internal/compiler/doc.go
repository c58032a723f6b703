// Package compiler turns CUE declarations into ir schema types.
//
// Two documents are compiled here: the action registry (action kind to
// field rules) and the section catalog (section type to default settings
// and agent-facing key names). Both are validated by CUE definitions first,
// so a typo in a refinement name or an unknown field type is rejected with
// a source position before any Go code sees it.
//
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
package compiler

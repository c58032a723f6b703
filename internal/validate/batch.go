package validate

import "github.com/roach88/storepilot/internal/ir"

// BatchResult partitions a batch into sanitized valid actions and the full
// per-element results. Valid is true only when every element validated.
type BatchResult struct {
	Valid        bool
	ValidActions []ir.Action
	Results      []Result
}

// ValidateActions validates each element of raws in order.
func (v *Validator) ValidateActions(raws []any) BatchResult {
	out := BatchResult{Valid: true, Results: make([]Result, len(raws))}
	for i, raw := range raws {
		res := v.Validate(raw)
		out.Results[i] = res
		if res.Valid {
			out.ValidActions = append(out.ValidActions, res.Action)
		} else {
			out.Valid = false
		}
	}
	return out
}

// Outcome is the orchestrator-facing summary of a validated batch.
// Success means at least one action survived; Errors lists every message
// from the elements that did not.
type Outcome struct {
	Success bool
	Actions []ir.Action
	Errors  []string
}

// ParseAndValidateActions validates raws and keeps the valid subset.
func (v *Validator) ParseAndValidateActions(raws []any) Outcome {
	batch := v.ValidateActions(raws)
	out := Outcome{
		Success: len(batch.ValidActions) > 0,
		Actions: batch.ValidActions,
		Errors:  []string{},
	}
	if out.Actions == nil {
		out.Actions = []ir.Action{}
	}
	for _, res := range batch.Results {
		if !res.Valid {
			out.Errors = append(out.Errors, res.Errors()...)
		}
	}
	return out
}

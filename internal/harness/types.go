package harness

import (
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
)

// TraceEvent records one turn.
type TraceEvent struct {
	Turn        int           `json:"turn"`
	Instruction string        `json:"instruction"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Rejected    []string      `json:"rejected,omitempty"`
	Mutations   []ir.Mutation `json:"mutations"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every turn expectation and assertion held.
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
	// State is the session's state after the last turn.
	State state.StoreState `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

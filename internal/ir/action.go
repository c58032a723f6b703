package ir

// Action is a validated request for one discrete change to a StoreState.
//
// Actions are plain values: once sanitized they never reference live state,
// and Clone gives callers an independent copy of the payload.
type Action struct {
	Kind    Kind    `json:"type"`
	Payload Payload `json:"payload"`
}

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	return Action{Kind: a.Kind, Payload: a.Payload.Clone()}
}

// Mutation is the audit record of one executed action.
//
// Success reports what actually happened, independent of what the agent
// intended. Error is set only when Success is false.
type Mutation struct {
	Type    Kind           `json:"type"`
	Payload Payload        `json:"payload"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Result  map[string]any `json:"result,omitempty"`
}

// Succeeded builds a successful mutation for action with the given result.
func Succeeded(a Action, result map[string]any) Mutation {
	return Mutation{
		Type:    a.Kind,
		Payload: a.Payload.Clone(),
		Success: true,
		Result:  result,
	}
}

// Failed builds a failed mutation for action carrying err's message.
func Failed(a Action, err error) Mutation {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Mutation{
		Type:    a.Kind,
		Payload: a.Payload.Clone(),
		Success: false,
		Error:   msg,
	}
}

// AllSucceeded reports whether every mutation in the slice succeeded.
// An empty slice counts as success.
func AllSucceeded(ms []Mutation) bool {
	for _, m := range ms {
		if !m.Success {
			return false
		}
	}
	return true
}

// Package agent runs conversational editing turns for one merchant.
//
// A Session owns the merchant's current StoreState and turn history. Each
// call to Process loads or revalidates the state, asks the model for
// actions, validates them, executes the survivors in order and records the
// turn. Process never panics on bad model output and never returns an
// error: every outcome is described by the Report.
package agent

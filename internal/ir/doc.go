// Package ir provides the foundational value types for storepilot.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// action vocabulary the lowest layer, shared by the registry, the validator,
// the executor and the agent.
//
// Key design constraints:
//   - Kind is a closed set; Kinds() lists every member in declaration order
//   - Payload values are limited to string, int64, float64, bool, []any, map[string]any
//   - Integral JSON numbers are always int64 after normalisation
//   - All JSON tags use snake_case
package ir

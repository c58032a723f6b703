// Package validate checks raw, untrusted action objects against the action
// registry and produces sanitized ir.Action values.
//
// Validation never short-circuits: every missing required field and every
// bad known field is reported in one pass. Fields the registry does not
// name are dropped without error, so extra model output is tolerated.
package validate

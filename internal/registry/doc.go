// Package registry is the action schema registry: for every action kind it
// declares the payload fields, their primitive types and refinements.
//
// The registry is declared in CUE (actions.cue, embedded) and compiled once.
// Closed CUE definitions reject misspelled rule names, and the compiler
// rejects labels that are not ir.Kind values, so the registry cannot name
// an action the rest of the system does not know.
package registry

// Package state defines StoreState, the single document the agent reads and
// the executor rewrites, and builds it from the persistence collaborator.
//
// StoreState never carries storage URLs or internal section settings in its
// JSON form: those ride along in json:"-" fields so the executor can persist
// full records while the agent only ever sees labels and simplified keys.
package state

// Package engine applies validated actions to a StoreState.
//
// The Executor runs one action at a time against a deep copy of the
// caller's state. Each handler performs its external writes through a
// store.Repository before touching the copy, so a failed write leaves the
// in-memory document exactly as it was. Batches are fail-stop: the first
// failed mutation ends the batch and earlier actions stay applied.
//
// Expected failures (a missing product, a rejected write, an unknown kind)
// come back as failed ir.Mutation values carrying a *DomainError message.
// The only panic is registry drift: a kind the validator accepts that has
// no handler here.
package engine

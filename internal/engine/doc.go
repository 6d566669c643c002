// Package engine validates batches of lowered units concurrently.
//
// One immutable compiler.Validator is shared by every worker. Each unit is
// owned by exactly one worker for the duration of its validation, so no
// locking happens inside the validator itself.
//
// Every unit in a batch gets a run id, a sequence number and a content
// fingerprint. Run ids and sequence numbers are assigned in input order
// before any worker starts, which keeps batch output deterministic under a
// deterministic id generator. When a store is configured, each report is
// persisted as soon as its unit finishes.
//
// Cancellation stops scheduling of new units; a unit whose validation has
// started always runs to completion.
package engine

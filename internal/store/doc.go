// Package store provides SQLite-backed history of validation runs.
//
// Each run records one validation of one unit: its run id, the unit name,
// the unit fingerprint, the IR version, the outcome and the logical
// sequence number. Diagnostics are stored one row per diagnostic in report
// order.
//
// Ordering:
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - Ties are broken by id COLLATE BINARY
//
// Queries:
//   - ListRuns and QueryRuns compile through the runquery package, so every
//     read is parameterized and ordered by seq DESC, id DESC
//
// Idempotency:
//   - WriteRun ignores a run id that already exists
//   - A run and its diagnostics are written in one transaction
package store

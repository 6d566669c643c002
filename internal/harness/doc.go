// Package harness runs conformance scenarios against the validator.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: loop_increment_mismatch
//	description: "LoopEnd increment disagrees with LoopInfo"
//	unit: ../units/loop_unit_b.yaml   # or an inline `ir:` document
//	unit_name: loop_unit_b            # only for files declaring several units
//	range: {begin: 0, end: 5}         # optional, defaults to the whole unit
//	fail_fast: false
//	expect:
//	  valid: false
//	  codes: [E222]
//	  absent: [E224]
//	  loop_ids: [0]
//	  cluster_ids: []
//
// codes, loop_ids and cluster_ids are subset matches: every listed value must
// be reported, others may be reported too. absent lists codes that must not
// be reported.
//
// # Deterministic Testing
//
// Each scenario runs in a fresh in-memory SQLite store with sequential run
// ids ("<name>-0001") and a deterministic clock, so stored records and golden
// snapshots are identical across runs.
//
// Golden files hold the canonical JSON form of compiler.Result.Snapshot and
// live under testdata/golden/<name>.golden.
package harness

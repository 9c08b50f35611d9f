// Package harness runs YAML scenarios against a live binder.
//
// A scenario binds list A (ints) to list B (strings) with strconv.Itoa and
// strconv.Atoi, applies a sequence of structural operations to either list,
// and checks:
//   - per-step errors (expect_error)
//   - final list contents (expect)
//   - trace assertions (trace_count, trace_order, list_equals)
//   - optionally, the canonical trace against a golden file
//
// Runs are deterministic: each uses a fresh StepClock and SequentialTokens
// from internal/testutil, so the same scenario always yields byte-identical
// canonical output.
//
// Example:
//
//	name: end_to_end
//	description: two-way binding from A
//	initial_a: [1, 2]
//	steps:
//	  - {list: A, op: add, items: ["3"]}
//	  - {list: B, op: remove_at, index: 0}
//	expect:
//	  a: [2, 3]
//	  b: ["2", "3"]
package harness

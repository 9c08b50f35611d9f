// Package binding keeps two observable lists of different item types in
// step.
//
// A Binder[A, B] holds list A, list B, a conversion A -> B and a conversion
// B -> A. When either list announces a structural change the binder replays
// the same change on the other list, converting the affected items. When
// property binding is enabled it also forwards per-item property edits
// between the matched (A, B) pairs using one of three strategies.
//
// ARCHITECTURE:
//
// Inline replay:
// Nothing is queued. A change on list A is handled inside the stack frame of
// the call that mutated A (list.Append, list.Set, ...), and the mirrored
// mutation on list B has completed before that call returns. Errors from a
// conversion function or a custom property map surface from the same call,
// unwrapped.
//
// Feedback suppression:
// Replaying a change on list B makes list B announce a change of its own.
// The Guard marks "sync in progress" for the duration of a replay so that
// announcement is recognised as the binder's own echo and ignored. The guard
// is a depth counter, not a lock.
//
// Source of truth:
// Config.Source names the authoritative list. Rebinds (attaching a list
// while the other one is present) rebuild the non-authoritative list from
// the authoritative one. With Bidirectional off, writing to the
// non-authoritative list is reported as a one-way violation and is not
// propagated.
//
// CONSTRAINTS:
//
//   - A Binder is single-threaded. Concurrent writers to either bound list
//     (even individually locked lists) can interleave inside the binder and
//     break the element-wise correspondence. This is unsupported.
//   - There is no rollback. A conversion error part-way through a multi-item
//     add or a reset leaves the two lists out of step; the caller must detect
//     this (lengths differ) and repair it, for example by re-attaching.
//   - Close must be called to release subscriptions. Nothing is released by
//     garbage collection.
package binding

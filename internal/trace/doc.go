// Package trace records what a list binder did.
//
// Every change a binder observes, every mutation it replays onto the other
// list, every rebind and every property propagation is described by an
// Event. Events carry a logical sequence number assigned by the binder's
// clock, never a wall-clock timestamp, so the same sequence of list
// operations always yields the same trace.
//
// Traces serialize to canonical JSON (sorted keys, NFC-normalised strings,
// no insignificant whitespace) so they can be compared byte-for-byte in
// golden files and stored in the journal.
package trace

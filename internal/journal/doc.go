// Package journal persists binder trace events in SQLite.
//
// The journal is append-only:
//   - binders: one row per binder name, with the first sequence number seen
//   - events: one row per trace.Event, keyed by (binder, seq)
//
// # Ordering
//
// Events are ordered by their logical sequence number, never by wall time.
// Reading a binder's events always uses ORDER BY seq ASC, so two runs of the
// same operations produce identical listings.
//
// # Idempotency
//
// Appending an event whose (binder, seq) already exists is a no-op. A binder
// that resumes its clock with binding.NewClockAt(MaxSeq(...)) never collides
// with earlier rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - 5-second busy timeout
//   - foreign keys enforced
//
// These are set through the go-sqlite3 DSN so every pooled connection
// carries them.
package journal

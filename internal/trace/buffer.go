package trace

import "slices"

// Buffer is an in-memory Recorder. The zero value is ready for use.
// Not safe for concurrent use; binders are single-threaded by contract.
type Buffer struct {
	events []Event
}

// Record appends ev.
func (b *Buffer) Record(ev Event) {
	b.events = append(b.events, ev)
}

// Events returns a copy of the recorded events in order.
func (b *Buffer) Events() []Event {
	return slices.Clone(b.events)
}

// Len returns the number of recorded events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Count returns how many recorded events have the given kind.
func (b *Buffer) Count(kind Kind) int {
	n := 0
	for _, ev := range b.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the events for which keep reports true.
func (b *Buffer) Filter(keep func(Event) bool) []Event {
	var out []Event
	for _, ev := range b.events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops all recorded events.
func (b *Buffer) Reset() {
	b.events = nil
}

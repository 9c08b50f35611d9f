package trace

// Kind categorizes a trace event.
type Kind string

const (
	// KindObserved: an external structural change arrived on a bound list.
	KindObserved Kind = "observed"

	// KindSuppressed: a change arrived while a sync was in progress and was
	// ignored (it is the binder's own replay).
	KindSuppressed Kind = "suppressed"

	// KindReplayed: the binder applied a mutation to the counterpart list.
	KindReplayed Kind = "replayed"

	// KindViolation: the non-authoritative list was written in one-way mode.
	KindViolation Kind = "violation"

	// KindAttach and KindDetach: a list reference was assigned or cleared.
	KindAttach Kind = "attach"
	KindDetach Kind = "detach"

	// KindRebind: the counterpart list was rebuilt from the source of truth.
	KindRebind Kind = "rebind"

	// KindProperty: a property change was propagated to a counterpart item.
	KindProperty Kind = "property"

	// KindClose: the binder released all subscriptions.
	KindClose Kind = "close"
)

// Event is one entry in a binder trace.
//
// Index and ToIndex are -1 when they do not apply. Count is the number of
// items the event covers (0 when not applicable).
type Event struct {
	Seq      int64  `json:"seq"`
	Binder   string `json:"binder,omitempty"`
	Kind     Kind   `json:"kind"`
	Side     string `json:"side,omitempty"`
	Action   string `json:"action,omitempty"`
	Index    int    `json:"index"`
	ToIndex  int    `json:"to_index"`
	Count    int    `json:"count,omitempty"`
	Property string `json:"property,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

// CanonicalMap returns the event as a map holding only the fields that apply,
// suitable for MarshalCanonical.
func (e Event) CanonicalMap() map[string]any {
	m := map[string]any{
		"seq":  e.Seq,
		"kind": string(e.Kind),
	}
	if e.Binder != "" {
		m["binder"] = e.Binder
	}
	if e.Side != "" {
		m["side"] = e.Side
	}
	if e.Action != "" {
		m["action"] = e.Action
	}
	if e.Index >= 0 {
		m["index"] = e.Index
	}
	if e.ToIndex >= 0 {
		m["to_index"] = e.ToIndex
	}
	if e.Count > 0 {
		m["count"] = e.Count
	}
	if e.Property != "" {
		m["property"] = e.Property
	}
	if e.Strategy != "" {
		m["strategy"] = e.Strategy
	}
	return m
}

// Recorder receives events as they happen. Record must not call back into
// the binder that produced the event.
type Recorder interface {
	Record(Event)
}

// Discard is a Recorder that drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Event) {}

// Multi fans events out to several recorders in order.
func Multi(recorders ...Recorder) Recorder {
	return multi(recorders)
}

type multi []Recorder

func (m multi) Record(ev Event) {
	for _, r := range m {
		r.Record(ev)
	}
}

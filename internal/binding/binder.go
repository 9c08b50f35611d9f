package binding

import (
	"fmt"
	"log/slog"

	"github.com/roach88/listbind/internal/observable"
	"github.com/roach88/listbind/internal/trace"
)

// Converter turns an item of one list into a fresh item for the other.
//
// Converters must be total over what the source list can hold. The binder
// never assumes the two converters are inverses, never caches results, and
// calls the converter once per replayed item: appending the same instance
// twice yields two independent counterparts.
type Converter[From, To any] func(From) (To, error)

// core is the type-independent state shared by the generic replay code.
type core struct {
	name   string
	cfg    Config
	pinned bool
	guard  Guard
	clock  Sequencer
	rec    trace.Recorder
	logger *slog.Logger
	closed bool
}

func (c *core) event(kind trace.Kind, side Side) trace.Event {
	return trace.Event{Kind: kind, Side: string(side), Index: -1, ToIndex: -1}
}

func (c *core) emit(ev trace.Event) {
	ev.Seq = c.clock.Next()
	ev.Binder = c.name
	c.rec.Record(ev)
}

// replayed records a mutation applied to the target list.
func (c *core) replayed(target Side, action observable.Action, index, toIndex, count int) {
	replaysTotal.WithLabelValues(action.String(), string(target)).Inc()
	ev := c.event(trace.KindReplayed, target)
	ev.Action = action.String()
	ev.Index = index
	ev.ToIndex = toIndex
	ev.Count = count
	c.emit(ev)
	c.logger.Debug("change replayed",
		"binder", c.name,
		"target", target,
		"action", action.String(),
		"index", index,
		"count", count,
	)
}

// pairHooks keeps the property binder aligned with a replay from a list of
// S onto a list of T.
type pairHooks[S, T any] struct {
	insert  func(i int, s S, t T) error
	remove  func(i int)
	replace func(i int, s S, t T) error
	move    func(from, to int)
	clear   func()
}

// Binder synchronizes list A (items of type A) with list B (items of type B).
//
// Invariant: whenever both lists are attached and the last public call
// returned without error, the lists have equal length and B[i] was converted
// from A[i] (or A[i] from B[i], for changes that started on B).
type Binder[A, B any] struct {
	core

	listA   observable.Sequence[A]
	listB   observable.Sequence[B]
	cancelA observable.CancelFunc
	cancelB observable.CancelFunc

	toB Converter[A, B]
	toA Converter[B, A]

	props  *propertyBinder[A, B]
	hooksA pairHooks[A, B] // replay A -> B
	hooksB pairHooks[B, A] // replay B -> A
}

// New creates a Binder with no lists attached.
//
// Both converters are required. Options are applied in order; the resulting
// Config must pass Validate.
func New[A, B any](toB Converter[A, B], toA Converter[B, A], opts ...Option) (*Binder[A, B], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if toB == nil || toA == nil {
		return nil, &Error{
			Code:    ErrCodeInvalidConfiguration,
			Message: "both conversion functions are required",
			Binder:  o.name,
		}
	}
	if err := o.config.Validate(); err != nil {
		if be, ok := err.(*Error); ok {
			be.Binder = o.name
		}
		return nil, err
	}

	var maps customMaps[A, B]
	if o.custom != nil {
		m, ok := o.custom.(customMaps[A, B])
		if !ok {
			return nil, NewUnsupportedConfiguration(o.name,
				fmt.Sprintf("custom property map %T does not match binder item types", o.custom))
		}
		maps = m
	}
	if o.config.Strategy == StrategyCustom && maps.forward == nil && maps.reverse == nil {
		return nil, NewUnsupportedConfiguration(o.name, "custom strategy requires WithCustomMap")
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.clock == nil {
		o.clock = NewClock()
	}
	if o.recorder == nil {
		o.recorder = trace.Discard
	}
	if o.tokens == nil {
		o.tokens = UUIDv7Generator{}
	}

	b := &Binder[A, B]{
		core: core{
			name:   o.name,
			cfg:    o.config,
			pinned: o.pinned,
			clock:  o.clock,
			rec:    o.recorder,
			logger: o.logger,
		},
		toB: toB,
		toA: toA,
	}
	b.props = newPropertyBinder(b, o.tokens, maps)

	b.hooksA = pairHooks[A, B]{
		insert:  b.props.insert,
		remove:  b.props.remove,
		replace: b.props.replace,
		move:    b.props.move,
		clear:   b.props.unbindAll,
	}
	b.hooksB = pairHooks[B, A]{
		insert:  func(i int, itemB B, itemA A) error { return b.props.insert(i, itemA, itemB) },
		remove:  b.props.remove,
		replace: func(i int, itemB B, itemA A) error { return b.props.replace(i, itemA, itemB) },
		move:    b.props.move,
		clear:   b.props.unbindAll,
	}

	return b, nil
}

// Bind creates a Binder and attaches both lists. With the default config
// list B is rebuilt from list A.
func Bind[A, B any](
	listA observable.Sequence[A],
	listB observable.Sequence[B],
	toB Converter[A, B],
	toA Converter[B, A],
	opts ...Option,
) (*Binder[A, B], error) {
	b, err := New(toB, toA, opts...)
	if err != nil {
		return nil, err
	}
	if err := b.AttachA(listA); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.AttachB(listB); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Name returns the binder's label.
func (b *Binder[A, B]) Name() string {
	return b.name
}

// Config returns a copy of the current configuration.
func (b *Binder[A, B]) Config() Config {
	return b.cfg
}

// ListA returns the attached list A, or nil.
func (b *Binder[A, B]) ListA() observable.Sequence[A] {
	return b.listA
}

// ListB returns the attached list B, or nil.
func (b *Binder[A, B]) ListB() observable.Sequence[B] {
	return b.listB
}

// Syncing reports whether a sync operation is in progress.
func (b *Binder[A, B]) Syncing() bool {
	return b.guard.InProgress()
}

// AttachA replaces the list A reference.
//
// If list B is attached, the non-authoritative list is cleared and rebuilt
// item by item from the source of truth, and property bindings are rebuilt
// from scratch. Passing nil detaches list A; list B is then cleared only if
// A is the source of truth.
func (b *Binder[A, B]) AttachA(list observable.Sequence[A]) error {
	if b.closed {
		return newClosedError(b.name)
	}
	if b.cancelA != nil {
		b.cancelA()
		b.cancelA = nil
	}
	b.props.unbindAll()
	b.listA = list

	if list == nil {
		b.emit(b.event(trace.KindDetach, SideA))
		b.logger.Info("list detached", "binder", b.name, "side", SideA)
		return b.detached(SideA)
	}

	b.cancelA = list.Subscribe(b.onChangeA)
	ev := b.event(trace.KindAttach, SideA)
	ev.Count = list.Len()
	b.emit(ev)
	b.logger.Info("list attached", "binder", b.name, "side", SideA, "len", list.Len())

	if b.listB == nil {
		return nil
	}
	return b.rebind()
}

// AttachB replaces the list B reference. See AttachA.
func (b *Binder[A, B]) AttachB(list observable.Sequence[B]) error {
	if b.closed {
		return newClosedError(b.name)
	}
	if b.cancelB != nil {
		b.cancelB()
		b.cancelB = nil
	}
	b.props.unbindAll()
	b.listB = list

	if list == nil {
		b.emit(b.event(trace.KindDetach, SideB))
		b.logger.Info("list detached", "binder", b.name, "side", SideB)
		return b.detached(SideB)
	}

	b.cancelB = list.Subscribe(b.onChangeB)
	ev := b.event(trace.KindAttach, SideB)
	ev.Count = list.Len()
	b.emit(ev)
	b.logger.Info("list attached", "binder", b.name, "side", SideB, "len", list.Len())

	if b.listA == nil {
		return nil
	}
	return b.rebind()
}

// detached clears the counterpart when the detached side is the source of
// truth. Otherwise the counterpart keeps its items and reconciling a later
// attach is the caller's business.
func (b *Binder[A, B]) detached(side Side) error {
	if side != b.cfg.Source {
		return nil
	}

	tok := b.guard.Begin()
	defer tok.Release()

	switch {
	case side == SideA && b.listB != nil:
		if err := b.listB.Clear(); err != nil {
			return err
		}
		b.replayed(SideB, observable.ActionReset, -1, -1, 0)
	case side == SideB && b.listA != nil:
		if err := b.listA.Clear(); err != nil {
			return err
		}
		b.replayed(SideA, observable.ActionReset, -1, -1, 0)
	}
	return nil
}

// rebind rebuilds the non-authoritative list from the source of truth.
// This is the only full resynchronization outside of a Reset replay.
func (b *Binder[A, B]) rebind() error {
	tok := b.guard.Begin()
	defer tok.Release()

	b.props.unbindAll()
	rebindsTotal.Inc()

	target := b.cfg.Source.Other()
	var err error
	if b.cfg.Source == SideA {
		err = rebuild(b.listA, b.listB, b.toB, b.hooksA.insert)
	} else {
		err = rebuild(b.listB, b.listA, b.toA, b.hooksB.insert)
	}

	ev := b.event(trace.KindRebind, target)
	if target == SideB {
		ev.Count = b.listB.Len()
	} else {
		ev.Count = b.listA.Len()
	}
	b.emit(ev)
	b.logger.Info("counterpart rebuilt",
		"binder", b.name,
		"source", b.cfg.Source,
		"target", target,
		"len", ev.Count,
		"error", err,
	)
	return err
}

// rebuild clears dst and appends a conversion of every item of src.
func rebuild[S, T any](src observable.Sequence[S], dst observable.Sequence[T], convert Converter[S, T], bound func(int, S, T) error) error {
	if err := dst.Clear(); err != nil {
		return err
	}
	for i, item := range src.Items() {
		conv, err := convert(item)
		if err != nil {
			return err
		}
		if err := dst.Insert(i, conv); err != nil {
			return err
		}
		if err := bound(i, item, conv); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder[A, B]) onChangeA(c observable.Change[A]) error {
	return handleChange(&b.core, SideA, c, b.listA, b.listB, b.toB, b.hooksA)
}

func (b *Binder[A, B]) onChangeB(c observable.Change[B]) error {
	return handleChange(&b.core, SideB, c, b.listB, b.listA, b.toA, b.hooksB)
}

// handleChange processes a change announced by the list on side.
func handleChange[S, T any](
	c *core,
	side Side,
	ch observable.Change[S],
	src observable.Sequence[S],
	dst observable.Sequence[T],
	convert Converter[S, T],
	hooks pairHooks[S, T],
) error {
	ev := c.event(trace.KindObserved, side)
	ev.Action = ch.Action.String()
	ev.Index, ev.ToIndex, ev.Count = changeSpan(ch)

	// 1. Our own replay echoing back.
	if c.guard.InProgress() {
		suppressedTotal.Inc()
		ev.Kind = trace.KindSuppressed
		c.emit(ev)
		return nil
	}

	// 2. Nothing to propagate to.
	if dst == nil {
		return nil
	}
	c.emit(ev)

	// 3. One-way binding written from the wrong side.
	if side != c.cfg.Source && !c.cfg.Bidirectional {
		violationsTotal.WithLabelValues(string(side)).Inc()
		vev := c.event(trace.KindViolation, side)
		vev.Action = ch.Action.String()
		c.emit(vev)
		c.logger.Warn("one-way binding violated",
			"binder", c.name,
			"side", side,
			"source", c.cfg.Source,
			"action", ch.Action.String(),
		)
		return NewOneWayViolation(c.name, side, ch.Action)
	}

	// 4. Replay inside a sync scope.
	tok := c.guard.Begin()
	defer tok.Release()

	return replay(c, side.Other(), ch, src, dst, convert, hooks)
}

// replay applies the equivalent of ch to dst.
func replay[S, T any](
	c *core,
	target Side,
	ch observable.Change[S],
	src observable.Sequence[S],
	dst observable.Sequence[T],
	convert Converter[S, T],
	hooks pairHooks[S, T],
) error {
	switch ch.Action {
	case observable.ActionAdd:
		for off, item := range ch.NewItems {
			conv, err := convert(item)
			if err != nil {
				return err
			}
			idx := ch.NewIndex + off
			if err := dst.Insert(idx, conv); err != nil {
				return err
			}
			c.replayed(target, ch.Action, idx, -1, 1)
			if err := hooks.insert(idx, item, conv); err != nil {
				return err
			}
		}

	case observable.ActionRemove:
		// Each removal shifts the rest down, so the same index is removed
		// once per item.
		for range ch.OldItems {
			if err := dst.RemoveAt(ch.OldIndex); err != nil {
				return err
			}
			hooks.remove(ch.OldIndex)
			c.replayed(target, ch.Action, ch.OldIndex, -1, 1)
		}

	case observable.ActionReplace:
		start := ch.NewIndex
		if start < 0 {
			start = ch.OldIndex
		}
		for off, item := range ch.NewItems {
			conv, err := convert(item)
			if err != nil {
				return err
			}
			idx := start + off
			if err := dst.Set(idx, conv); err != nil {
				return err
			}
			c.replayed(target, ch.Action, idx, -1, 1)
			if err := hooks.replace(idx, item, conv); err != nil {
				return err
			}
		}

	case observable.ActionMove:
		if err := dst.Move(ch.OldIndex, ch.NewIndex); err != nil {
			return err
		}
		hooks.move(ch.OldIndex, ch.NewIndex)
		c.replayed(target, ch.Action, ch.OldIndex, ch.NewIndex, 1)

	case observable.ActionReset:
		// A reset carries no payload: rebuild from the current source.
		hooks.clear()
		if err := rebuild(src, dst, convert, hooks.insert); err != nil {
			return err
		}
		c.replayed(target, ch.Action, -1, -1, dst.Len())

	default:
		c.logger.Error("unknown change action",
			"binder", c.name,
			"side", target.Other(),
			"action", int(ch.Action),
		)
		return NewUnknownAction(c.name, target.Other(), ch.Action)
	}
	return nil
}

// changeSpan extracts index, to-index and item count for tracing.
func changeSpan[S any](ch observable.Change[S]) (index, toIndex, count int) {
	switch ch.Action {
	case observable.ActionAdd:
		return ch.NewIndex, -1, len(ch.NewItems)
	case observable.ActionRemove:
		return ch.OldIndex, -1, len(ch.OldItems)
	case observable.ActionReplace:
		return ch.NewIndex, -1, len(ch.NewItems)
	case observable.ActionMove:
		return ch.OldIndex, ch.NewIndex, 1
	default:
		return -1, -1, 0
	}
}

// SetBidirectional switches between one-way and two-way propagation.
// Property subscriptions are rewired for the new direction.
func (b *Binder[A, B]) SetBidirectional(bidirectional bool) error {
	if b.closed {
		return newClosedError(b.name)
	}
	next := b.cfg
	next.Bidirectional = bidirectional
	if err := b.reconfigure(next); err != nil {
		return err
	}
	b.logger.Info("directionality changed", "binder", b.name, "config", b.cfg.String())
	return nil
}

// Bidirectional reports whether changes on the non-authoritative list are
// propagated.
func (b *Binder[A, B]) Bidirectional() bool {
	return b.cfg.Bidirectional
}

// SetSource changes the source of truth. No structural action is taken; the
// new source governs later rebinds and one-way checks. Fails with an
// unsupported configuration error when the binder was built with
// WithPinnedSource.
func (b *Binder[A, B]) SetSource(side Side) error {
	if b.closed {
		return newClosedError(b.name)
	}
	if b.pinned {
		return NewUnsupportedConfiguration(b.name,
			fmt.Sprintf("source of truth is pinned to list %s", b.cfg.Source))
	}
	next := b.cfg
	next.Source = side
	if err := next.Validate(); err != nil {
		return err
	}
	if err := b.reconfigure(next); err != nil {
		return err
	}
	b.logger.Info("source of truth changed", "binder", b.name, "config", b.cfg.String())
	return nil
}

// Source returns the source of truth.
func (b *Binder[A, B]) Source() Side {
	return b.cfg.Source
}

// SetPropertyBind enables or disables per-item property propagation.
// Enabling binds every current pair; disabling releases every subscription.
func (b *Binder[A, B]) SetPropertyBind(enabled bool) error {
	if b.closed {
		return newClosedError(b.name)
	}
	next := b.cfg
	next.PropertyBind = enabled
	if err := next.Validate(); err != nil {
		return err
	}
	if !enabled {
		b.props.unbindAll()
		b.cfg = next
		return nil
	}
	return b.reconfigure(next)
}

// reconfigure installs next and rebuilds the property pairs under it. If the
// pairs cannot be bound, the previous configuration and its pairs are
// restored and the binding error is returned.
func (b *Binder[A, B]) reconfigure(next Config) error {
	prev := b.cfg
	b.cfg = next
	err := b.props.rewire()
	if err == nil {
		return nil
	}
	b.cfg = prev
	if rerr := b.props.rewire(); rerr != nil {
		b.logger.Error("restoring property pairs failed",
			"binder", b.name,
			"config", prev.String(),
			"error", rerr,
		)
	}
	return err
}

// PropertyBind reports whether property propagation is enabled.
func (b *Binder[A, B]) PropertyBind() bool {
	return b.cfg.PropertyBind
}

// SetStrategy changes the property strategy. Rejected while property
// binding is enabled; disable it first.
func (b *Binder[A, B]) SetStrategy(s Strategy) error {
	if b.closed {
		return newClosedError(b.name)
	}
	if b.cfg.PropertyBind {
		return NewUnsupportedConfiguration(b.name, "cannot change strategy while property binding is enabled")
	}
	next := b.cfg
	next.Strategy = s
	if err := next.Validate(); err != nil {
		return err
	}
	if s == StrategyCustom && !b.props.hasMaps() {
		return NewUnsupportedConfiguration(b.name, "custom strategy requires WithCustomMap")
	}
	b.cfg = next
	return nil
}

// Pairs returns the number of item pairs holding property subscriptions.
func (b *Binder[A, B]) Pairs() int {
	return len(b.props.pairs)
}

// PairToken returns the opaque handle of the pair at index i.
func (b *Binder[A, B]) PairToken(i int) (string, bool) {
	if i < 0 || i >= len(b.props.pairs) {
		return "", false
	}
	return b.props.pairs[i].token, true
}

// Close releases every structural and property subscription. The lists
// keep their items. Close is idempotent; any other method on a closed
// binder fails with an ErrCodeClosed error.
func (b *Binder[A, B]) Close() error {
	if b.closed {
		return nil
	}
	if b.cancelA != nil {
		b.cancelA()
		b.cancelA = nil
	}
	if b.cancelB != nil {
		b.cancelB()
		b.cancelB = nil
	}
	b.props.unbindAll()
	b.listA = nil
	b.listB = nil
	b.closed = true

	b.emit(b.event(trace.KindClose, ""))
	b.logger.Info("binder closed", "binder", b.name)
	return nil
}

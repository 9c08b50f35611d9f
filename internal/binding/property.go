package binding

import (
	"fmt"
	"slices"

	"github.com/roach88/listbind/internal/observable"
	"github.com/roach88/listbind/internal/trace"
)

// PropertyChange is the notification a PropertyMap receives.
type PropertyChange = observable.PropertyChange

// pair is one bound (A, B) item pair and the subscriptions it holds.
type pair[A, B any] struct {
	token   string
	a       A
	b       B
	cancels []observable.CancelFunc
}

func (p *pair[A, B]) release() {
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

// propertyBinder tracks item pairs by position. pairs[i] is the pair for
// listA[i] and listB[i]; duplicates of the same instance get separate
// pairs, each with its own token.
type propertyBinder[A, B any] struct {
	owner   *Binder[A, B]
	tokens  TokenGenerator
	maps    customMaps[A, B]
	pairs   []*pair[A, B]
	byToken map[string]*pair[A, B]
}

func newPropertyBinder[A, B any](owner *Binder[A, B], tokens TokenGenerator, maps customMaps[A, B]) *propertyBinder[A, B] {
	return &propertyBinder[A, B]{
		owner:   owner,
		tokens:  tokens,
		maps:    maps,
		byToken: make(map[string]*pair[A, B]),
	}
}

func (p *propertyBinder[A, B]) active() bool {
	return p.owner.cfg.PropertyBind
}

func (p *propertyBinder[A, B]) hasMaps() bool {
	return p.maps.forward != nil || p.maps.reverse != nil
}

// insert binds a new pair at index i.
func (p *propertyBinder[A, B]) insert(i int, a A, b B) error {
	if !p.active() {
		return nil
	}
	if i < 0 || i > len(p.pairs) {
		return fmt.Errorf("pair index %d out of range [0,%d]", i, len(p.pairs))
	}
	pr := &pair[A, B]{token: p.tokens.Generate(), a: a, b: b}
	p.pairs = slices.Insert(p.pairs, i, pr)
	p.byToken[pr.token] = pr
	boundPairs.Inc()
	return p.subscribe(pr)
}

// remove unbinds the pair at index i.
func (p *propertyBinder[A, B]) remove(i int) {
	if i < 0 || i >= len(p.pairs) {
		return
	}
	p.drop(p.pairs[i])
	p.pairs = slices.Delete(p.pairs, i, i+1)
}

// replace unbinds the pair at index i and binds (a, b) in its place.
func (p *propertyBinder[A, B]) replace(i int, a A, b B) error {
	if !p.active() {
		return nil
	}
	if i < 0 || i >= len(p.pairs) {
		return fmt.Errorf("pair index %d out of range [0,%d)", i, len(p.pairs))
	}
	p.drop(p.pairs[i])
	pr := &pair[A, B]{token: p.tokens.Generate(), a: a, b: b}
	p.pairs[i] = pr
	p.byToken[pr.token] = pr
	boundPairs.Inc()
	return p.subscribe(pr)
}

func (p *propertyBinder[A, B]) move(from, to int) {
	if from < 0 || from >= len(p.pairs) || to < 0 || to >= len(p.pairs) || from == to {
		return
	}
	pr := p.pairs[from]
	p.pairs = slices.Delete(p.pairs, from, from+1)
	p.pairs = slices.Insert(p.pairs, to, pr)
}

// unbindAll releases every pair.
func (p *propertyBinder[A, B]) unbindAll() {
	for _, pr := range p.pairs {
		p.drop(pr)
	}
	p.pairs = nil
}

func (p *propertyBinder[A, B]) drop(pr *pair[A, B]) {
	pr.release()
	delete(p.byToken, pr.token)
	boundPairs.Dec()
}

// rewire rebuilds every pair from the current lists after a configuration
// change.
func (p *propertyBinder[A, B]) rewire() error {
	p.unbindAll()
	if !p.active() {
		return nil
	}
	o := p.owner
	if o.listA == nil || o.listB == nil {
		return nil
	}
	n := min(o.listA.Len(), o.listB.Len())
	for i := 0; i < n; i++ {
		if err := p.insert(i, o.listA.At(i), o.listB.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// subscribe wires the property subscriptions the current direction allows.
// Items that do not announce property changes are paired but not watched.
func (p *propertyBinder[A, B]) subscribe(pr *pair[A, B]) error {
	cfg := p.owner.cfg

	if cfg.forward() {
		if n, ok := any(pr.a).(observable.PropertyNotifier); ok {
			if err := p.check(SideB, any(pr.b), p.maps.forward != nil); err != nil {
				return err
			}
			pr.cancels = append(pr.cancels, n.SubscribeProperty(func(c PropertyChange) error {
				return p.onA(pr, c)
			}))
		}
	}
	if cfg.reverse() {
		if n, ok := any(pr.b).(observable.PropertyNotifier); ok {
			if err := p.check(SideA, any(pr.a), p.maps.reverse != nil); err != nil {
				return err
			}
			pr.cancels = append(pr.cancels, n.SubscribeProperty(func(c PropertyChange) error {
				return p.onB(pr, c)
			}))
		}
	}
	return nil
}

// check verifies the strategy can deliver to a counterpart on target.
func (p *propertyBinder[A, B]) check(target Side, counterpart any, haveMap bool) error {
	o := p.owner
	switch o.cfg.Strategy {
	case StrategyRelay:
		if _, ok := counterpart.(observable.PropertyRaiser); !ok {
			return NewUnsupportedConfiguration(o.name,
				fmt.Sprintf("relay strategy needs list %s items that raise property changes, got %T", target, counterpart))
		}
	case StrategyCustom:
		if !haveMap {
			return NewUnsupportedConfiguration(o.name,
				fmt.Sprintf("custom strategy has no property map toward list %s", target))
		}
	}
	return nil
}

// onA propagates a property edit on an A item to its B counterpart.
func (p *propertyBinder[A, B]) onA(pr *pair[A, B], change PropertyChange) error {
	o := p.owner
	if o.guard.InProgress() {
		return nil
	}
	tok := o.guard.Begin()
	defer tok.Release()

	i := slices.Index(p.pairs, pr)
	if i < 0 {
		// Unbound while this notification was being delivered.
		return nil
	}
	switch o.cfg.Strategy {
	case StrategyRecreate:
		if o.listB == nil {
			return nil
		}
		conv, err := o.toB(pr.a)
		if err != nil {
			return err
		}
		if err := o.listB.Set(i, conv); err != nil {
			return err
		}
		if err := p.replace(i, pr.a, conv); err != nil {
			return err
		}
	case StrategyRelay:
		r, ok := any(pr.b).(observable.PropertyRaiser)
		if !ok {
			return nil
		}
		if err := r.RaisePropertyChanged(change.Name); err != nil {
			return err
		}
	case StrategyCustom:
		if p.maps.forward == nil {
			return nil
		}
		if err := p.maps.forward(change, pr.a, pr.b); err != nil {
			return err
		}
	default:
		return nil
	}

	p.propagated(SideB, i, change)
	return nil
}

// onB propagates a property edit on a B item to its A counterpart.
func (p *propertyBinder[A, B]) onB(pr *pair[A, B], change PropertyChange) error {
	o := p.owner
	if o.guard.InProgress() {
		return nil
	}
	tok := o.guard.Begin()
	defer tok.Release()

	i := slices.Index(p.pairs, pr)
	if i < 0 {
		// Unbound while this notification was being delivered.
		return nil
	}
	switch o.cfg.Strategy {
	case StrategyRecreate:
		if o.listA == nil {
			return nil
		}
		conv, err := o.toA(pr.b)
		if err != nil {
			return err
		}
		if err := o.listA.Set(i, conv); err != nil {
			return err
		}
		if err := p.replace(i, conv, pr.b); err != nil {
			return err
		}
	case StrategyRelay:
		r, ok := any(pr.a).(observable.PropertyRaiser)
		if !ok {
			return nil
		}
		if err := r.RaisePropertyChanged(change.Name); err != nil {
			return err
		}
	case StrategyCustom:
		if p.maps.reverse == nil {
			return nil
		}
		if err := p.maps.reverse(change, pr.b, pr.a); err != nil {
			return err
		}
	default:
		return nil
	}

	p.propagated(SideA, i, change)
	return nil
}

func (p *propertyBinder[A, B]) propagated(target Side, index int, change PropertyChange) {
	o := p.owner
	strategy := string(o.cfg.Strategy)
	propertyPropagationsTotal.WithLabelValues(strategy).Inc()

	ev := o.event(trace.KindProperty, target)
	ev.Index = index
	ev.Property = change.Name
	ev.Strategy = strategy
	o.emit(ev)
	o.logger.Debug("property propagated",
		"binder", o.name,
		"target", target,
		"index", index,
		"property", change.Name,
		"strategy", strategy,
	)
}

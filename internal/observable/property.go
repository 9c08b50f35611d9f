package observable

import "slices"

// PropertyChange describes an edit to a named property of an item.
type PropertyChange struct {
	Name string
}

// PropertyHandler receives property change notifications.
type PropertyHandler func(PropertyChange) error

// PropertyNotifier is implemented by items whose property edits can be
// observed.
type PropertyNotifier interface {
	SubscribeProperty(h PropertyHandler) CancelFunc
}

// PropertyRaiser is implemented by items that let a third party raise their
// property notification without touching any state.
type PropertyRaiser interface {
	PropertyNotifier
	RaisePropertyChanged(name string) error
}

type propertySubscription struct {
	id int
	h  PropertyHandler
}

// PropertyEvents is an embeddable implementation of PropertyRaiser.
//
//	type Person struct {
//	    observable.PropertyEvents
//	    name string
//	}
//
//	func (p *Person) SetName(n string) error {
//	    p.name = n
//	    return p.RaisePropertyChanged("Name")
//	}
//
// The zero value is ready for use. Embed it by value in a type that is always
// used through a pointer.
type PropertyEvents struct {
	subs   []propertySubscription
	nextID int
}

// SubscribeProperty registers h.
func (p *PropertyEvents) SubscribeProperty(h PropertyHandler) CancelFunc {
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, propertySubscription{id: id, h: h})
	return func() {
		p.subs = slices.DeleteFunc(p.subs, func(s propertySubscription) bool {
			return s.id == id
		})
	}
}

// RaisePropertyChanged notifies subscribers that name changed. The first
// handler error stops delivery and is returned.
func (p *PropertyEvents) RaisePropertyChanged(name string) error {
	subs := slices.Clone(p.subs)
	for _, s := range subs {
		if err := s.h(PropertyChange{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

// PropertySubscribers returns the number of registered handlers.
func (p *PropertyEvents) PropertySubscribers() int {
	return len(p.subs)
}

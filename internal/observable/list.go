package observable

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is returned (wrapped) when a mutation addresses an index
// outside the list.
var ErrIndexOutOfRange = errors.New("index out of range")

var _ Sequence[int] = (*List[int])(nil)

type subscription[T any] struct {
	id int
	h  Handler[T]
}

// List is a mutable observable sequence. The zero value is an empty list
// ready for use.
type List[T any] struct {
	items  []T
	subs   []subscription[T]
	nextID int
}

// NewList creates a list holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// At returns the item at index i.
func (l *List[T]) At(i int) T {
	return l.items[i]
}

// Items returns a copy of the items in order.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

// IndexFunc returns the first index whose item satisfies f, or -1.
func (l *List[T]) IndexFunc(f func(T) bool) int {
	return slices.IndexFunc(l.items, f)
}

// Subscribe registers h. Handlers run in subscription order.
func (l *List[T]) Subscribe(h Handler[T]) CancelFunc {
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscription[T]{id: id, h: h})
	return func() {
		l.subs = slices.DeleteFunc(l.subs, func(s subscription[T]) bool {
			return s.id == id
		})
	}
}

// Subscribers returns the number of registered handlers.
func (l *List[T]) Subscribers() int {
	return len(l.subs)
}

// Append adds items to the end of the list as one ActionAdd. Appending
// nothing is a no-op and announces nothing.
func (l *List[T]) Append(items ...T) error {
	return l.InsertAll(len(l.items), items...)
}

// Insert places item at index i.
func (l *List[T]) Insert(i int, item T) error {
	return l.InsertAll(i, item)
}

// InsertAll places items contiguously starting at index i as one ActionAdd.
func (l *List[T]) InsertAll(i int, items ...T) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("insert at %d (len %d): %w", i, len(l.items), ErrIndexOutOfRange)
	}
	if len(items) == 0 {
		return nil
	}
	added := slices.Clone(items)
	l.items = slices.Insert(l.items, i, added...)
	return l.notify(Change[T]{
		Action:   ActionAdd,
		OldIndex: -1,
		NewIndex: i,
		NewItems: added,
	})
}

// RemoveAt deletes the item at index i.
func (l *List[T]) RemoveAt(i int) error {
	return l.RemoveRange(i, 1)
}

// RemoveRange deletes count items starting at index i as one ActionRemove.
func (l *List[T]) RemoveRange(i, count int) error {
	if count < 0 || i < 0 || i+count > len(l.items) {
		return fmt.Errorf("remove [%d,%d) (len %d): %w", i, i+count, len(l.items), ErrIndexOutOfRange)
	}
	if count == 0 {
		return nil
	}
	removed := slices.Clone(l.items[i : i+count])
	l.items = slices.Delete(l.items, i, i+count)
	return l.notify(Change[T]{
		Action:   ActionRemove,
		OldIndex: i,
		NewIndex: -1,
		OldItems: removed,
	})
}

// Set overwrites the item at index i.
func (l *List[T]) Set(i int, item T) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("set at %d (len %d): %w", i, len(l.items), ErrIndexOutOfRange)
	}
	old := l.items[i]
	l.items[i] = item
	return l.notify(Change[T]{
		Action:   ActionReplace,
		OldIndex: i,
		NewIndex: i,
		OldItems: []T{old},
		NewItems: []T{item},
	})
}

// Move relocates the item at oldIndex so that it ends up at newIndex.
func (l *List[T]) Move(oldIndex, newIndex int) error {
	n := len(l.items)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return fmt.Errorf("move %d -> %d (len %d): %w", oldIndex, newIndex, n, ErrIndexOutOfRange)
	}
	item := l.items[oldIndex]
	l.items = slices.Delete(l.items, oldIndex, oldIndex+1)
	l.items = slices.Insert(l.items, newIndex, item)
	return l.notify(Change[T]{
		Action:   ActionMove,
		OldIndex: oldIndex,
		NewIndex: newIndex,
		OldItems: []T{item},
		NewItems: []T{item},
	})
}

// Clear removes every item and announces ActionReset, even when the list was
// already empty.
func (l *List[T]) Clear() error {
	l.items = nil
	return l.notify(Change[T]{Action: ActionReset, OldIndex: -1, NewIndex: -1})
}

// Reset replaces the whole content with items and announces ActionReset.
func (l *List[T]) Reset(items []T) error {
	l.items = slices.Clone(items)
	return l.notify(Change[T]{Action: ActionReset, OldIndex: -1, NewIndex: -1})
}

// notify delivers c to a snapshot of the current subscribers so handlers may
// subscribe or cancel during delivery.
func (l *List[T]) notify(c Change[T]) error {
	subs := slices.Clone(l.subs)
	for _, s := range subs {
		if err := s.h(c); err != nil {
			return err
		}
	}
	return nil
}

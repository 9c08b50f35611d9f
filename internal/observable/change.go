package observable

import "fmt"

// Action identifies the kind of structural mutation a Change describes.
type Action int

const (
	// ActionAdd: NewItems were inserted contiguously starting at NewIndex.
	ActionAdd Action = iota

	// ActionRemove: OldItems were removed contiguously starting at OldIndex.
	ActionRemove

	// ActionReplace: the items starting at NewIndex (== OldIndex) were
	// overwritten. OldItems holds the previous values, NewItems the new ones.
	ActionReplace

	// ActionMove: one item moved from OldIndex to NewIndex.
	ActionMove

	// ActionReset: the list changed wholesale (Clear or Reset). The change
	// carries no enumerable payload; observers must re-read the list.
	ActionReset
)

// String returns the lower-case name of the action.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionReplace:
		return "replace"
	case ActionMove:
		return "move"
	case ActionReset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Change is the notification delivered after a structural mutation.
//
// Index fields that do not apply to the action are -1. Item slices that do
// not apply are nil:
//
//	Add:     NewIndex, NewItems
//	Remove:  OldIndex, OldItems
//	Replace: OldIndex == NewIndex, OldItems, NewItems
//	Move:    OldIndex, NewIndex, OldItems == NewItems == [moved item]
//	Reset:   nothing
type Change[T any] struct {
	Action   Action
	OldIndex int
	NewIndex int
	OldItems []T
	NewItems []T
}

// Handler receives change notifications. A non-nil error aborts delivery to
// later handlers and is returned from the mutating call.
type Handler[T any] func(Change[T]) error

// CancelFunc removes a subscription. Calling it more than once is a no-op.
type CancelFunc func()

// Sequence is the capability a list must offer to be bound: indexed CRUD plus
// a structured change notification.
type Sequence[T any] interface {
	// Len returns the number of items.
	Len() int

	// At returns the item at index i. Panics if i is out of range, like a
	// slice index.
	At(i int) T

	// Items returns a copy of the current items in order.
	Items() []T

	// Set overwrites the item at index i and announces ActionReplace.
	Set(i int, item T) error

	// Insert places item at index i (0 <= i <= Len) and announces ActionAdd.
	Insert(i int, item T) error

	// RemoveAt deletes the item at index i and announces ActionRemove.
	RemoveAt(i int) error

	// Move relocates the item at oldIndex to newIndex and announces ActionMove.
	Move(oldIndex, newIndex int) error

	// Clear removes every item and announces ActionReset.
	Clear() error

	// Subscribe registers h for change notifications.
	Subscribe(h Handler[T]) CancelFunc
}

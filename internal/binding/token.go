package binding

import (
	"github.com/google/uuid"
)

// TokenGenerator produces the opaque handles that identify bound item
// pairs. Handles must be unique for the lifetime of a binder.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 pair tokens.
//
// Pair tokens key the property subscriptions of each (A, B) pair, so two
// pairs built from the same item instance never collide even though the
// items themselves compare equal.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

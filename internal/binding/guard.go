package binding

// Guard marks that a sync operation is in progress.
//
// Begin may nest; the guard reads InProgress until the outermost token is
// released. Guard is for same-goroutine re-entrancy suppression only and
// provides no mutual exclusion across goroutines.
type Guard struct {
	depth int
}

// GuardToken is the scope returned by Begin. Release it exactly once,
// normally with defer.
type GuardToken struct {
	g        *Guard
	released bool
}

// Begin opens a sync scope.
func (g *Guard) Begin() *GuardToken {
	g.depth++
	return &GuardToken{g: g}
}

// InProgress reports whether any scope is open.
func (g *Guard) InProgress() bool {
	return g.depth > 0
}

// Depth returns the number of open scopes.
func (g *Guard) Depth() int {
	return g.depth
}

// Release closes the scope. Releasing a token twice is a no-op, so a
// deferred Release after an explicit one is safe.
func (t *GuardToken) Release() {
	if t.released {
		return
	}
	t.released = true
	t.g.depth--
}

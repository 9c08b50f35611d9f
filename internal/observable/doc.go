// Package observable provides list and item types that announce their own
// mutations.
//
// A List[T] is an ordered, index-addressable sequence. Every structural
// mutation (append, insert, remove, replace, move, clear, reset) is applied
// first and then announced to subscribers as a single Change[T] carrying the
// action kind, the affected indices and the affected items. Subscribers run
// inline, in subscription order, on the goroutine that performed the
// mutation. The first subscriber error stops delivery and is returned from
// the mutating call; the mutation itself is never undone.
//
// Items that want their property edits observed embed PropertyEvents, which
// implements both PropertyNotifier (subscribe) and PropertyRaiser (raise from
// outside the item).
//
// # Thread Safety
//
// List is not safe for concurrent use. Callers that share a list across
// goroutines must serialize access themselves.
package observable

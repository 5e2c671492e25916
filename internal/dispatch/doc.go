// Package dispatch routes the terminal events of a processor pass to the
// executors that perform them.
//
// Routing is first-match-wins: executors are tried in order and the first
// one that handles an event ends the chain. Effects are best-effort. A
// failing executor is logged and the next event is dispatched as usual.
package dispatch

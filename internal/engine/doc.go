// Package engine runs the expansion loop.
//
// One goroutine owns the loop: it takes the next event from the funnel,
// runs it through the processor, records the pass in the journal when one
// is configured, and dispatches the terminal events. An Exit effect stops
// the loop after the rest of its pass is dispatched.
//
// Everything inside a pass is synchronous. Stages that block on the user,
// such as the selector, block the loop; input captured meanwhile queues in
// the funnel and is filtered by source id once the pass ends.
//
// Replay re-runs the inputs of a journaled session through a fresh
// processor and compares the results, which is how determinism of the
// pipeline is checked.
package engine

// Package process runs events through the middleware pipeline.
//
// A Processor owns an ordered list of stages. Process takes one funneled
// event and returns the flat list of terminal events it expanded into.
//
// Queue discipline:
//
//   - The incoming event is enqueued; the oldest queued event becomes the
//     current one and runs through the stages in order.
//   - Each stage returns the event the next stage sees and may dispatch
//     extra events.
//   - A stage returning NOOP ends the pass. Events dispatched earlier in the
//     pass are kept.
//   - After the pass, dispatched events go to the front of the queue, in
//     dispatch order, ahead of older pending events.
//   - The final current event of every pass, NOOP included, is appended to
//     the result.
//
// Dispatched work is finished before unrelated backlog, without recursion.
package process

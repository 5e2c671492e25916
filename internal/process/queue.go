package process

import "github.com/roach88/xpand/internal/event"

// eventQueue is the pending work of one Process call.
//
// It is used only from the engine goroutine, so it is not synchronized.
type eventQueue struct {
	events []event.Event
}

func newEventQueue() *eventQueue {
	return &eventQueue{events: make([]event.Event, 0, 8)}
}

// Enqueue adds an event to the back of the queue.
func (q *eventQueue) Enqueue(e event.Event) {
	q.events = append(q.events, e)
}

// PushFront inserts batch ahead of every queued event, keeping the batch's
// own order.
func (q *eventQueue) PushFront(batch []event.Event) {
	if len(batch) == 0 {
		return
	}
	merged := make([]event.Event, 0, len(batch)+len(q.events))
	merged = append(merged, batch...)
	merged = append(merged, q.events...)
	q.events = merged
}

// TryDequeue removes and returns the front event.
// Returns (event.Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (event.Event, bool) {
	if len(q.events) == 0 {
		return event.Event{}, false
	}

	e := q.events[0]

	// Clear the slot so the payload can be collected.
	q.events[0] = event.Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	return len(q.events)
}

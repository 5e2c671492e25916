package process

import (
	"context"

	"github.com/roach88/xpand/internal/event"
)

// Dispatch registers an extra event for the current pass.
type Dispatch func(event.Event)

// Middleware is one pipeline stage. Next returns the event the following
// stage sees; returning a NOOP event ends the pass.
//
// Stages must not panic or return errors: failures become a
// ProcessingError or NOOP event.
type Middleware interface {
	Name() string
	Next(ctx context.Context, ev event.Event, dispatch Dispatch) event.Event
}

// StageFunc adapts a function to Middleware.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, ev event.Event, dispatch Dispatch) event.Event
}

// Name implements Middleware.
func (s StageFunc) Name() string { return s.StageName }

// Next implements Middleware.
func (s StageFunc) Next(ctx context.Context, ev event.Event, dispatch Dispatch) event.Event {
	return s.Fn(ctx, ev, dispatch)
}

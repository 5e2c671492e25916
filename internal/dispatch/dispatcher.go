package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// Executor performs one kind of effect.
type Executor interface {
	Name() string
	// Execute reports whether it recognized ev. A recognized event ends
	// the dispatch chain even when err is non-nil.
	Execute(ctx context.Context, ev event.Event) (handled bool, err error)
}

// ExecuteError wraps a failure reported by an executor.
type ExecuteError struct {
	Executor string
	SourceID event.SourceID
	Kind     event.Kind
	Err      error
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("executor %s failed on %s (source %d): %v", e.Executor, e.Kind, e.SourceID, e.Err)
}

func (e *ExecuteError) Unwrap() error { return e.Err }

// Dispatcher tries executors in a fixed order.
type Dispatcher struct {
	executors []Executor
	onError   func(*ExecuteError)
	log       zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithErrorHook is called for every executor failure, after it is logged.
func WithErrorHook(fn func(*ExecuteError)) Option {
	return func(d *Dispatcher) { d.onError = fn }
}

// New creates a dispatcher over executors, tried in the given order.
func New(executors []Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		executors: append([]Executor(nil), executors...),
		log:       logging.Component("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch routes ev to the first executor that handles it and reports
// whether any did. NOOP events are never routed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event) bool {
	if ev.IsNoop() {
		return false
	}
	for _, x := range d.executors {
		handled, err := x.Execute(ctx, ev)
		if !handled {
			continue
		}
		if err != nil {
			xerr := &ExecuteError{Executor: x.Name(), SourceID: ev.SourceID, Kind: ev.Kind(), Err: err}
			d.log.Error().
				Err(err).
				Str("executor", x.Name()).
				Str("kind", string(ev.Kind())).
				Uint32("source_id", uint32(ev.SourceID)).
				Msg("Executor failed")
			if d.onError != nil {
				d.onError(xerr)
			}
		}
		return true
	}
	d.log.Trace().Str("kind", string(ev.Kind())).Msg("No executor for event")
	return false
}

// DispatchAll dispatches events in order.
func (d *Dispatcher) DispatchAll(ctx context.Context, events []event.Event) {
	for _, ev := range events {
		d.Dispatch(ctx, ev)
	}
}

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/funnel"
	"github.com/roach88/xpand/internal/logging"
	"github.com/roach88/xpand/internal/process"
)

// Receiver yields input one event at a time. *funnel.Funnel satisfies it.
type Receiver interface {
	Receive(ctx context.Context) (event.Event, error)
}

// Dispatcher performs effects. *dispatch.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev event.Event) bool
}

// Recorder persists passes. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, sessionID string, seq int64, input event.Event, results []event.Event) error
}

// Pass is one processed input.
type Pass struct {
	Seq      int64
	Input    event.Event
	Results  []event.Event
	Terminal []event.Event
}

// Engine connects a receiver, a processor and a dispatcher.
type Engine struct {
	input      Receiver
	processor  *process.Processor
	dispatcher Dispatcher

	recorder  Recorder
	sessionID string
	onPass    func(Pass)

	seq int64
	log zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder journals every pass under sessionID.
func WithRecorder(r Recorder, sessionID string) Option {
	return func(e *Engine) {
		e.recorder = r
		e.sessionID = sessionID
	}
}

// WithPassHook is called after every pass is dispatched.
func WithPassHook(fn func(Pass)) Option {
	return func(e *Engine) { e.onPass = fn }
}

// New creates an engine.
func New(input Receiver, processor *process.Processor, dispatcher Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		input:      input,
		processor:  processor,
		dispatcher: dispatcher,
		log:        logging.Component("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes input until an Exit effect, the input closing, or ctx
// ending. It returns the exit mode, which is empty unless an Exit effect
// stopped the loop.
func (e *Engine) Run(ctx context.Context) (event.ExitMode, error) {
	e.log.Info().Str("session", e.sessionID).Msg("Engine starting")
	for {
		ev, err := e.input.Receive(ctx)
		switch {
		case errors.Is(err, funnel.ErrClosed):
			e.log.Info().Msg("Engine stopping: input closed")
			return "", nil
		case err != nil:
			e.log.Info().Err(err).Msg("Engine stopping")
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("receive: %w", err)
		}

		pass := e.Step(ctx, ev)
		for _, t := range pass.Terminal {
			if exit, ok := t.Type.(event.Exit); ok {
				e.log.Info().Str("mode", string(exit.Mode)).Msg("Engine stopping: exit requested")
				return exit.Mode, nil
			}
		}
	}
}

// Step runs one input through the processor, records it and dispatches
// the terminal events. Exit effects are not dispatched; Run acts on them.
func (e *Engine) Step(ctx context.Context, ev event.Event) Pass {
	e.seq++
	results := e.processor.Process(ctx, ev)
	pass := Pass{
		Seq:      e.seq,
		Input:    ev,
		Results:  results,
		Terminal: process.Terminal(results),
	}

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, e.sessionID, e.seq, ev, results); err != nil {
			e.log.Error().Err(err).Int64("seq", e.seq).Msg("Journal write failed")
		}
	}

	for _, t := range pass.Terminal {
		if t.Kind() == event.KindExit {
			continue
		}
		e.dispatcher.Dispatch(ctx, t)
	}

	if e.onPass != nil {
		e.onPass(pass)
	}
	return pass
}

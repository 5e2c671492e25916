package process

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// Step describes one stage invocation, for tracing.
type Step struct {
	Pass  int
	Stage string
	In    event.Event
	Out   event.Event
}

// Processor runs events through an ordered list of stages.
type Processor struct {
	stages   []Middleware
	maxSteps int
	observer func(Step)
	log      zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxSteps sets the pass quota of one Process call.
func WithMaxSteps(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

// WithStepObserver is called after every stage invocation.
func WithStepObserver(fn func(Step)) Option {
	return func(p *Processor) {
		p.observer = fn
	}
}

// New creates a processor over stages.
func New(stages []Middleware, opts ...Option) *Processor {
	p := &Processor{
		stages:   stages,
		maxSteps: DefaultMaxSteps,
		log:      logging.Component("process"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stages returns the stage names in order.
func (p *Processor) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Process expands incoming into its terminal events. It never fails: stage
// failures are contained in the pass that caused them.
func (p *Processor) Process(ctx context.Context, incoming event.Event) []event.Event {
	queue := newEventQueue()
	queue.Enqueue(incoming)
	quota := newStepQuota(p.maxSteps)

	var results []event.Event
	for pass := 1; ; pass++ {
		current, ok := queue.TryDequeue()
		if !ok {
			break
		}
		if err := quota.Check(current.SourceID); err != nil {
			p.log.Error().Err(err).Int("dropped", queue.Len()+1).Msg("Dropping remaining events")
			break
		}

		var dispatched []event.Event
		dispatch := func(e event.Event) {
			dispatched = append(dispatched, e)
		}

		for _, stage := range p.stages {
			in := current
			current = p.runStage(ctx, stage, in, dispatch)
			if p.observer != nil {
				p.observer(Step{Pass: pass, Stage: stage.Name(), In: in, Out: current})
			}
			if current.IsNoop() {
				break
			}
		}

		queue.PushFront(dispatched)
		results = append(results, current)
	}
	return results
}

// runStage invokes one stage, turning a panic into a ProcessingError.
func (p *Processor) runStage(ctx context.Context, stage Middleware, ev event.Event, dispatch Dispatch) (out event.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Str("stage", stage.Name()).
				Uint32("source_id", uint32(ev.SourceID)).
				Interface("panic", r).
				Msg("Stage panicked")
			out = ev.CausedBy(event.ProcessingError{Reason: fmt.Sprintf("stage %s panicked: %v", stage.Name(), r)})
		}
	}()
	return stage.Next(ctx, ev, dispatch)
}

// Terminal filters out NOOP events.
func Terminal(events []event.Event) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if !e.IsNoop() {
			out = append(out, e)
		}
	}
	return out
}

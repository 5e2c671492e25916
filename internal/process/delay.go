package process

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// Default modifier wait settings.
const (
	DefaultMaxModifierWait = 3 * time.Second
	DefaultModifierPoll    = 10 * time.Millisecond
)

// ModifierState reports held modifiers. *keystate.Store satisfies it.
type ModifierState interface {
	AnyModifierPressed() bool
}

// DelayOptions configure the Delay stage.
type DelayOptions struct {
	MaxWait time.Duration
	Poll    time.Duration
}

// Delay holds injections back while a modifier is pressed, since a held
// Ctrl or Alt would turn injected text into shortcuts. It gives up after
// MaxWait and injects anyway.
type Delay struct {
	keys    ModifierState
	maxWait time.Duration
	poll    time.Duration
	log     zerolog.Logger
}

// NewDelay creates the stage.
func NewDelay(keys ModifierState, opts DelayOptions) *Delay {
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxModifierWait
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultModifierPoll
	}
	return &Delay{
		keys:    keys,
		maxWait: opts.MaxWait,
		poll:    opts.Poll,
		log:     logging.Component("process.delay"),
	}
}

// Name implements Middleware.
func (*Delay) Name() string { return "delay_for_modifier_release" }

// Next implements Middleware.
func (s *Delay) Next(ctx context.Context, ev event.Event, _ Dispatch) event.Event {
	if s.keys == nil || !event.IsInjection(ev.Type) || !s.keys.AnyModifierPressed() {
		return ev
	}

	deadline := time.NewTimer(s.maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for s.keys.AnyModifierPressed() {
		select {
		case <-ctx.Done():
			return ev
		case <-deadline.C:
			s.log.Warn().Dur("waited", s.maxWait).Msg("Modifiers still pressed, injecting anyway")
			return ev
		case <-ticker.C:
		}
	}
	return ev
}

package funnel

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// DefaultSecureInputInterval is how often the platform is polled.
const DefaultSecureInputInterval = time.Second

// SecureInputState is a snapshot of the platform secure input flag.
type SecureInputState struct {
	Active  bool
	AppName string
	AppPath string
}

// SecureInputProbe reads the current secure input state.
type SecureInputProbe func(ctx context.Context) (SecureInputState, error)

// SecureInputWatcher polls a probe and emits an event on every change.
type SecureInputWatcher struct {
	probe    SecureInputProbe
	source   *Source
	interval time.Duration
	log      zerolog.Logger
}

// NewSecureInputWatcher creates a watcher emitting into source.
func NewSecureInputWatcher(probe SecureInputProbe, source *Source, interval time.Duration) *SecureInputWatcher {
	if interval <= 0 {
		interval = DefaultSecureInputInterval
	}
	return &SecureInputWatcher{
		probe:    probe,
		source:   source,
		interval: interval,
		log:      logging.Component("funnel.secure"),
	}
}

// Run polls until ctx ends. The first poll happens immediately; an
// inactive initial state emits nothing.
func (w *SecureInputWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var active bool
	for {
		state, err := w.probe(ctx)
		switch {
		case err != nil:
			w.log.Debug().Err(err).Msg("Secure input probe failed")
		case state.Active && !active:
			active = true
			w.log.Info().Str("app", state.AppName).Msg("Secure input enabled")
			w.source.Emit(ctx, event.SecureInputEnabled{AppName: state.AppName, AppPath: state.AppPath})
		case !state.Active && active:
			active = false
			w.log.Info().Msg("Secure input disabled")
			w.source.Emit(ctx, event.SecureInputDisabled{})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

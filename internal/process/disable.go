package process

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// DefaultToggleInterval is the window for the double press of the toggle
// key.
const DefaultToggleInterval = 300 * time.Millisecond

// DisableOptions configure the Disable stage.
type DisableOptions struct {
	// ToggleKey is the modifier whose double press toggles expansion.
	// An empty key disables the shortcut.
	ToggleKey event.Key
	Interval  time.Duration
	Now       func() time.Time
}

// Disable owns the enabled flag. While disabled it drops keyboard and mouse
// events before they reach the matchers.
type Disable struct {
	enabled     bool
	toggleKey   event.Key
	interval    time.Duration
	now         func() time.Time
	lastRelease time.Time
	log         zerolog.Logger
}

// NewDisable creates the stage in the enabled state.
func NewDisable(opts DisableOptions) *Disable {
	if opts.Interval <= 0 {
		opts.Interval = DefaultToggleInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Disable{
		enabled:   true,
		toggleKey: opts.ToggleKey,
		interval:  opts.Interval,
		now:       opts.Now,
		log:       logging.Component("process.disable"),
	}
}

// Name implements Middleware.
func (*Disable) Name() string { return "disable" }

// Enabled reports whether expansion is active.
func (s *Disable) Enabled() bool { return s.enabled }

// Next implements Middleware.
func (s *Disable) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	switch t := ev.Type.(type) {
	case event.EnableRequest:
		return s.set(ev, true)
	case event.DisableRequest:
		return s.set(ev, false)
	case event.ToggleRequest:
		return s.set(ev, !s.enabled)
	case event.Keyboard:
		if s.toggleKey != "" && t.Key == s.toggleKey {
			if t.Status == event.Released {
				now := s.now()
				if !s.lastRelease.IsZero() && now.Sub(s.lastRelease) <= s.interval {
					s.lastRelease = time.Time{}
					return s.set(ev, !s.enabled)
				}
				s.lastRelease = now
			}
		} else if t.Status == event.Pressed {
			s.lastRelease = time.Time{}
		}
		if !s.enabled {
			return ev.Noop()
		}
	case event.Mouse:
		if !s.enabled {
			return ev.Noop()
		}
	}
	return ev
}

func (s *Disable) set(ev event.Event, enabled bool) event.Event {
	if s.enabled == enabled {
		return ev.Noop()
	}
	s.enabled = enabled
	s.log.Info().Bool("enabled", enabled).Msg("Expansion toggled")
	if enabled {
		return ev.CausedBy(event.Enabled{})
	}
	return ev.CausedBy(event.Disabled{})
}

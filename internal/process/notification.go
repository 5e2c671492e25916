package process

import (
	"context"
	"fmt"

	"github.com/roach88/xpand/internal/event"
)

// Notification turns state changes into tray icon updates, and optionally
// into user notifications.
type Notification struct {
	notify bool
}

// NewNotification creates the stage. With notify false only the icon is
// updated.
func NewNotification(notify bool) *Notification {
	return &Notification{notify: notify}
}

// Name implements Middleware.
func (*Notification) Name() string { return "notification" }

// Next implements Middleware.
func (s *Notification) Next(_ context.Context, ev event.Event, dispatch Dispatch) event.Event {
	switch t := ev.Type.(type) {
	case event.Enabled:
		s.show(ev, dispatch, "Expansion enabled")
		return ev.CausedBy(event.IconStatusChange{Status: event.IconEnabled})
	case event.Disabled:
		s.show(ev, dispatch, "Expansion disabled")
		return ev.CausedBy(event.IconStatusChange{Status: event.IconDisabled})
	case event.SecureInputEnabled:
		app := t.AppName
		if app == "" {
			app = "another application"
		}
		s.show(ev, dispatch, fmt.Sprintf("Secure input is active in %s; expansion is paused", app))
		return ev.CausedBy(event.IconStatusChange{Status: event.IconSecureInput})
	case event.SecureInputDisabled:
		return ev.CausedBy(event.IconStatusChange{Status: event.IconEnabled})
	}
	return ev
}

func (s *Notification) show(ev event.Event, dispatch Dispatch, msg string) {
	if s.notify {
		dispatch(ev.CausedBy(event.ShowNotification{Message: msg}))
	}
}

package process

import (
	"context"

	"github.com/roach88/xpand/internal/event"
)

// Undo lets a Backspace pressed right after a plain text expansion revert
// it to the typed trigger. Any other key or click forgets the expansion.
type Undo struct {
	enabled bool
	trigger string
	replace string
	ready   bool
}

// NewUndo creates the stage. A disabled stage passes every event through.
func NewUndo(enabled bool) *Undo {
	return &Undo{enabled: enabled}
}

// Name implements Middleware.
func (*Undo) Name() string { return "undo" }

// Next implements Middleware.
func (s *Undo) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	if !s.enabled {
		return ev
	}

	switch t := ev.Type.(type) {
	case event.TriggerCompensation:
		s.forget()
		s.trigger = t.Trigger + t.RightSeparator
	case event.Rendered:
		if s.trigger != "" && t.Body != "" && t.Format == event.FormatText {
			s.replace = t.Body
			s.ready = true
		} else {
			s.forget()
		}
	case event.CursorHintCompensation:
		s.forget()
	case event.Mouse:
		if t.Status == event.Pressed {
			s.forget()
		}
	case event.Keyboard:
		if t.Status != event.Pressed || t.Key.IsModifier() {
			return ev
		}
		if t.Key == event.KeyBackspace && s.ready {
			undo := event.Undo{Trigger: s.trigger, Replace: s.replace}
			s.forget()
			return ev.CausedBy(undo)
		}
		s.forget()
	}
	return ev
}

func (s *Undo) forget() {
	s.trigger, s.replace, s.ready = "", "", false
}

package process

import (
	"context"
	"unicode"

	"github.com/roach88/xpand/internal/event"
)

// maxAltCodeDigits bounds a code; the largest code point has seven digits.
const maxAltCodeDigits = 7

// AltCode turns Alt+numpad digit sequences into the character they
// produce, the way Windows does. Digits are swallowed while Alt is held;
// releasing Alt emits a synthetic key press carrying the character.
type AltCode struct {
	enabled bool
	altDown bool
	code    int
	digits  int
}

// NewAltCode creates the alt-code stage. A disabled stage passes every
// event through.
func NewAltCode(enabled bool) *AltCode {
	return &AltCode{enabled: enabled}
}

// Name implements Middleware.
func (*AltCode) Name() string { return "alt_code" }

// Next implements Middleware.
func (s *AltCode) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	if !s.enabled {
		return ev
	}
	kb, ok := ev.Type.(event.Keyboard)
	if !ok {
		return ev
	}

	if kb.Key == event.KeyAlt {
		if kb.Status == event.Pressed {
			s.altDown = true
			s.code, s.digits = 0, 0
			return ev
		}
		s.altDown = false
		if s.digits == 0 {
			return ev
		}
		code := s.code
		s.code, s.digits = 0, 0
		if code <= 0 || code > unicode.MaxRune || (code >= 0xD800 && code <= 0xDFFF) {
			return ev.Noop()
		}
		return ev.CausedBy(event.Keyboard{
			Key:    event.KeyOther,
			Value:  string(rune(code)),
			Status: event.Pressed,
		})
	}

	if !s.altDown {
		return ev
	}
	digit, isDigit := kb.Key.NumpadDigit()
	if !isDigit {
		s.altDown = false
		s.code, s.digits = 0, 0
		return ev
	}
	if kb.Status == event.Pressed && s.digits < maxAltCodeDigits {
		s.code = s.code*10 + digit
		s.digits++
	}
	return ev.Noop()
}

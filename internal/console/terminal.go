package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// Emitter receives decoded input. funnel.Source implements it.
type Emitter interface {
	Emit(ctx context.Context, t event.Type) (event.SourceID, bool)
}

// Terminal reads keys from a terminal and forwards them to an emitter,
// echoing key presses onto a screen first. While a prompt holds a capture,
// keys go to the prompt instead.
type Terminal struct {
	dec *Decoder
	log zerolog.Logger

	mu      sync.Mutex
	capture chan event.Type
}

// NewTerminal reads from in.
func NewTerminal(in io.Reader) *Terminal {
	return &Terminal{
		dec: NewDecoder(in),
		log: logging.Component("console"),
	}
}

// Run decodes input until EOF or ctx ends. A nil emitter drops uncaptured
// input; a nil screen skips the echo.
func (t *Terminal) Run(ctx context.Context, out Emitter, screen *Screen) error {
	for {
		types, err := t.dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading terminal: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		for _, typ := range types {
			if t.captured(typ) {
				continue
			}
			if kb, ok := typ.(event.Keyboard); ok && screen != nil {
				screen.Apply(kb)
			}
			if out == nil {
				continue
			}
			if _, ok := out.Emit(ctx, typ); !ok {
				t.log.Debug().Str("kind", string(typ.Kind())).Msg("Input not delivered")
				return ctx.Err()
			}
		}
	}
}

// Capture routes subsequent key presses to the returned channel until
// Release is called. Only one capture is active at a time.
func (t *Terminal) Capture() <-chan event.Type {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.capture = make(chan event.Type, 32)
	return t.capture
}

// Release ends the current capture.
func (t *Terminal) Release() {
	t.mu.Lock()
	t.capture = nil
	t.mu.Unlock()
}

func (t *Terminal) captured(typ event.Type) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.capture == nil {
		return false
	}
	if kb, ok := typ.(event.Keyboard); ok && kb.Status != event.Pressed {
		return true
	}
	select {
	case t.capture <- typ:
	default:
		t.log.Warn().Msg("Prompt input buffer full, dropping key")
	}
	return true
}

// MakeRaw switches f to raw mode when it is a terminal. The returned
// function restores the previous mode.
func MakeRaw(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

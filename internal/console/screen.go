package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/roach88/xpand/internal/event"
)

// Screen is the text of a focused application as the user would see it:
// a rune buffer with a caret. Echoed user keys and injected strokes edit
// it the same way.
type Screen struct {
	mu       sync.Mutex
	text     []rune
	cursor   int
	onChange func(text string, cursor int)
}

// NewScreen creates an empty screen.
func NewScreen() *Screen {
	return &Screen{}
}

// OnChange registers fn to run after every edit. fn runs with the screen
// unlocked.
func (s *Screen) OnChange(fn func(text string, cursor int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// String returns the whole text.
func (s *Screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.text)
}

// Cursor returns the caret position in runes.
func (s *Screen) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Type inserts text at the caret.
func (s *Screen) Type(text string) {
	s.edit(func() { s.insert(text) })
}

// Apply echoes a key press the way a text field would. Releases are
// ignored.
func (s *Screen) Apply(kb event.Keyboard) {
	if kb.Status != event.Pressed {
		return
	}
	s.edit(func() {
		if !s.press(kb.Key) && kb.Value != "" {
			s.insert(kb.Value)
		}
	})
}

// InjectText implements dispatch.Keyboard.
func (s *Screen) InjectText(_ context.Context, text string) error {
	s.Type(text)
	return nil
}

// SendKeys implements dispatch.Keyboard.
func (s *Screen) SendKeys(_ context.Context, keys []event.Key) error {
	var unknown event.Key
	s.edit(func() {
		for _, k := range keys {
			if !s.press(k) && unknown == "" {
				unknown = k
			}
		}
	})
	if unknown != "" {
		return fmt.Errorf("screen: unsupported key %q", unknown)
	}
	return nil
}

// Clear empties the screen.
func (s *Screen) Clear() {
	s.edit(func() {
		s.text = s.text[:0]
		s.cursor = 0
	})
}

// Draw writes the line holding the caret to w, replacing the current
// terminal line.
func (s *Screen) Draw(w io.Writer) error {
	s.mu.Lock()
	text := string(s.text[:s.cursor])
	rest := string(s.text[s.cursor:])
	s.mu.Unlock()

	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	// Print the whole line, then move the caret back over the tail.
	_, err := fmt.Fprintf(w, "\r\x1b[2K%s%s", text, rest)
	if err == nil && len(rest) > 0 {
		_, err = fmt.Fprintf(w, "\x1b[%dD", len([]rune(rest)))
	}
	return err
}

func (s *Screen) edit(fn func()) {
	s.mu.Lock()
	fn()
	cb := s.onChange
	text, cursor := string(s.text), s.cursor
	s.mu.Unlock()

	if cb != nil {
		cb(text, cursor)
	}
}

func (s *Screen) insert(text string) {
	runes := []rune(text)
	tail := append(runes, s.text[s.cursor:]...)
	s.text = append(s.text[:s.cursor], tail...)
	s.cursor += len(runes)
}

// press applies an editing key and reports whether k was one.
func (s *Screen) press(k event.Key) bool {
	switch k {
	case event.KeyBackspace:
		if s.cursor > 0 {
			s.text = append(s.text[:s.cursor-1], s.text[s.cursor:]...)
			s.cursor--
		}
	case event.KeyDelete:
		if s.cursor < len(s.text) {
			s.text = append(s.text[:s.cursor], s.text[s.cursor+1:]...)
		}
	case event.KeyArrowLeft:
		if s.cursor > 0 {
			s.cursor--
		}
	case event.KeyArrowRight:
		if s.cursor < len(s.text) {
			s.cursor++
		}
	case event.KeyHome:
		s.cursor = 0
	case event.KeyEnd:
		s.cursor = len(s.text)
	case event.KeyEnter:
		s.insert("\n")
	case event.KeyTab:
		s.insert("\t")
	case event.KeySpace:
		s.insert(" ")
	case event.KeyArrowUp, event.KeyArrowDown, event.KeyPageUp, event.KeyPageDown,
		event.KeyEscape, event.KeyInsert:
	default:
		return false
	}
	return true
}

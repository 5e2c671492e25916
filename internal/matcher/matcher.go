// Package matcher recognizes configured triggers inside a live keystroke
// stream.
//
// Matchers are pure transformers over an explicit state value:
//
//	(prev State, ev Event) -> (next State, []Result)
//
// A matcher never keeps per-stream state itself; callers own the state and
// thread it through successive calls. A nil prev means "start of stream".
// States are immutable, so a caller may keep older states around (the
// processor does, to support backspace).
package matcher

import "github.com/roach88/xpand/internal/event"

// Event is one input to a matcher.
type Event struct {
	// Key is the raw key identity.
	Key event.Key
	// Chars is the text the key produced, empty for keys that produce none.
	Chars string
	// Virtual marks a synthetic word boundary, used when the caret moved
	// and the preceding text is unknown.
	Virtual bool
}

// KeyEvent builds an Event for a real key press.
func KeyEvent(key event.Key, chars string) Event {
	return Event{Key: key, Chars: chars}
}

// VirtualSeparator builds a synthetic word boundary.
func VirtualSeparator() Event {
	return Event{Virtual: true}
}

// Result is a recognized trigger. Empty separators mean none was present.
type Result struct {
	ID             int32
	Trigger        string
	LeftSeparator  string
	RightSeparator string
	Args           map[string]string
}

// State is an opaque, immutable matcher state.
type State interface {
	matcherState()
}

// Matcher is implemented by Rolling and Regex.
type Matcher interface {
	Name() string
	Process(prev State, ev Event) (State, []Result)
}

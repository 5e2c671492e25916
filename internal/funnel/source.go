package funnel

import (
	"context"
	"sync"

	"github.com/roach88/xpand/internal/event"
)

// DefaultBuffer is the channel capacity of a Source.
const DefaultBuffer = 64

// KeyObserver sees every keyboard event as it is captured, before it is
// queued. *keystate.Store satisfies it.
type KeyObserver interface {
	Observe(kb event.Keyboard)
}

// Source is one producer of events.
type Source struct {
	name      string
	seq       *event.Sequencer
	ch        chan event.Event
	observers []KeyObserver

	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	doneOnce sync.Once
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithBuffer sets the channel capacity.
func WithBuffer(n int) SourceOption {
	return func(s *Source) {
		if n >= 0 {
			s.ch = make(chan event.Event, n)
		}
	}
}

// WithKeyObserver registers an observer for keyboard payloads.
func WithKeyObserver(o KeyObserver) SourceOption {
	return func(s *Source) { s.observers = append(s.observers, o) }
}

// NewSource creates a source drawing ids from seq.
func NewSource(name string, seq *event.Sequencer, opts ...SourceOption) *Source {
	s := &Source{name: name, seq: seq, ch: make(chan event.Event, DefaultBuffer), done: make(chan struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *Source) Name() string { return s.name }

// Emit stamps t with a fresh id and queues it. It blocks while the buffer
// is full and returns false if ctx ends first or the source is closed.
// Safe for concurrent use.
func (s *Source) Emit(ctx context.Context, t event.Type) (event.SourceID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, false
	}

	if kb, ok := t.(event.Keyboard); ok {
		for _, o := range s.observers {
			o.Observe(kb)
		}
	}

	ev := event.New(s.seq.Next(), t)
	select {
	case s.ch <- ev:
		return ev.SourceID, true
	case <-ctx.Done():
		return 0, false
	case <-s.done:
		return 0, false
	}
}

// Close stops the source. Blocked emitters give up; events already queued
// are still delivered.
func (s *Source) Close() {
	s.doneOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *Source) events() <-chan event.Event { return s.ch }

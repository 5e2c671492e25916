// Package keystate tracks which keys are held down.
//
// The detection goroutine publishes key transitions; pipeline stages read
// them without blocking. A key that has been down for longer than its
// timeout reads as released, so a lost release event cannot wedge the
// engine.
package keystate

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/roach88/xpand/internal/event"
)

// Default staleness timeouts.
const (
	DefaultKeyTimeout      = 3 * time.Second
	DefaultModifierTimeout = 30 * time.Second
)

// Options configure a Store.
type Options struct {
	KeyTimeout      time.Duration
	ModifierTimeout time.Duration
	// Now is the time source; defaults to time.Now.
	Now func() time.Time
}

type snapshot map[event.Key]time.Time

// Store is a copy-on-write set of pressed keys.
type Store struct {
	pressed    atomic.Pointer[snapshot]
	keyTimeout time.Duration
	modTimeout time.Duration
	now        func() time.Time
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.KeyTimeout <= 0 {
		opts.KeyTimeout = DefaultKeyTimeout
	}
	if opts.ModifierTimeout <= 0 {
		opts.ModifierTimeout = DefaultModifierTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		keyTimeout: opts.KeyTimeout,
		modTimeout: opts.ModifierTimeout,
		now:        opts.Now,
	}
	s.pressed.Store(&snapshot{})
	return s
}

// Observe records a keyboard transition. Repeated presses refresh the
// key's timestamp.
func (s *Store) Observe(kb event.Keyboard) {
	at := s.now()
	for {
		old := s.pressed.Load()
		_, down := (*old)[kb.Key]
		if kb.Status != event.Pressed && !down {
			return
		}

		next := make(snapshot, len(*old)+1)
		for k, t := range *old {
			if !s.stale(k, t, at) {
				next[k] = t
			}
		}
		if kb.Status == event.Pressed {
			next[kb.Key] = at
		} else {
			delete(next, kb.Key)
		}
		if s.pressed.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reset forgets every pressed key.
func (s *Store) Reset() {
	s.pressed.Store(&snapshot{})
}

// IsPressed reports whether k is down and not stale.
func (s *Store) IsPressed(k event.Key) bool {
	t, ok := (*s.pressed.Load())[k]
	return ok && !s.stale(k, t, s.now())
}

// PressedModifiers returns the modifiers currently held, sorted.
func (s *Store) PressedModifiers() []event.Key {
	now := s.now()
	var mods []event.Key
	for k, t := range *s.pressed.Load() {
		if k.IsModifier() && !s.stale(k, t, now) {
			mods = append(mods, k)
		}
	}
	slices.Sort(mods)
	return mods
}

// AnyModifierPressed reports whether any modifier is held.
func (s *Store) AnyModifierPressed() bool {
	now := s.now()
	for k, t := range *s.pressed.Load() {
		if k.IsModifier() && !s.stale(k, t, now) {
			return true
		}
	}
	return false
}

func (s *Store) stale(k event.Key, pressedAt, now time.Time) bool {
	timeout := s.keyTimeout
	if k.IsModifier() {
		timeout = s.modTimeout
	}
	return now.Sub(pressedAt) > timeout
}

package process

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
	"github.com/roach88/xpand/internal/match"
	"github.com/roach88/xpand/internal/matcher"
)

// DefaultHistorySize is how many backspaces the matcher stage can undo.
const DefaultHistorySize = 3

// Matches is the source of the current match store. *match.Holder
// satisfies it.
type Matches interface {
	Load() (*match.Store, uint64)
}

// MatcherOptions configure the matcher stage.
type MatcherOptions struct {
	Matchers    match.MatcherOptions
	HistorySize int
}

// Matching feeds typed characters to every matcher and turns their results
// into a MatchesDetected event.
//
// It keeps the last few matcher states so Backspace can step back. The
// matchers are rebuilt whenever the store generation changes.
type Matching struct {
	matches     Matches
	opts        match.MatcherOptions
	historySize int

	generation uint64
	matchers   []matcher.Matcher
	history    [][]matcher.State

	log zerolog.Logger
}

// NewMatching creates the matcher stage.
func NewMatching(matches Matches, opts MatcherOptions) *Matching {
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	return &Matching{
		matches:     matches,
		opts:        opts.Matchers,
		historySize: opts.HistorySize,
		log:         logging.Component("process.matcher"),
	}
}

// Name implements Middleware.
func (*Matching) Name() string { return "matcher" }

// Next implements Middleware.
func (s *Matching) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	switch t := ev.Type.(type) {
	case event.Mouse:
		if t.Status == event.Pressed {
			s.reset()
		}
		return ev
	case event.Keyboard:
		if t.Status != event.Pressed {
			return ev
		}
		return s.keyboard(ev, t)
	}
	return ev
}

func (s *Matching) keyboard(ev event.Event, kb event.Keyboard) event.Event {
	s.refresh()

	switch {
	case kb.Key == event.KeyBackspace:
		if n := len(s.history); n > 0 {
			s.history = s.history[:n-1]
		}
		return ev
	case kb.Key.IsNavigation(), kb.Key == event.KeyEscape:
		s.reset()
		return ev
	case kb.Value == "":
		return ev
	}

	var prev []matcher.State
	if n := len(s.history); n > 0 {
		prev = s.history[n-1]
	}

	input := matcher.KeyEvent(kb.Key, kb.Value)
	next := make([]matcher.State, len(s.matchers))
	fired := make([]bool, len(s.matchers))
	var detected []event.DetectedMatch
	for i, m := range s.matchers {
		var state matcher.State
		if prev != nil {
			state = prev[i]
		}
		state, results := m.Process(state, input)
		next[i] = state
		fired[i] = len(results) > 0
		for _, r := range results {
			detected = append(detected, event.DetectedMatch{
				ID:             r.ID,
				Trigger:        r.Trigger,
				LeftSeparator:  r.LeftSeparator,
				RightSeparator: r.RightSeparator,
				Args:           r.Args,
			})
		}
	}

	if len(detected) > 0 {
		// A detection resets every matcher. The ones that fired already
		// restarted and may carry runes typed after the trigger.
		for i := range next {
			if !fired[i] {
				next[i] = nil
			}
		}
		s.history = [][]matcher.State{next}
		s.log.Debug().
			Uint32("source_id", uint32(ev.SourceID)).
			Int("candidates", len(detected)).
			Msg("Matches detected")
		return ev.CausedBy(event.MatchesDetected{Matches: detected})
	}

	s.history = append(s.history, next)
	if len(s.history) > s.historySize {
		s.history = s.history[len(s.history)-s.historySize:]
	}
	return ev
}

// refresh rebuilds the matchers when a new store was published.
func (s *Matching) refresh() {
	store, gen := s.matches.Load()
	if gen == s.generation && s.matchers != nil {
		return
	}
	s.matchers = store.Matchers(s.opts)
	s.generation = gen
	s.reset()
	s.log.Debug().Uint64("generation", gen).Int("matches", store.Len()).Msg("Matchers rebuilt")
}

func (s *Matching) reset() {
	s.history = nil
}

// Search answers a search request with every configured match.
type Search struct {
	matches Matches
}

// NewSearch creates the search stage.
func NewSearch(matches Matches) *Search {
	return &Search{matches: matches}
}

// Name implements Middleware.
func (*Search) Name() string { return "search" }

// Next implements Middleware.
func (s *Search) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	if _, ok := ev.Type.(event.SearchRequested); !ok {
		return ev
	}
	store, _ := s.matches.Load()
	detected := make([]event.DetectedMatch, 0, store.Len())
	for _, m := range store.Matches() {
		detected = append(detected, event.DetectedMatch{ID: m.ID})
	}
	return ev.CausedBy(event.MatchesDetected{Matches: detected, IsSearch: true})
}

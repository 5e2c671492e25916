package match

import (
	"github.com/roach88/xpand/internal/matcher"
	"github.com/roach88/xpand/internal/render"
)

// Store is an immutable set of loaded matches. Match ids are assigned in
// load order starting at 1.
type Store struct {
	matches []Match
	globals []render.Variable
}

// NewStore builds a store, assigning ids to the given matches.
func NewStore(matches []Match, globals []render.Variable) *Store {
	s := &Store{
		matches: make([]Match, len(matches)),
		globals: append([]render.Variable(nil), globals...),
	}
	copy(s.matches, matches)
	for i := range s.matches {
		s.matches[i].ID = int32(i + 1)
	}
	return s
}

// Len returns the number of matches.
func (s *Store) Len() int {
	return len(s.matches)
}

// Match returns the match with the given id.
func (s *Store) Match(id int32) (*Match, bool) {
	if id < 1 || int(id) > len(s.matches) {
		return nil, false
	}
	return &s.matches[id-1], true
}

// Matches returns every match in id order. Callers must not modify it.
func (s *Store) Matches() []Match {
	return s.matches
}

// GlobalVars returns the global variables visible to every match.
func (s *Store) GlobalVars() []render.Variable {
	return s.globals
}

// RollingMatches returns one rolling trigger per literal trigger.
func (s *Store) RollingMatches() []matcher.RollingMatch {
	var out []matcher.RollingMatch
	for i := range s.matches {
		m := &s.matches[i]
		for _, trigger := range m.Triggers {
			out = append(out, matcher.RollingMatch{
				ID:    m.ID,
				Items: matcher.TriggerItems(trigger, m.triggerOptions()),
			})
		}
	}
	return out
}

// RegexMatches returns the regex patterns.
func (s *Store) RegexMatches() []matcher.RegexMatch {
	var out []matcher.RegexMatch
	for i := range s.matches {
		if s.matches[i].Regex != "" {
			out = append(out, matcher.RegexMatch{ID: s.matches[i].ID, Pattern: s.matches[i].Regex})
		}
	}
	return out
}

// MatcherOptions configure the matchers built from a store.
type MatcherOptions struct {
	Rolling matcher.RollingOptions
	Regex   matcher.RegexOptions
}

// Matchers builds the rolling and regex matchers for the store.
func (s *Store) Matchers(opts MatcherOptions) []matcher.Matcher {
	return []matcher.Matcher{
		matcher.NewRolling(s.RollingMatches(), opts.Rolling),
		matcher.NewRegex(s.RegexMatches(), opts.Regex),
	}
}

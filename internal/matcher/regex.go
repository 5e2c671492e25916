package matcher

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/logging"
)

// DefaultRegexBufferSize is the number of runes kept by a Regex matcher.
const DefaultRegexBufferSize = 30

// RegexMatch is one configured pattern.
type RegexMatch struct {
	ID      int32
	Pattern string
}

// RegexOptions configure a Regex matcher.
type RegexOptions struct {
	MaxBufferSize int
}

type regexEntry struct {
	id int32
	re *regexp.Regexp
}

// Regex matches patterns against a bounded buffer of recently typed text.
//
// Each pattern is anchored at the end of the buffer, so a match always ends
// at the character just typed. A single alternation of all patterns acts as
// the set-membership pre-filter; only when it matches are the individual
// patterns evaluated for captures.
type Regex struct {
	entries   []regexEntry
	prefilter *regexp.Regexp
	maxBuffer int
	log       zerolog.Logger
}

// NewRegex compiles the given patterns. Patterns that fail to compile are
// logged and skipped.
func NewRegex(matches []RegexMatch, opts RegexOptions) *Regex {
	m := &Regex{
		maxBuffer: opts.MaxBufferSize,
		log:       logging.Component("matcher"),
	}
	if m.maxBuffer <= 0 {
		m.maxBuffer = DefaultRegexBufferSize
	}

	alternatives := make([]string, 0, len(matches))
	for _, match := range matches {
		anchored := "(?:" + match.Pattern + ")$"
		re, err := regexp.Compile(anchored)
		if err != nil {
			m.log.Warn().Err(err).Int32("match_id", match.ID).Str("pattern", match.Pattern).
				Msg("Skipping regex trigger that does not compile")
			continue
		}
		m.entries = append(m.entries, regexEntry{id: match.ID, re: re})
		alternatives = append(alternatives, anchored)
	}

	if len(alternatives) > 0 {
		prefilter, err := regexp.Compile(strings.Join(alternatives, "|"))
		if err != nil {
			m.log.Debug().Err(err).Msg("Combined regex pre-filter unavailable, checking patterns individually")
		} else {
			m.prefilter = prefilter
		}
	}
	return m
}

// Name implements Matcher.
func (m *Regex) Name() string { return "regex" }

// Len returns the number of usable patterns.
func (m *Regex) Len() int { return len(m.entries) }

// RegexState is the rolling text buffer.
type RegexState struct {
	buffer string
}

func (*RegexState) matcherState() {}

// Buffer returns the buffered text.
func (s *RegexState) Buffer() string {
	if s == nil {
		return ""
	}
	return s.buffer
}

// Process implements Matcher.
func (m *Regex) Process(prev State, ev Event) (State, []Result) {
	st, ok := prev.(*RegexState)
	if !ok || st == nil {
		st = &RegexState{}
	}

	if ev.Virtual {
		return &RegexState{}, nil
	}
	if ev.Chars == "" {
		return st, nil
	}

	buf := truncateRunes(st.buffer+ev.Chars, m.maxBuffer)
	next := &RegexState{buffer: buf}

	if len(m.entries) == 0 {
		return next, nil
	}
	if m.prefilter != nil && !m.prefilter.MatchString(buf) {
		return next, nil
	}

	var results []Result
	for _, e := range m.entries {
		groups := e.re.FindStringSubmatch(buf)
		if groups == nil {
			continue
		}
		args := make(map[string]string)
		for i, name := range e.re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			args[name] = groups[i]
		}
		results = append(results, Result{ID: e.id, Trigger: groups[0], Args: args})
	}

	if len(results) == 0 {
		return next, nil
	}
	return &RegexState{}, results
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[len(runes)-limit:])
}

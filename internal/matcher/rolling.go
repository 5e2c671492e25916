package matcher

import (
	"slices"
	"unicode"
)

type itemKind int

const (
	itemChar itemKind = iota
	itemCharInsensitive
	itemWordSeparator
)

// Item is one step of a rolling trigger.
type Item struct {
	kind itemKind
	r    rune
}

// Char matches exactly r.
func Char(r rune) Item { return Item{kind: itemChar, r: r} }

// CharInsensitive matches r in any case.
func CharInsensitive(r rune) Item { return Item{kind: itemCharInsensitive, r: unicode.ToLower(r)} }

// WordSeparator matches any configured word separator, and the start of the
// stream.
func WordSeparator() Item { return Item{kind: itemWordSeparator} }

// TriggerOptions control how a literal trigger becomes items.
type TriggerOptions struct {
	LeftWord        bool
	RightWord       bool
	CaseInsensitive bool
}

// TriggerItems converts a literal trigger into items.
func TriggerItems(trigger string, opts TriggerOptions) []Item {
	items := make([]Item, 0, len(trigger)+2)
	if opts.LeftWord {
		items = append(items, WordSeparator())
	}
	for _, r := range trigger {
		if opts.CaseInsensitive {
			items = append(items, CharInsensitive(r))
		} else {
			items = append(items, Char(r))
		}
	}
	if opts.RightWord {
		items = append(items, WordSeparator())
	}
	return items
}

// RollingMatch is one configured literal trigger.
type RollingMatch struct {
	ID    int32
	Items []Item
}

// RollingOptions configure a Rolling matcher.
type RollingOptions struct {
	// WordSeparators replaces IsWordSeparator with an explicit set. Only the
	// first rune of each entry is used.
	WordSeparators []string
}

// IsWordSeparator reports whether r ends a word: anything but a letter, a
// digit or an underscore.
func IsWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

type node struct {
	chars       map[rune]*node
	insensitive map[rune]*node
	separator   *node
	ids         []int32
}

func newNode() *node {
	return &node{chars: map[rune]*node{}, insensitive: map[rune]*node{}}
}

func (n *node) hasChildren() bool {
	return n.separator != nil || len(n.chars) > 0 || len(n.insensitive) > 0
}

// Rolling matches literal triggers over a trie.
//
// Tie-break: when several triggers complete on the same character, the
// longest consumed path wins (separators count toward length). Triggers of
// equal length are all returned, ordered by id, and left for selection.
// A trigger that is a prefix of another completes first and resets the
// state, so the longer one cannot fire through it.
type Rolling struct {
	root        *node
	isSeparator func(rune) bool
	initial     *RollingState
	nodes       int
}

// NewRolling builds the trie for the given matches.
func NewRolling(matches []RollingMatch, opts RollingOptions) *Rolling {
	m := &Rolling{root: newNode(), isSeparator: IsWordSeparator, nodes: 1}
	if len(opts.WordSeparators) > 0 {
		set := make(map[rune]bool, len(opts.WordSeparators))
		for _, s := range opts.WordSeparators {
			for _, r := range s {
				set[r] = true
				break
			}
		}
		m.isSeparator = func(r rune) bool { return set[r] }
	}
	for _, match := range matches {
		m.insert(match)
	}

	// Start of stream counts as a word separator.
	m.initial = &RollingState{}
	if m.root.separator != nil {
		m.initial = &RollingState{paths: []path{{node: m.root.separator, length: 1}}}
	}
	return m
}

func (m *Rolling) insert(match RollingMatch) {
	if len(match.Items) == 0 {
		return
	}
	n := m.root
	for _, item := range match.Items {
		var next *node
		switch item.kind {
		case itemChar:
			next = n.chars[item.r]
			if next == nil {
				next = newNode()
				n.chars[item.r] = next
				m.nodes++
			}
		case itemCharInsensitive:
			next = n.insensitive[item.r]
			if next == nil {
				next = newNode()
				n.insensitive[item.r] = next
				m.nodes++
			}
		case itemWordSeparator:
			next = n.separator
			if next == nil {
				next = newNode()
				n.separator = next
				m.nodes++
			}
		}
		n = next
	}
	n.ids = append(n.ids, match.ID)
}

// Name implements Matcher.
func (m *Rolling) Name() string { return "rolling" }

// NodeCount returns the number of trie nodes. An active path set never holds
// more than one path per node and typed variant.
func (m *Rolling) NodeCount() int { return m.nodes }

type path struct {
	node    *node
	trigger string
	left    string
	right   string
	length  int
}

// RollingState is the set of trie paths still alive after the latest input.
type RollingState struct {
	paths []path
}

func (*RollingState) matcherState() {}

// Len returns the number of active paths.
func (s *RollingState) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Process implements Matcher.
func (m *Rolling) Process(prev State, ev Event) (State, []Result) {
	st, ok := prev.(*RollingState)
	if !ok || st == nil {
		st = m.initial
	}

	if ev.Virtual {
		return m.initial, nil
	}
	if ev.Chars == "" {
		return st, nil
	}

	// Runes after a completion keep feeding a fresh state. Only the first
	// completion in one event is reported.
	paths := st.paths
	var found []Result
	reset := false
	for _, r := range ev.Chars {
		var results []Result
		paths, results = m.step(paths, r)
		reset = len(results) > 0
		if reset {
			if found == nil {
				found = results
			}
			paths = m.initial.paths
		}
	}
	if reset {
		return m.initial, found
	}
	return &RollingState{paths: paths}, found
}

func (m *Rolling) step(paths []path, r rune) ([]path, []Result) {
	type key struct {
		n       *node
		trigger string
		left    string
	}
	seen := make(map[key]bool)
	var next, done []path

	advance := func(p path, child *node, separator bool) {
		np := p
		np.node = child
		np.length++
		if separator {
			if p.node == m.root {
				np.left = string(r)
			} else {
				np.right = string(r)
			}
		} else {
			np.trigger += string(r)
		}
		if len(child.ids) > 0 {
			done = append(done, np)
		}
		k := key{child, np.trigger, np.left}
		if child.hasChildren() && !seen[k] {
			seen[k] = true
			next = append(next, np)
		}
	}

	candidates := make([]path, 0, len(paths)+1)
	candidates = append(candidates, paths...)
	candidates = append(candidates, path{node: m.root})

	for _, p := range candidates {
		if p.node.separator != nil && m.isSeparator(r) {
			advance(p, p.node.separator, true)
		}
		if c := p.node.chars[r]; c != nil {
			advance(p, c, false)
		}
		if c := p.node.insensitive[unicode.ToLower(r)]; c != nil {
			advance(p, c, false)
		}
	}

	if len(done) == 0 {
		return next, nil
	}
	return nil, m.results(done)
}

func (m *Rolling) results(done []path) []Result {
	longest := 0
	for _, p := range done {
		longest = max(longest, p.length)
	}

	var results []Result
	for _, p := range done {
		if p.length != longest {
			continue
		}
		for _, id := range p.node.ids {
			if slices.ContainsFunc(results, func(r Result) bool { return r.ID == id }) {
				continue
			}
			results = append(results, Result{
				ID:             id,
				Trigger:        p.trigger,
				LeftSeparator:  p.left,
				RightSeparator: p.right,
			})
		}
	}
	slices.SortStableFunc(results, func(a, b Result) int { return int(a.ID) - int(b.ID) })
	return results
}

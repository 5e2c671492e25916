package testutil

import (
	"context"
	"sync"

	"github.com/roach88/xpand/internal/process"
)

// Cancel is the answer that dismisses a selection.
const Cancel = -1

// ScriptedSelector answers selections and choices from a fixed list of
// indexes, in order. Once the script is used up it picks the first entry.
// It satisfies process.Selector and render.Chooser.
//
// Thread-safety: safe for concurrent use.
type ScriptedSelector struct {
	mu      sync.Mutex
	answers []int
	asked   [][]string
}

// NewScriptedSelector answers with the given indexes. Cancel dismisses.
func NewScriptedSelector(answers ...int) *ScriptedSelector {
	return &ScriptedSelector{answers: answers}
}

// Select implements process.Selector.
func (s *ScriptedSelector) Select(_ context.Context, candidates []process.Candidate) (int32, bool, error) {
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label
	}
	idx, ok := s.answer(labels)
	if !ok {
		return 0, false, nil
	}
	return candidates[idx].ID, true, nil
}

// Choose implements render.Chooser.
func (s *ScriptedSelector) Choose(_ context.Context, labels []string) (int, bool, error) {
	idx, ok := s.answer(labels)
	return idx, ok, nil
}

// Asked returns the label lists shown so far.
func (s *ScriptedSelector) Asked() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.asked...)
}

func (s *ScriptedSelector) answer(labels []string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, labels)

	idx := 0
	if len(s.answers) > 0 {
		idx = s.answers[0]
		s.answers = s.answers[1:]
	}
	if idx < 0 || idx >= len(labels) {
		return 0, false
	}
	return idx, true
}

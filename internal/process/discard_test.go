package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
)

func TestPastDiscard_BetweenDropsBracketedEvents(t *testing.T) {
	rec := &recorder{}
	p := New([]Middleware{NewPastDiscard(), rec})
	ctx := context.Background()

	results := p.Process(ctx, event.New(99, event.DiscardBetween{StartID: 100, EndID: 103}))
	require.Len(t, results, 1)
	assert.True(t, results[0].IsNoop(), "the directive itself is consumed")

	for id := event.SourceID(99); id <= 103; id++ {
		p.Process(ctx, key(id, "k"))
	}

	var passed []event.SourceID
	for _, e := range rec.seen {
		passed = append(passed, e.SourceID)
	}
	assert.Equal(t, []event.SourceID{99, 103}, passed)
}

func TestPastDiscard_Previous(t *testing.T) {
	s := NewPastDiscard()

	out, _ := runStage(s, event.New(5, event.DiscardPrevious{MinimumSourceID: 10}))
	assert.True(t, out.IsNoop())

	out, _ = runStage(s, key(9, "a"))
	assert.True(t, out.IsNoop())
	out, _ = runStage(s, key(10, "a"))
	assert.False(t, out.IsNoop())

	// A lower bound never moves the threshold back.
	runStage(s, event.New(11, event.DiscardPrevious{MinimumSourceID: 3}))
	out, _ = runStage(s, key(9, "a"))
	assert.True(t, out.IsNoop())
}

func TestPastDiscard_PrunesAndCapsRanges(t *testing.T) {
	s := NewPastDiscard()

	runStage(s, event.New(1, event.DiscardBetween{StartID: 2, EndID: 4}))
	runStage(s, event.New(1, event.DiscardBetween{StartID: 20, EndID: 30}))
	runStage(s, event.New(1, event.DiscardPrevious{MinimumSourceID: 10}))
	assert.Len(t, s.ranges, 1)

	// Empty and fully stale ranges are ignored.
	runStage(s, event.New(1, event.DiscardBetween{StartID: 5, EndID: 5}))
	runStage(s, event.New(1, event.DiscardBetween{StartID: 1, EndID: 8}))
	assert.Len(t, s.ranges, 1)

	for i := range 40 {
		start := event.SourceID(100 + 2*i)
		runStage(s, event.New(1, event.DiscardBetween{StartID: start, EndID: start + 1}))
	}
	assert.Len(t, s.ranges, maxDiscardRanges)
	out, _ := runStage(s, key(100, "a"))
	assert.False(t, out.IsNoop(), "oldest ranges are forgotten first")
	out, _ = runStage(s, key(178, "a"))
	assert.True(t, out.IsNoop())
}

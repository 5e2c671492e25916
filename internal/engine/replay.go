package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/journal"
	"github.com/roach88/xpand/internal/process"
)

// Divergence is a replayed input whose results differ from the recording.
type Divergence struct {
	Seq      int64
	Input    event.Event
	Recorded []event.Event
	Replayed []event.Event
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Inputs      int
	Divergences []Divergence
}

// Identical reports whether every input produced the recorded results.
func (r ReplayResult) Identical() bool { return len(r.Divergences) == 0 }

// Replay feeds recorded inputs to processor in order and compares its
// non-NOOP results with the recorded ones. Effects are not dispatched.
//
// seq must be the sequencer the processor's stages draw from. Before each
// input it is advanced past the input's source id, which reproduces the
// recording as long as no input was captured while an earlier pass was
// still running. Input typed ahead of an injection can therefore show up
// as a divergence.
func Replay(ctx context.Context, entries []journal.Entry, processor *process.Processor, seq *event.Sequencer) (ReplayResult, error) {
	res := ReplayResult{Inputs: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		seq.AdvanceTo(entry.Input.SourceID)
		replayed := process.Terminal(processor.Process(ctx, entry.Input))
		same, err := sameEvents(entry.Outputs, replayed)
		if err != nil {
			return res, fmt.Errorf("replay input %d: %w", entry.Seq, err)
		}
		if !same {
			res.Divergences = append(res.Divergences, Divergence{
				Seq:      entry.Seq,
				Input:    entry.Input,
				Recorded: entry.Outputs,
				Replayed: replayed,
			})
		}
	}
	return res, nil
}

// sameEvents compares events by their canonical encoding.
func sameEvents(a, b []event.Event) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		ea, err := event.Encode(a[i])
		if err != nil {
			return false, err
		}
		eb, err := event.Encode(b[i])
		if err != nil {
			return false, err
		}
		if !bytes.Equal(ea, eb) {
			return false, nil
		}
	}
	return true, nil
}

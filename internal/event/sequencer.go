package event

import "sync/atomic"

// SourceID correlates every event derived from one external input.
type SourceID uint32

// Sequencer issues monotonically increasing source ids.
//
// It is the only state shared between the detection goroutine and the engine
// goroutine, so it is backed by an atomic counter and safe for concurrent use.
type Sequencer struct {
	seq atomic.Uint32
}

// NewSequencer creates a sequencer whose first id is 1.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// NewSequencerAt creates a sequencer that resumes after start.
// Used for replay so that recorded and regenerated ids line up.
func NewSequencerAt(start SourceID) *Sequencer {
	s := &Sequencer{}
	s.seq.Store(uint32(start))
	return s
}

// Next returns a fresh id. Each call returns a unique, increasing value.
func (s *Sequencer) Next() SourceID {
	return SourceID(s.seq.Add(1))
}

// Current returns the last issued id without advancing.
func (s *Sequencer) Current() SourceID {
	return SourceID(s.seq.Load())
}

// AdvanceTo moves the counter forward to at least id, so the next id is
// above it. It never moves backwards.
func (s *Sequencer) AdvanceTo(id SourceID) {
	for {
		cur := s.seq.Load()
		if cur >= uint32(id) || s.seq.CompareAndSwap(cur, uint32(id)) {
			return
		}
	}
}

package process

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// maxDiscardRanges caps the remembered DiscardBetween ranges; the oldest
// are forgotten first.
const maxDiscardRanges = 32

type sourceRange struct {
	start, end event.SourceID
}

// PastDiscard drops events by source id. DiscardPrevious drops everything
// below a bound; DiscardBetween drops a half-open range. Both directives
// are consumed here.
type PastDiscard struct {
	minimum event.SourceID
	ranges  []sourceRange
	log     zerolog.Logger
}

// NewPastDiscard creates the staleness stage.
func NewPastDiscard() *PastDiscard {
	return &PastDiscard{log: logging.Component("process.discard")}
}

// Name implements Middleware.
func (*PastDiscard) Name() string { return "past_discard" }

// Next implements Middleware.
func (s *PastDiscard) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	switch t := ev.Type.(type) {
	case event.DiscardPrevious:
		if t.MinimumSourceID > s.minimum {
			s.minimum = t.MinimumSourceID
			s.prune()
		}
		return ev.Noop()
	case event.DiscardBetween:
		if t.EndID > t.StartID && t.EndID > s.minimum {
			s.ranges = append(s.ranges, sourceRange{start: t.StartID, end: t.EndID})
			if len(s.ranges) > maxDiscardRanges {
				s.ranges = s.ranges[len(s.ranges)-maxDiscardRanges:]
			}
		}
		return ev.Noop()
	}

	if s.discards(ev.SourceID) {
		s.log.Trace().
			Uint32("source_id", uint32(ev.SourceID)).
			Str("kind", string(ev.Kind())).
			Msg("Discarding stale event")
		return ev.Noop()
	}
	return ev
}

func (s *PastDiscard) discards(id event.SourceID) bool {
	if id < s.minimum {
		return true
	}
	for _, r := range s.ranges {
		if id >= r.start && id < r.end {
			return true
		}
	}
	return false
}

func (s *PastDiscard) prune() {
	kept := s.ranges[:0]
	for _, r := range s.ranges {
		if r.end > s.minimum {
			kept = append(kept, r)
		}
	}
	s.ranges = kept
}

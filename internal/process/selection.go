package process

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// Candidate is one entry shown by the selector.
type Candidate struct {
	ID          int32
	Label       string
	Trigger     string
	SearchTerms []string
}

// Selector shows a blocking choice between candidates. ok is false when
// the user dismissed it.
type Selector interface {
	Select(ctx context.Context, candidates []Candidate) (id int32, ok bool, err error)
}

// MatchSelect picks the match to expand.
//
// No valid candidate yields NOOP and a single one is selected directly.
// Otherwise the selector runs. Events funneled while it was open get source
// ids inside a bracket of fresh ids, and a DiscardBetween for that bracket
// keeps them from expanding again.
type MatchSelect struct {
	matches  Matches
	selector Selector
	seq      *event.Sequencer
	log      zerolog.Logger
}

// NewMatchSelect creates the selection stage.
func NewMatchSelect(matches Matches, selector Selector, seq *event.Sequencer) *MatchSelect {
	return &MatchSelect{
		matches:  matches,
		selector: selector,
		seq:      seq,
		log:      logging.Component("process.select"),
	}
}

// Name implements Middleware.
func (*MatchSelect) Name() string { return "match_select" }

// Next implements Middleware.
func (s *MatchSelect) Next(ctx context.Context, ev event.Event, dispatch Dispatch) event.Event {
	detected, ok := ev.Type.(event.MatchesDetected)
	if !ok {
		return ev
	}

	store, _ := s.matches.Load()
	var valid []event.DetectedMatch
	for _, d := range detected.Matches {
		if _, exists := store.Match(d.ID); exists {
			valid = append(valid, d)
		}
	}

	switch {
	case len(valid) == 0:
		s.log.Debug().Uint32("source_id", uint32(ev.SourceID)).Msg("No valid candidates")
		return ev.Noop()
	case len(valid) == 1 && !detected.IsSearch:
		return ev.CausedBy(event.MatchSelected{Chosen: valid[0]})
	}

	if s.selector == nil {
		s.log.Warn().Msg("Several candidates but no selector available")
		return ev.Noop()
	}

	candidates := make([]Candidate, len(valid))
	for i, d := range valid {
		m, _ := store.Match(d.ID)
		candidates[i] = Candidate{
			ID:          d.ID,
			Label:       m.Description(),
			Trigger:     d.Trigger,
			SearchTerms: m.SearchTerms,
		}
	}

	start := s.seq.Next()
	id, chosen, err := s.selector.Select(ctx, candidates)
	end := s.seq.Next()
	dispatch(ev.CausedBy(event.DiscardBetween{StartID: start, EndID: end}))

	if err != nil {
		s.log.Warn().Err(err).Msg("Selector failed")
		return ev.Noop()
	}
	if !chosen {
		return ev.Noop()
	}
	for _, d := range valid {
		if d.ID == id {
			return ev.CausedBy(event.MatchSelected{Chosen: d})
		}
	}
	s.log.Warn().Int32("match_id", id).Msg("Selector returned an unknown candidate")
	return ev.Noop()
}

// CauseCompensate schedules removal of the typed trigger. A match with a
// trigger becomes a TriggerCompensation effect, with the expansion request
// dispatched behind it; a search selection has nothing to remove.
type CauseCompensate struct{}

// Name implements Middleware.
func (CauseCompensate) Name() string { return "cause_compensate" }

// Next implements Middleware.
func (CauseCompensate) Next(_ context.Context, ev event.Event, dispatch Dispatch) event.Event {
	sel, ok := ev.Type.(event.MatchSelected)
	if !ok {
		return ev
	}
	compensated := ev.CausedBy(event.CauseCompensatedMatch{Match: sel.Chosen})
	if sel.Chosen.Trigger == "" {
		return compensated
	}
	dispatch(compensated)
	return ev.CausedBy(event.TriggerCompensation{
		Trigger:        sel.Chosen.Trigger,
		LeftSeparator:  sel.Chosen.LeftSeparator,
		RightSeparator: sel.Chosen.RightSeparator,
	})
}

// Multiplex turns a compensated match into a rendering or image request.
type Multiplex struct {
	matches Matches
	log     zerolog.Logger
}

// NewMultiplex creates the stage.
func NewMultiplex(matches Matches) *Multiplex {
	return &Multiplex{matches: matches, log: logging.Component("process.multiplex")}
}

// Name implements Middleware.
func (*Multiplex) Name() string { return "multiplex" }

// Next implements Middleware.
func (s *Multiplex) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	cm, ok := ev.Type.(event.CauseCompensatedMatch)
	if !ok {
		return ev
	}
	store, _ := s.matches.Load()
	m, exists := store.Match(cm.Match.ID)
	if !exists {
		s.log.Warn().Int32("match_id", cm.Match.ID).Msg("Match disappeared before expansion")
		return ev.Noop()
	}
	if m.IsImage() {
		return ev.CausedBy(event.ImageRequested{MatchID: m.ID, ImagePath: m.ImagePath})
	}
	return ev.CausedBy(event.RenderingRequested{
		MatchID:        m.ID,
		Trigger:        cm.Match.Trigger,
		LeftSeparator:  cm.Match.LeftSeparator,
		RightSeparator: cm.Match.RightSeparator,
		TriggerArgs:    cm.Match.Args,
		Format:         m.Format(),
		ForceMode:      m.ForceMode,
	})
}

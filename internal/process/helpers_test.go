package process

import (
	"context"
	"time"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/match"
	"github.com/roach88/xpand/internal/render"
)

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

// recorder passes every event through and remembers it.
type recorder struct {
	seen []event.Event
}

func (*recorder) Name() string { return "recorder" }

func (r *recorder) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	r.seen = append(r.seen, ev)
	return ev
}

type fakeSelector struct {
	id       int32
	ok       bool
	err      error
	seen     []Candidate
	onSelect func()
}

func (f *fakeSelector) Select(_ context.Context, candidates []Candidate) (int32, bool, error) {
	f.seen = candidates
	if f.onSelect != nil {
		f.onSelect()
	}
	return f.id, f.ok, f.err
}

type fakeModifiers struct {
	pressed func() bool
}

func (f fakeModifiers) AnyModifierPressed() bool { return f.pressed() }

func newHolder(matches ...match.Match) *match.Holder {
	return match.NewHolder(match.NewStore(matches, nil))
}

func newRenderer() *render.Renderer {
	return render.NewRenderer(render.Builtins(render.Collaborators{
		Now: func() time.Time { return fixedNow },
	})...)
}

func key(id event.SourceID, text string) event.Event {
	return event.New(id, event.Keyboard{Key: event.KeyOther, Value: text, Status: event.Pressed})
}

func special(id event.SourceID, k event.Key, status event.Status) event.Event {
	return event.New(id, event.Keyboard{Key: k, Status: status})
}

func kinds(events []event.Event) []event.Kind {
	out := make([]event.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}

// runStage runs a single stage and returns its output and dispatched events.
func runStage(m Middleware, ev event.Event) (event.Event, []event.Event) {
	var dispatched []event.Event
	out := m.Next(context.Background(), ev, func(e event.Event) { dispatched = append(dispatched, e) })
	return out, dispatched
}

package funnel

import (
	"context"
	"errors"
	"reflect"

	"github.com/roach88/xpand/internal/event"
)

// ErrClosed is returned by Receive once every source is closed and
// drained.
var ErrClosed = errors.New("funnel: all sources closed")

// Funnel waits on several sources at once.
type Funnel struct {
	sources []*Source
	open    []bool
}

// New creates a funnel over sources. When several sources are ready at the
// same time the one listed first wins, so urgent sources such as the exit
// signal belong at the front.
func New(sources ...*Source) *Funnel {
	open := make([]bool, len(sources))
	for i := range open {
		open[i] = true
	}
	return &Funnel{sources: sources, open: open}
}

// Receive returns the next event. It blocks until one is available, ctx
// ends, or every source is closed.
func (f *Funnel) Receive(ctx context.Context) (event.Event, error) {
	for {
		if ev, ok := f.poll(); ok {
			return ev, nil
		}
		if !f.anyOpen() {
			return event.Event{}, ErrClosed
		}

		cases := make([]reflect.SelectCase, 0, len(f.sources)+1)
		index := make([]int, 0, len(f.sources))
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
		for i, s := range f.sources {
			if f.open[i] {
				cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(s.events())})
				index = append(index, i)
			}
		}

		chosen, v, ok := reflect.Select(cases)
		if chosen == 0 {
			return event.Event{}, ctx.Err()
		}
		if !ok {
			f.open[index[chosen-1]] = false
			continue
		}
		return v.Interface().(event.Event), nil
	}
}

// poll takes a ready event without blocking, honoring source order.
func (f *Funnel) poll() (event.Event, bool) {
	for i, s := range f.sources {
		if !f.open[i] {
			continue
		}
		select {
		case ev, ok := <-s.events():
			if !ok {
				f.open[i] = false
				continue
			}
			return ev, true
		default:
		}
	}
	return event.Event{}, false
}

func (f *Funnel) anyOpen() bool {
	for _, o := range f.open {
		if o {
			return true
		}
	}
	return false
}

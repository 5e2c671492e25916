package funnel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/keystate"
)

func press(v string) event.Keyboard {
	return event.Keyboard{Key: event.KeyOther, Value: v, Status: event.Pressed}
}

func TestSource_StampsSharedIDs(t *testing.T) {
	seq := event.NewSequencer()
	keys := NewSource("keys", seq)
	ui := NewSource("ui", seq)
	ctx := context.Background()

	id1, ok := keys.Emit(ctx, press("a"))
	require.True(t, ok)
	id2, _ := ui.Emit(ctx, event.SearchRequested{})
	id3, _ := keys.Emit(ctx, press("b"))

	assert.Equal(t, []event.SourceID{1, 2, 3}, []event.SourceID{id1, id2, id3})
}

func TestSource_ObservesKeys(t *testing.T) {
	state := keystate.New(keystate.Options{})
	src := NewSource("keys", event.NewSequencer(), WithKeyObserver(state))
	ctx := context.Background()

	src.Emit(ctx, event.Keyboard{Key: event.KeyCtrl, Status: event.Pressed})
	assert.True(t, state.AnyModifierPressed())
	src.Emit(ctx, event.Keyboard{Key: event.KeyCtrl, Status: event.Released})
	assert.False(t, state.AnyModifierPressed())
}

func TestSource_EmitAfterCloseAndCancel(t *testing.T) {
	src := NewSource("keys", event.NewSequencer(), WithBuffer(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok := src.Emit(ctx, press("a"))
	assert.False(t, ok, "nobody reads an unbuffered source")

	src.Close()
	src.Close()
	_, ok = src.Emit(context.Background(), press("b"))
	assert.False(t, ok)
}

func TestSource_CloseReleasesBlockedEmitter(t *testing.T) {
	src := NewSource("keys", event.NewSequencer(), WithBuffer(0))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := src.Emit(context.Background(), press("a"))
		assert.False(t, ok)
	}()

	time.Sleep(10 * time.Millisecond)
	src.Close()
	wg.Wait()
}

func TestFunnel_SourceOrderBreaksTies(t *testing.T) {
	seq := event.NewSequencer()
	exit := NewSource("exit", seq)
	keys := NewSource("keys", seq)
	f := New(exit, keys)
	ctx := context.Background()

	keys.Emit(ctx, press("a"))
	keys.Emit(ctx, press("b"))
	exit.Emit(ctx, event.ExitRequested{Mode: event.ExitAllProcesses})

	var got []event.Kind
	for range 3 {
		ev, err := f.Receive(ctx)
		require.NoError(t, err)
		got = append(got, ev.Kind())
	}
	assert.Equal(t, []event.Kind{event.KindExitRequested, event.KindKeyboard, event.KindKeyboard}, got)
}

func TestFunnel_BlocksUntilEvent(t *testing.T) {
	seq := event.NewSequencer()
	keys := NewSource("keys", seq)
	ui := NewSource("ui", seq)
	f := New(keys, ui)

	go func() {
		time.Sleep(10 * time.Millisecond)
		ui.Emit(context.Background(), event.ContextMenuClicked{ItemID: event.MenuItemToggle})
	}()

	ev, err := f.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, event.ContextMenuClicked{ItemID: event.MenuItemToggle}, ev.Type)
	assert.Equal(t, event.SourceID(1), ev.SourceID)
}

func TestFunnel_DrainsThenReportsClosed(t *testing.T) {
	seq := event.NewSequencer()
	a := NewSource("a", seq)
	b := NewSource("b", seq)
	f := New(a, b)
	ctx := context.Background()

	a.Emit(ctx, press("x"))
	a.Close()
	b.Close()

	ev, err := f.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", ev.Type.(event.Keyboard).Value)

	_, err = f.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFunnel_ContextCancel(t *testing.T) {
	f := New(NewSource("keys", event.NewSequencer()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Receive(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

package console

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
)

type recordingEmitter struct {
	mu    sync.Mutex
	types []event.Type
}

func (e *recordingEmitter) Emit(_ context.Context, t event.Type) (event.SourceID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, t)
	return event.SourceID(len(e.types)), true
}

func TestTerminal_EchoesThenEmits(t *testing.T) {
	screen := NewScreen()
	out := &recordingEmitter{}

	err := NewTerminal(strings.NewReader("ab\x7f\x03")).Run(context.Background(), out, screen)
	require.NoError(t, err)

	assert.Equal(t, "a", screen.String())
	require.Len(t, out.types, 7)
	assert.Equal(t, event.ExitRequested{Mode: event.ExitAllProcesses}, out.types[6])
}

func TestTerminal_CaptureRoutesPresses(t *testing.T) {
	term := NewTerminal(strings.NewReader("12"))
	out := &recordingEmitter{}
	screen := NewScreen()

	keys := term.Capture()
	require.NoError(t, term.Run(context.Background(), out, screen))
	term.Release()

	assert.Empty(t, out.types)
	assert.Empty(t, screen.String(), "captured keys are not echoed")
	require.Len(t, keys, 2)
	assert.Equal(t, press(event.KeyOther, "1"), <-keys)
	assert.Equal(t, press(event.KeyOther, "2"), <-keys)
}

func TestTerminal_NilEmitterDropsInput(t *testing.T) {
	screen := NewScreen()
	require.NoError(t, NewTerminal(strings.NewReader("x")).Run(context.Background(), nil, screen))
	assert.Equal(t, "x", screen.String())
}

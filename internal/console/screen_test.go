package console

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
)

func press(k event.Key, value string) event.Keyboard {
	return event.Keyboard{Key: k, Value: value, Status: event.Pressed}
}

func TestScreen_EchoAndEdit(t *testing.T) {
	s := NewScreen()
	for _, r := range "helo" {
		s.Apply(press(event.KeyOther, string(r)))
	}
	s.Apply(event.Keyboard{Key: event.KeyOther, Value: "x", Status: event.Released})
	s.Apply(press(event.KeyArrowLeft, ""))
	s.Apply(press(event.KeyOther, "l"))
	s.Apply(press(event.KeyEnd, ""))
	s.Apply(press(event.KeyEnter, "\n"))
	s.Apply(press(event.KeyShift, ""))

	assert.Equal(t, "hello\n", s.String())
	assert.Equal(t, 6, s.Cursor())
}

func TestScreen_Injection(t *testing.T) {
	ctx := context.Background()
	s := NewScreen()
	s.Type("say :date ")

	require.NoError(t, s.SendKeys(ctx, []event.Key{
		event.KeyBackspace, event.KeyBackspace, event.KeyBackspace,
		event.KeyBackspace, event.KeyBackspace, event.KeyBackspace,
	}))
	require.NoError(t, s.InjectText(ctx, "(x) "))
	require.NoError(t, s.SendKeys(ctx, []event.Key{event.KeyArrowLeft, event.KeyArrowLeft, event.KeyArrowLeft}))
	assert.Equal(t, "say (x) ", s.String())
	assert.Equal(t, 5, s.Cursor())

	err := s.SendKeys(ctx, []event.Key{event.KeyCtrl})
	assert.Error(t, err)
}

func TestScreen_EditsAtEdgesAreIgnored(t *testing.T) {
	ctx := context.Background()
	s := NewScreen()
	require.NoError(t, s.SendKeys(ctx, []event.Key{event.KeyBackspace, event.KeyArrowLeft, event.KeyDelete}))
	assert.Equal(t, "", s.String())

	s.Type("ab")
	require.NoError(t, s.SendKeys(ctx, []event.Key{event.KeyHome, event.KeyDelete, event.KeyArrowRight, event.KeyArrowRight}))
	assert.Equal(t, "b", s.String())
	assert.Equal(t, 1, s.Cursor())
}

func TestScreen_OnChange(t *testing.T) {
	s := NewScreen()
	var seen []string
	s.OnChange(func(text string, _ int) { seen = append(seen, text) })

	s.Type("a")
	s.Apply(press(event.KeyBackspace, ""))
	s.Clear()
	assert.Equal(t, []string{"a", "", ""}, seen)
}

func TestScreen_DrawShowsCaretLine(t *testing.T) {
	s := NewScreen()
	s.Type("first\nsecond")
	require.NoError(t, s.SendKeys(context.Background(), []event.Key{event.KeyArrowLeft, event.KeyArrowLeft}))

	var buf bytes.Buffer
	require.NoError(t, s.Draw(&buf))
	assert.Equal(t, "\r\x1b[2Ksecond\x1b[2D", buf.String())
}

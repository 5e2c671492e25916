package console

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
)

func TestDecoder_Keys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   event.Key
		value string
	}{
		{"letter", "a", event.KeyOther, "a"},
		{"multibyte", "é", event.KeyOther, "é"},
		{"space", " ", event.KeySpace, " "},
		{"enter", "\r", event.KeyEnter, "\n"},
		{"tab", "\t", event.KeyTab, "\t"},
		{"delete byte", "\x7f", event.KeyBackspace, ""},
		{"backspace byte", "\x08", event.KeyBackspace, ""},
		{"lone escape", "\x1b", event.KeyEscape, ""},
		{"arrow left", "\x1b[D", event.KeyArrowLeft, ""},
		{"arrow up ss3", "\x1bOA", event.KeyArrowUp, ""},
		{"home", "\x1b[H", event.KeyHome, ""},
		{"delete", "\x1b[3~", event.KeyDelete, ""},
		{"page down", "\x1b[6~", event.KeyPageDown, ""},
		{"unknown sequence skipped", "\x1b[Zx", event.KeyOther, "x"},
		{"other control skipped", "\x01y", event.KeyOther, "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types, err := NewDecoder(strings.NewReader(tt.input)).Next()
			require.NoError(t, err)
			assert.Equal(t, []event.Type{
				event.Keyboard{Key: tt.key, Value: tt.value, Status: event.Pressed},
				event.Keyboard{Key: tt.key, Value: tt.value, Status: event.Released},
			}, types)
		})
	}
}

func TestDecoder_Controls(t *testing.T) {
	tests := []struct {
		input string
		want  event.Type
	}{
		{"\x03", event.ExitRequested{Mode: event.ExitAllProcesses}},
		{"\x04", event.ExitRequested{Mode: event.ExitAllProcesses}},
		{"\x00", event.SearchRequested{}},
		{"\x14", event.ToggleRequest{}},
	}
	for _, tt := range tests {
		types, err := NewDecoder(strings.NewReader(tt.input)).Next()
		require.NoError(t, err)
		assert.Equal(t, []event.Type{tt.want}, types, "%q", tt.input)
	}
}

func TestDecoder_Sequence(t *testing.T) {
	d := NewDecoder(strings.NewReader("hi\x1b[D"))

	var keys []event.Key
	var values []string
	for {
		types, err := d.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		kb := types[0].(event.Keyboard)
		keys = append(keys, kb.Key)
		values = append(values, kb.Value)
	}
	assert.Equal(t, []event.Key{event.KeyOther, event.KeyOther, event.KeyArrowLeft}, keys)
	assert.Equal(t, []string{"h", "i", ""}, values)
}

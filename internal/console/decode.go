package console

import (
	"bufio"
	"io"
	"unicode"

	"github.com/roach88/xpand/internal/event"
)

// Control bytes with a meaning of their own in the console.
const (
	ctrlSpace = 0x00
	ctrlC     = 0x03
	ctrlD     = 0x04
	ctrlT     = 0x14
	esc       = 0x1b
	del       = 0x7f
	bs        = 0x08
)

// Decoder turns raw terminal bytes into input events. Every key yields a
// press followed by a release.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next blocks until at least one event is decoded. Unknown sequences are
// skipped.
func (d *Decoder) Next() ([]event.Type, error) {
	for {
		ch, _, err := d.r.ReadRune()
		if err != nil {
			return nil, err
		}

		switch ch {
		case ctrlC, ctrlD:
			return []event.Type{event.ExitRequested{Mode: event.ExitAllProcesses}}, nil
		case ctrlSpace:
			return []event.Type{event.SearchRequested{}}, nil
		case ctrlT:
			return []event.Type{event.ToggleRequest{}}, nil
		case del, bs:
			return stroke(event.KeyBackspace, ""), nil
		case '\r', '\n':
			return stroke(event.KeyEnter, "\n"), nil
		case '\t':
			return stroke(event.KeyTab, "\t"), nil
		case ' ':
			return stroke(event.KeySpace, " "), nil
		case esc:
			if k, ok := d.escape(); ok {
				return stroke(k, ""), nil
			}
			continue
		}

		if unicode.IsControl(ch) || ch == unicode.ReplacementChar {
			continue
		}
		return stroke(event.KeyOther, string(ch)), nil
	}
}

// escape decodes the rest of an ESC sequence. A lone ESC is the Escape key.
func (d *Decoder) escape() (event.Key, bool) {
	if d.r.Buffered() == 0 {
		return event.KeyEscape, true
	}
	next, err := d.r.ReadByte()
	if err != nil {
		return event.KeyEscape, true
	}
	if next != '[' && next != 'O' {
		return "", false
	}
	final, err := d.r.ReadByte()
	if err != nil {
		return "", false
	}

	switch final {
	case 'A':
		return event.KeyArrowUp, true
	case 'B':
		return event.KeyArrowDown, true
	case 'C':
		return event.KeyArrowRight, true
	case 'D':
		return event.KeyArrowLeft, true
	case 'H':
		return event.KeyHome, true
	case 'F':
		return event.KeyEnd, true
	}

	// ESC [ n ~
	if final < '0' || final > '9' {
		return "", false
	}
	code := int(final - '0')
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return "", false
		}
		if b == '~' {
			break
		}
		if b < '0' || b > '9' {
			return "", false
		}
		code = code*10 + int(b-'0')
	}
	switch code {
	case 1, 7:
		return event.KeyHome, true
	case 2:
		return event.KeyInsert, true
	case 3:
		return event.KeyDelete, true
	case 4, 8:
		return event.KeyEnd, true
	case 5:
		return event.KeyPageUp, true
	case 6:
		return event.KeyPageDown, true
	}
	return "", false
}

func stroke(k event.Key, value string) []event.Type {
	return []event.Type{
		event.Keyboard{Key: k, Value: value, Status: event.Pressed},
		event.Keyboard{Key: k, Value: value, Status: event.Released},
	}
}

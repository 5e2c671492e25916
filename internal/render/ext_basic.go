package render

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Echo returns its "echo" parameter verbatim.
type Echo struct{}

func (Echo) Name() string { return "echo" }

func (Echo) Calculate(_ context.Context, _ Scope, params Params) Output {
	s, err := stringParam(params, "echo", "")
	if err != nil {
		return Failure(err)
	}
	return Success(TextValue(s))
}

// Date formats the current time with a strftime-style "format" parameter,
// shifted by an optional "offset" in seconds.
type Date struct {
	Now func() time.Time
}

func (Date) Name() string { return "date" }

func (d Date) Calculate(_ context.Context, _ Scope, params Params) Output {
	format, err := stringParam(params, "format", "%H:%M")
	if err != nil {
		return Failure(err)
	}
	offset, err := intParam(params, "offset", 0)
	if err != nil {
		return Failure(err)
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	t := now().Add(time.Duration(offset) * time.Second)
	return Success(TextValue(Strftime(t, format)))
}

// Strftime formats t using the common strftime directives.
func Strftime(t time.Time, format string) string {
	var b strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 == len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'Y':
			b.WriteString(strconv.Itoa(t.Year()))
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'e':
			fmt.Fprintf(&b, "%2d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'I':
			fmt.Fprintf(&b, "%02d", (t.Hour()+11)%12+1)
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'p':
			b.WriteString(t.Format("PM"))
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'B':
			b.WriteString(t.Format("January"))
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'A':
			b.WriteString(t.Format("Monday"))
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case 'Z':
			b.WriteString(t.Format("MST"))
		case 'z':
			b.WriteString(t.Format("-0700"))
		case 'F':
			b.WriteString(t.Format("2006-01-02"))
		case 'T':
			b.WriteString(t.Format("15:04:05"))
		case 'R':
			b.WriteString(t.Format("15:04"))
		case 'D':
			b.WriteString(t.Format("01/02/06"))
		case '%':
			b.WriteRune('%')
		default:
			b.WriteRune('%')
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}

// Random picks one of its "choices".
type Random struct {
	Rand *rand.Rand
}

func (Random) Name() string { return "random" }

func (r Random) Calculate(_ context.Context, _ Scope, params Params) Output {
	choices, err := stringListParam(params, "choices")
	if err != nil {
		return Failure(err)
	}
	if len(choices) == 0 {
		return Failure(errors.New("random requires at least one choice"))
	}

	var idx int
	if r.Rand != nil {
		idx = r.Rand.IntN(len(choices))
	} else {
		idx = rand.IntN(len(choices))
	}
	return Success(TextValue(choices[idx]))
}

// ClipboardReader reads the current clipboard text.
type ClipboardReader interface {
	ReadText() (string, error)
}

// Clipboard returns the clipboard contents.
type Clipboard struct {
	Reader ClipboardReader
}

func (Clipboard) Name() string { return "clipboard" }

func (c Clipboard) Calculate(_ context.Context, _ Scope, _ Params) Output {
	if c.Reader == nil {
		return Failure(errors.New("no clipboard available"))
	}
	text, err := c.Reader.ReadText()
	if err != nil {
		return Failure(fmt.Errorf("read clipboard: %w", err))
	}
	return Success(TextValue(text))
}

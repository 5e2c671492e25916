package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pterm/pterm"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/process"
)

// KeyCapture hands a prompt exclusive access to key presses. Terminal
// implements it.
type KeyCapture interface {
	Capture() <-chan event.Type
	Release()
}

var (
	titleStyle  = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	numberStyle = pterm.NewStyle(pterm.FgGray)
	hintStyle   = pterm.NewStyle(pterm.FgGray)
)

// Prompt is a numbered list the user picks from by typing a number and
// Enter. Enter alone picks the first entry; Escape or Ctrl-C cancels.
type Prompt struct {
	keys KeyCapture
	out  io.Writer
	mu   sync.Mutex
}

// NewPrompt writes its list to out and reads keys from keys.
func NewPrompt(keys KeyCapture, out io.Writer) *Prompt {
	return &Prompt{keys: keys, out: out}
}

// Select implements process.Selector.
func (p *Prompt) Select(ctx context.Context, candidates []process.Candidate) (int32, bool, error) {
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label
		if c.Trigger != "" && c.Trigger != c.Label {
			labels[i] += "  " + hintStyle.Sprint(c.Trigger)
		}
	}
	idx, ok, err := p.ask(ctx, "Select a match", labels)
	if err != nil || !ok {
		return 0, false, err
	}
	return candidates[idx].ID, true, nil
}

// Choose implements render.Chooser.
func (p *Prompt) Choose(ctx context.Context, labels []string) (int, bool, error) {
	return p.ask(ctx, "Choose a value", labels)
}

func (p *Prompt) ask(ctx context.Context, title string, labels []string) (int, bool, error) {
	if len(labels) == 0 {
		return 0, false, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.keys.Capture()
	defer p.keys.Release()

	p.printf("\r\n%s\r\n", titleStyle.Sprint(title))
	for i, label := range labels {
		p.printf("  %s %s\r\n", numberStyle.Sprintf("%2d)", i+1), label)
	}
	p.printf("> ")

	var input []byte
	for {
		var typ event.Type
		select {
		case <-ctx.Done():
			p.printf("\r\n")
			return 0, false, ctx.Err()
		case typ = <-keys:
		}

		switch t := typ.(type) {
		case event.ExitRequested:
			p.printf("\r\n")
			return 0, false, nil
		case event.Keyboard:
			switch {
			case t.Key == event.KeyEscape:
				p.printf("\r\n")
				return 0, false, nil
			case t.Key == event.KeyEnter:
				if len(input) == 0 {
					p.printf("\r\n")
					return 0, true, nil
				}
				n, err := strconv.Atoi(string(input))
				if err == nil && n >= 1 && n <= len(labels) {
					p.printf("\r\n")
					return n - 1, true, nil
				}
				p.printf("\r\n%s %q is not between 1 and %d\r\n> ", pterm.Warning.Prefix.Text, input, len(labels))
				input = input[:0]
			case t.Key == event.KeyBackspace:
				if len(input) > 0 {
					input = input[:len(input)-1]
					p.printf("\b \b")
				}
			case len(t.Value) == 1 && t.Value[0] >= '0' && t.Value[0] <= '9':
				input = append(input, t.Value[0])
				p.printf("%s", t.Value)
			}
		}
	}
}

func (p *Prompt) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

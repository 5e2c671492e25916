package process

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// Action turns rendered bodies and resolved images into inject effects. It
// dispatches MatchInjected, then a DiscardPrevious bound so input funneled
// before the injection is dropped.
type Action struct {
	seq *event.Sequencer
}

// NewAction creates the stage.
func NewAction(seq *event.Sequencer) *Action {
	return &Action{seq: seq}
}

// Name implements Middleware.
func (*Action) Name() string { return "action" }

// Next implements Middleware.
func (s *Action) Next(_ context.Context, ev event.Event, dispatch Dispatch) event.Event {
	var out event.Type
	switch t := ev.Type.(type) {
	case event.Rendered:
		switch t.Format {
		case event.FormatMarkdown:
			out = event.MarkdownInject{Markdown: t.Body}
		case event.FormatHTML:
			out = event.HTMLInject{HTML: t.Body}
		default:
			out = event.TextInject{Text: t.Body, ForceMode: t.ForceMode}
		}
	case event.ImageResolved:
		out = event.ImageInject{ImagePath: t.ImagePath}
	default:
		return ev
	}

	dispatch(ev.CausedBy(event.MatchInjected{}))
	dispatch(ev.CausedBy(event.DiscardPrevious{MinimumSourceID: s.seq.Next()}))
	return ev.CausedBy(out)
}

// Markdown converts markdown injections to HTML, keeping the source as the
// plain text fallback.
type Markdown struct {
	md  goldmark.Markdown
	log zerolog.Logger
}

// NewMarkdown creates the stage.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(), log: logging.Component("process.markdown")}
}

// Name implements Middleware.
func (*Markdown) Name() string { return "markdown" }

// Next implements Middleware.
func (s *Markdown) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	mi, ok := ev.Type.(event.MarkdownInject)
	if !ok {
		return ev
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(mi.Markdown), &buf); err != nil {
		s.log.Warn().Err(err).Msg("Markdown conversion failed")
		return ev.CausedBy(event.ProcessingError{Reason: err.Error()})
	}
	return ev.CausedBy(event.HTMLInject{
		HTML:         stripParagraph(buf.String()),
		FallbackText: mi.Markdown,
	})
}

// stripParagraph removes the paragraph goldmark wraps around single line
// input, so inline expansions do not start a new block.
func stripParagraph(html string) string {
	html = strings.TrimRight(html, "\n")
	if strings.HasPrefix(html, "<p>") && strings.HasSuffix(html, "</p>") &&
		strings.Count(html, "<p>") == 1 {
		return strings.TrimSuffix(strings.TrimPrefix(html, "<p>"), "</p>")
	}
	return html
}

package match

import (
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/matcher"
	"github.com/roach88/xpand/internal/render"
)

// Match is one configured expansion.
type Match struct {
	ID int32

	// Triggers are literal triggers; Regex is a pattern. A match has one
	// or the other.
	Triggers []string
	Regex    string

	// Exactly one body is set.
	Replace   string
	Markdown  string
	HTML      string
	ImagePath string

	Vars []render.Variable

	LeftWord       bool
	RightWord      bool
	PropagateCase  bool
	UppercaseStyle string
	ForceMode      event.ForceMode

	Label       string
	SearchTerms []string

	// Source is the file the match was loaded from.
	Source string
}

// Format reports the markup of the body.
func (m *Match) Format() event.Format {
	switch {
	case m.Markdown != "":
		return event.FormatMarkdown
	case m.HTML != "":
		return event.FormatHTML
	}
	return event.FormatText
}

// Body returns the template body for text, markdown and html matches.
func (m *Match) Body() string {
	switch m.Format() {
	case event.FormatMarkdown:
		return m.Markdown
	case event.FormatHTML:
		return m.HTML
	}
	return m.Replace
}

// IsImage reports whether the match injects an image instead of text.
func (m *Match) IsImage() bool {
	return m.ImagePath != ""
}

// Template returns the render template of the match, with regex captures
// added as local variables ahead of the configured ones.
func (m *Match) Template(args map[string]string) render.Template {
	vars := render.CaptureVars(args)
	vars = append(vars, m.Vars...)
	return render.Template{Body: m.Body(), Vars: vars}
}

// Description is a short human readable name, used by the selector.
func (m *Match) Description() string {
	switch {
	case m.Label != "":
		return m.Label
	case len(m.Triggers) > 0:
		return m.Triggers[0]
	case m.Regex != "":
		return m.Regex
	}
	return m.Replace
}

// triggerOptions translates the match flags into rolling trigger options.
func (m *Match) triggerOptions() matcher.TriggerOptions {
	return matcher.TriggerOptions{
		LeftWord:        m.LeftWord,
		RightWord:       m.RightWord,
		CaseInsensitive: m.PropagateCase,
	}
}

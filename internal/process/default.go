package process

import (
	"github.com/spf13/afero"

	"github.com/roach88/xpand/internal/event"
)

// Options are the collaborators and settings of the default chain.
type Options struct {
	Matches   Matches
	Renderer  Renderer
	Selector  Selector
	Sequencer *event.Sequencer
	Keys      ModifierState

	// FS resolves image paths; defaults to the OS filesystem.
	FS        afero.Fs
	ConfigDir string

	Matcher MatcherOptions
	Toggle  DisableOptions
	Delay   DelayOptions

	AltCodes      bool
	Undo          bool
	Notifications bool
	SearchHotKey  int32
}

// Default returns the standard stage chain. Order matters: staleness
// filtering runs first, injection deferral last.
func Default(opts Options) []Middleware {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	seq := opts.Sequencer
	if seq == nil {
		seq = event.NewSequencer()
	}

	return []Middleware{
		NewPastDiscard(),
		NewAltCode(opts.AltCodes),
		NewDisable(opts.Toggle),
		NewNotification(opts.Notifications),
		NewContextMenu(),
		NewHotKey(opts.SearchHotKey),
		NewMatching(opts.Matches, opts.Matcher),
		NewSearch(opts.Matches),
		NewMatchSelect(opts.Matches, opts.Selector, seq),
		CauseCompensate{},
		NewMultiplex(opts.Matches),
		NewRender(opts.Matches, opts.Renderer),
		NewImageResolve(fs, opts.ConfigDir),
		CursorHintStage{},
		Exit{},
		NewUndo(opts.Undo),
		NewAction(seq),
		NewMarkdown(),
		NewDelay(opts.Keys, opts.Delay),
	}
}

// Package app assembles the processor, the dispatcher and the engine from
// a configuration and a set of platform collaborators.
package app

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/afero"

	"github.com/roach88/xpand/internal/config"
	"github.com/roach88/xpand/internal/dispatch"
	"github.com/roach88/xpand/internal/engine"
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/match"
	"github.com/roach88/xpand/internal/matcher"
	"github.com/roach88/xpand/internal/process"
	"github.com/roach88/xpand/internal/render"
)

// Collaborators are the platform pieces the engine talks to. Leave an
// interface field unset, not a typed nil, when a piece is missing.
type Collaborators struct {
	Keys          dispatch.Keyboard
	Clipboard     dispatch.Clipboard
	ClipboardText render.ClipboardReader
	UI            dispatch.UI
	Selector      process.Selector
	Chooser       render.Chooser
	Forms         render.FormRenderer
	Modifiers     process.ModifierState

	// FS resolves image paths; defaults to the OS filesystem.
	FS   afero.Fs
	Now  func() time.Time
	Rand *rand.Rand
}

// App is an assembled expansion pipeline.
type App struct {
	Config     *config.Config
	Matches    *match.Holder
	Sequencer  *event.Sequencer
	Renderer   *render.Renderer
	Processor  *process.Processor
	Dispatcher *dispatch.Dispatcher

	collab Collaborators
}

// LoadMatches loads the match directory and publishes it in a new holder.
// Warnings are returned with the result; any load error fails.
func LoadMatches(fs afero.Fs, dir string) (*match.Holder, *match.LoadResult, error) {
	loader, err := match.NewLoader(fs)
	if err != nil {
		return nil, nil, err
	}
	result, errs := loader.Load(dir, match.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("loading matches from %s: %w", dir, errs[0])
	}
	return match.NewHolder(result.Store), result, nil
}

// New assembles the pipeline. seq is shared with the input sources.
func New(cfg *config.Config, matches *match.Holder, seq *event.Sequencer, c Collaborators) *App {
	if c.FS == nil {
		c.FS = afero.NewOsFs()
	}
	a := &App{
		Config:    cfg,
		Matches:   matches,
		Sequencer: seq,
		collab:    c,
	}
	a.Renderer = render.NewRenderer(render.Builtins(render.Collaborators{
		Now:            c.Now,
		Rand:           c.Rand,
		Clipboard:      c.ClipboardText,
		Chooser:        c.Chooser,
		Forms:          c.Forms,
		CommandTimeout: cfg.Render.ShellTimeout,
		ConfigDir:      cfg.Paths.Config,
	})...)
	a.Processor = a.NewProcessor()
	a.Dispatcher = dispatch.New(dispatch.Default(dispatch.Collaborators{
		Keys:      c.Keys,
		Clipboard: c.Clipboard,
		UI:        c.UI,
		ConfigDir: cfg.Paths.Config,
		Policy: dispatch.InjectPolicy{
			Backend:            dispatch.Backend(cfg.Inject.Backend),
			ClipboardThreshold: cfg.Inject.ClipboardThreshold,
		},
	}))
	return a
}

// NewProcessor builds a processor with fresh stage state over the same
// matches, renderer and sequencer.
func (a *App) NewProcessor(opts ...process.Option) *process.Processor {
	cfg := a.Config
	stages := process.Default(process.Options{
		Matches:   a.Matches,
		Renderer:  a.Renderer,
		Selector:  a.collab.Selector,
		Sequencer: a.Sequencer,
		Keys:      a.collab.Modifiers,
		FS:        a.collab.FS,
		ConfigDir: cfg.Paths.Config,
		Matcher: process.MatcherOptions{
			Matchers: match.MatcherOptions{
				Rolling: matcher.RollingOptions{WordSeparators: cfg.Matcher.WordSeparators},
				Regex:   matcher.RegexOptions{MaxBufferSize: cfg.Matcher.RegexBufferSize},
			},
			HistorySize: cfg.Matcher.HistorySize,
		},
		Toggle: process.DisableOptions{
			ToggleKey: cfg.Toggle.ToggleKey(),
			Interval:  cfg.Toggle.Interval,
			Now:       a.collab.Now,
		},
		Delay: process.DelayOptions{
			MaxWait: cfg.Inject.MaxModifierWait,
			Poll:    cfg.Inject.ModifierPoll,
		},
		AltCodes:      cfg.Engine.AltCodes,
		Undo:          cfg.Engine.UndoBackspace,
		Notifications: cfg.Engine.ShowNotifications,
		SearchHotKey:  cfg.Engine.SearchHotKey,
	})
	return process.New(stages, append([]process.Option{process.WithMaxSteps(cfg.Engine.MaxSteps)}, opts...)...)
}

// Engine connects input to the assembled pipeline.
func (a *App) Engine(input engine.Receiver, opts ...engine.Option) *engine.Engine {
	return engine.New(input, a.Processor, a.Dispatcher, opts...)
}

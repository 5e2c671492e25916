package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/xpand/internal/app"
	"github.com/roach88/xpand/internal/config"
	"github.com/roach88/xpand/internal/console"
	"github.com/roach88/xpand/internal/engine"
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/keystate"
	"github.com/roach88/xpand/internal/process"
	"github.com/roach88/xpand/internal/testutil"
)

// SimulationOptions are the flags shared by commands that simulate typing.
type SimulationOptions struct {
	*RootOptions
	Matches   string // match directory; defaults to paths.matches
	Clipboard string // clipboard contents seen by {{clipboard}} variables
	Picks     []int  // answers to selection prompts, in order
}

func (o *SimulationOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.Matches, "matches", "", "match directory (default from config)")
	flags.StringVar(&o.Clipboard, "clipboard", "", "clipboard contents")
	flags.IntSliceVar(&o.Picks, "pick", nil, "answers to selection prompts, -1 cancels")
}

// EffectRecord is one effect produced while typing.
type EffectRecord struct {
	Seq     int64           `json:"seq"`
	Input   string          `json:"input"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// simulation is an assembled pipeline fed from text instead of a keyboard.
// Effects land on an emulated screen.
type simulation struct {
	app    *app.App
	screen *console.Screen
	keys   *keystate.Store
}

func newSimulation(cfg *config.Config, opts *SimulationOptions, ui io.Writer, popts ...process.Option) (*simulation, error) {
	dir := opts.Matches
	if dir == "" {
		dir = cfg.Paths.Matches
	}
	holder, _, err := app.LoadMatches(afero.NewOsFs(), dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load matches", err)
	}

	screen := console.NewScreen()
	clip := console.NewClipboard(screen)
	clip.SetText(opts.Clipboard)
	sel := testutil.NewScriptedSelector(opts.Picks...)
	keys := keystate.New(keystate.Options{
		KeyTimeout:      cfg.KeyState.KeyTimeout,
		ModifierTimeout: cfg.KeyState.ModifierTimeout,
	})

	a := app.New(cfg, holder, event.NewSequencer(), app.Collaborators{
		Keys:          screen,
		Clipboard:     clip,
		ClipboardText: clip,
		UI:            console.NewUI(ui),
		Selector:      sel,
		Chooser:       sel,
		Modifiers:     keys,
	})
	if len(popts) > 0 {
		a.Processor = a.NewProcessor(popts...)
	}
	return &simulation{app: a, screen: screen, keys: keys}, nil
}

// typeText decodes text as terminal input and runs every event through the
// engine, one pass at a time. It stops early on an exit.
func (s *simulation) typeText(ctx context.Context, text string, opts ...engine.Option) ([]EffectRecord, event.ExitMode, error) {
	eng := s.app.Engine(nil, opts...)
	dec := console.NewDecoder(strings.NewReader(text))
	records := []EffectRecord{}

	for {
		types, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return records, "", nil
		}
		if err != nil {
			return records, "", err
		}

		for _, typ := range types {
			if kb, ok := typ.(event.Keyboard); ok {
				s.keys.Observe(kb)
				s.screen.Apply(kb)
			}
			pass := eng.Step(ctx, event.New(s.app.Sequencer.Next(), typ))
			for _, t := range pass.Terminal {
				switch t.Kind() {
				case event.KindKeyboard, event.KindMouse:
					continue
				}
				payload, err := event.EncodeType(t.Type)
				if err != nil {
					return records, "", fmt.Errorf("encode %s: %w", t.Kind(), err)
				}
				if string(payload) == "{}" {
					payload = nil
				}
				records = append(records, EffectRecord{
					Seq:     pass.Seq,
					Input:   string(pass.Input.Kind()),
					Kind:    string(t.Kind()),
					Payload: payload,
				})
				if exit, ok := t.Type.(event.Exit); ok {
					return records, exit.Mode, nil
				}
			}
		}
	}
}

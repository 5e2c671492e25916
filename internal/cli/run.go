package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/xpand/internal/app"
	"github.com/roach88/xpand/internal/config"
	"github.com/roach88/xpand/internal/console"
	"github.com/roach88/xpand/internal/engine"
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/funnel"
	"github.com/roach88/xpand/internal/journal"
	"github.com/roach88/xpand/internal/keystate"
	"github.com/roach88/xpand/internal/logging"
	"github.com/roach88/xpand/internal/match"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Matches    string
	Journal    bool
	NoWatch    bool
	SecureFile string

	// SessionIDs names journal sessions. Defaults to UUIDv7.
	SessionIDs journal.SessionIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Expand as you type in the terminal",
		Long: `Read keys from the terminal and expand matches as you type. The
terminal line stands in for the focused application: typed keys are
echoed and expansions are injected into it.

Keys:
  Ctrl-T      toggle expansion
  Ctrl-Space  search matches
  Ctrl-C      exit

Match files are reloaded when they change. With --journal (or
journal.enabled in the config) every input and its effects are recorded
for replay.

Example:
  xpand run
  xpand run --matches ./match --journal -vv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Matches, "matches", "", "match directory (default from config)")
	cmd.Flags().BoolVar(&opts.Journal, "journal", false, "record the session to the journal")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "do not reload matches on change")
	cmd.Flags().StringVar(&opts.SecureFile, "secure-file", "", "pause expansion while this file exists")

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	logging.Setup(opts.Verbose, cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	dir := opts.Matches
	if dir == "" {
		dir = cfg.Paths.Matches
	}

	loader, err := match.NewLoader(afero.NewOsFs())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build match schema", err)
	}
	loaded, errs := loader.Load(dir, match.LoadModeFailFast)
	if len(errs) > 0 {
		return WrapExitError(ExitCommandError, "failed to load matches", errs[0])
	}
	for _, w := range loaded.Warnings {
		log.Warn().Str("kind", w.Kind).Int32("match_id", w.MatchID).Msg(w.Message)
	}
	holder := match.NewHolder(loaded.Store)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stdin := os.Stdin
	var out io.Writer = cmd.OutOrStdout()
	if console.IsTerminal(stdin) {
		restore, err := console.MakeRaw(stdin)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to enter raw mode", err)
		}
		defer restore()
		out = &crlfWriter{w: out}
	}

	seq := event.NewSequencer()
	keys := keystate.New(keystate.Options{
		KeyTimeout:      cfg.KeyState.KeyTimeout,
		ModifierTimeout: cfg.KeyState.ModifierTimeout,
	})
	input := funnel.NewSource("terminal", seq, funnel.WithKeyObserver(keys))
	control := funnel.NewSource("control", seq)

	term := console.NewTerminal(stdin)
	prompt := console.NewPrompt(term, out)
	ui := console.NewUI(out)
	screen := console.NewScreen()
	screen.OnChange(func(string, int) { _ = screen.Draw(out) })
	clip := console.NewClipboard(screen)

	a := app.New(cfg, holder, seq, app.Collaborators{
		Keys:          screen,
		Clipboard:     clip,
		ClipboardText: clip,
		UI:            ui,
		Selector:      prompt,
		Chooser:       prompt,
		Modifiers:     keys,
	})

	var engineOpts []engine.Option
	if opts.Journal || cfg.Journal.Enabled {
		j, sessionID, err := openSession(ctx, opts, cfg, holder.Store())
		if err != nil {
			return err
		}
		defer j.Close()
		engineOpts = append(engineOpts, engine.WithRecorder(j, sessionID))
		fmt.Fprintf(out, "%s %s\n", styleDim.Render("session"), sessionID)
	}

	var wg sync.WaitGroup
	if !opts.NoWatch {
		w, err := match.NewWatcher(dir, match.DefaultDebounce, func() error {
			res, err := holder.Reload(loader, dir)
			if err != nil {
				_ = ui.ShowNotification(ctx, "Match reload failed: "+err.Error())
				return err
			}
			return ui.ShowNotification(ctx, fmt.Sprintf("Reloaded %d matches", res.Store.Len()))
		})
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Match watcher unavailable")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn().Err(err).Msg("Match watcher stopped")
				}
			}()
		}
	}
	if opts.SecureFile != "" {
		sw := funnel.NewSecureInputWatcher(secureFileProbe(opts.SecureFile), control, funnel.DefaultSecureInputInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw.Run(ctx)
		}()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
			control.Emit(ctx, event.ExitRequested{Mode: event.ExitAllProcesses})
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := term.Run(ctx, input, screen); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Terminal input stopped")
		}
		input.Close()
		control.Close()
	}()

	fmt.Fprintf(out, "%s %d matches from %s. %s\n",
		styleHeading.Render("xpand"), holder.Store().Len(), dir,
		styleDim.Render("Ctrl-T toggles, Ctrl-C exits."))

	mode, err := a.Engine(funnel.New(input, control), engineOpts...).Run(ctx)
	cancel()
	wg.Wait()
	fmt.Fprintln(out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine stopped", err)
	}
	log.Info().Str("mode", string(mode)).Msg("Exited")
	return nil
}

// openSession opens the journal and starts a new session in it.
func openSession(ctx context.Context, opts *RunOptions, cfg *config.Config, store *match.Store) (*journal.Journal, string, error) {
	hash, err := store.Fingerprint()
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, "failed to fingerprint matches", err)
	}
	path := cfg.Journal.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", WrapExitError(ExitCommandError, "failed to create journal directory", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, "failed to open journal", err)
	}

	gen := opts.SessionIDs
	if gen == nil {
		gen = journal.UUIDv7Generator{}
	}
	id := gen.Generate()
	err = j.StartSession(ctx, journal.Session{
		ID:           id,
		Label:        "run",
		StartedAt:    time.Now(),
		StoreMatches: store.Len(),
		StoreHash:    hash,
	})
	if err != nil {
		j.Close()
		return nil, "", WrapExitError(ExitCommandError, "failed to start session", err)
	}
	return j, id, nil
}

// secureFileProbe reports secure input while path exists. The first line
// of the file names the application holding it.
func secureFileProbe(path string) funnel.SecureInputProbe {
	return func(context.Context) (funnel.SecureInputState, error) {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return funnel.SecureInputState{}, nil
		}
		if err != nil {
			return funnel.SecureInputState{}, err
		}
		name, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
		return funnel.SecureInputState{Active: true, AppName: name, AppPath: path}, nil
	}
}

// crlfWriter turns bare line feeds into CRLF, which a terminal in raw mode
// needs to return the carriage.
type crlfWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/roach88/xpand/internal/app"
	"github.com/roach88/xpand/internal/config"
	"github.com/roach88/xpand/internal/console"
	"github.com/roach88/xpand/internal/engine"
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/journal"
	"github.com/roach88/xpand/internal/keystate"
	"github.com/roach88/xpand/internal/match"
	"github.com/roach88/xpand/internal/testutil"
)

const (
	matchDir  = "/match"
	configDir = "/config"
)

// Harness is one scenario execution: a fresh engine, its deterministic
// collaborators and the journal it records to.
type Harness struct {
	scenario *Scenario
	cfg      *config.Config
	matches  *match.Holder
	fs       afero.Fs
	start    time.Time

	app       *app.App
	screen    *console.Screen
	clock     *testutil.DeterministicClock
	keys      *keystate.Store
	ui        *recordingUI
	journal   *journal.Journal
	sessionID string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory filesystem and journal for
// isolation.
//
// Execution flow:
// 1. Write the scenario's match file and load it
// 2. Assemble the pipeline with deterministic collaborators
// 3. Feed the flow, one engine step per input event
// 4. Evaluate assertions against the trace, screen and journal
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.journal.Close()

	result := NewResult()
	if err := h.executeFlow(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}
	result.Screen = h.screen.String()
	result.UI = h.ui.Lines()

	actx := &AssertionContext{
		Ctx:       ctx,
		Journal:   h.journal,
		SessionID: h.sessionID,
		Replay:    h.replay,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(s *Scenario) (*Harness, error) {
	overrides := map[string]any{"paths.config": configDir}
	for k, v := range s.Config {
		overrides[k] = v
	}
	cfg, err := config.FromMap(overrides)
	if err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}

	fs := afero.NewMemMapFs()
	if err := writeMatchFile(fs, s); err != nil {
		return nil, err
	}
	holder, _, err := app.LoadMatches(fs, matchDir)
	if err != nil {
		return nil, err
	}

	start := testutil.Epoch
	if s.Now != "" {
		start, _ = time.Parse(time.RFC3339, s.Now)
	}

	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}

	h := &Harness{
		scenario:  s,
		cfg:       cfg,
		matches:   holder,
		fs:        fs,
		start:     start,
		journal:   j,
		sessionID: "scenario-" + s.Name,
		ui:        &recordingUI{},
	}
	h.clock = testutil.NewDeterministicClock()
	h.clock.Set(start)
	h.keys = keystate.New(keystate.Options{
		KeyTimeout:      cfg.KeyState.KeyTimeout,
		ModifierTimeout: cfg.KeyState.ModifierTimeout,
		Now:             h.clock.Now,
	})

	c, screen := h.collaborators(h.clock.Now)
	h.screen = screen
	c.Modifiers = h.keys
	c.UI = h.ui
	h.app = app.New(cfg, holder, event.NewSequencer(), c)

	hash, err := holder.Store().Fingerprint()
	if err != nil {
		j.Close()
		return nil, err
	}
	err = j.StartSession(context.Background(), journal.Session{
		ID:           h.sessionID,
		Label:        s.Name,
		StartedAt:    start,
		StoreMatches: holder.Store().Len(),
		StoreHash:    hash,
	})
	if err != nil {
		j.Close()
		return nil, err
	}
	return h, nil
}

// collaborators returns a fresh screen, clipboard and selector script.
func (h *Harness) collaborators(now func() time.Time) (app.Collaborators, *console.Screen) {
	screen := console.NewScreen()
	clip := console.NewClipboard(screen)
	clip.SetText(h.scenario.Clipboard)
	sel := testutil.NewScriptedSelector(h.scenario.Answers...)

	c := app.Collaborators{
		Keys:          screen,
		Clipboard:     clip,
		ClipboardText: clip,
		Selector:      sel,
		Chooser:       sel,
		FS:            h.fs,
		Now:           now,
		Rand:          rand.New(rand.NewPCG(1, 2)),
	}
	return c, screen
}

// writeMatchFile stores the scenario's matches as a match file.
func writeMatchFile(fs afero.Fs, s *Scenario) error {
	doc := map[string]*yaml.Node{"matches": &s.Matches}
	if s.GlobalVars.Kind != 0 {
		doc["global_vars"] = &s.GlobalVars
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding matches: %w", err)
	}
	if err := fs.MkdirAll(matchDir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, matchDir+"/scenario.yml", data, 0o644)
}

// executeFlow feeds every step through the engine. Key presses are echoed
// onto the screen and observed by the key state first, the way the input
// source does for live input. An exit stops the flow.
func (h *Harness) executeFlow(ctx context.Context, result *Result) error {
	eng := h.app.Engine(nil, engine.WithRecorder(h.journal, h.sessionID))

	for i, step := range h.scenario.Flow {
		if step.Wait != "" {
			d, _ := time.ParseDuration(step.Wait)
			h.clock.Advance(d)
			continue
		}

		for _, typ := range step.events() {
			if kb, ok := typ.(event.Keyboard); ok {
				h.keys.Observe(kb)
				h.screen.Apply(kb)
			}

			pass := eng.Step(ctx, event.New(h.app.Sequencer.Next(), typ))
			for _, t := range pass.Terminal {
				switch t.Kind() {
				case event.KindKeyboard, event.KindMouse:
					continue
				}
				payload, err := payloadOf(t.Type)
				if err != nil {
					return fmt.Errorf("flow[%d]: %w", i, err)
				}
				result.Trace = append(result.Trace, TraceEvent{
					Seq:     pass.Seq,
					Input:   string(pass.Input.Kind()),
					Kind:    string(t.Kind()),
					Payload: payload,
				})
				if exit, ok := t.Type.(event.Exit); ok {
					result.Exit = string(exit.Mode)
					return nil
				}
			}
		}
	}
	return nil
}

// replay runs the recorded session through a fresh pipeline.
func (h *Harness) replay(ctx context.Context) (engine.ReplayResult, error) {
	entries, err := h.journal.Entries(ctx, h.sessionID)
	if err != nil {
		return engine.ReplayResult{}, err
	}
	clock := testutil.NewDeterministicClock()
	clock.Set(h.start)
	c, _ := h.collaborators(clock.Now)
	fresh := app.New(h.cfg, h.matches, event.NewSequencer(), c)
	return engine.Replay(ctx, entries, fresh.Processor, fresh.Sequencer)
}

// payloadOf decodes an event payload into plain JSON values, dropping
// nulls.
func payloadOf(t event.Type) (map[string]any, error) {
	data, err := event.EncodeType(t)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t.Kind(), err)
	}
	for k, v := range payload {
		if v == nil {
			delete(payload, k)
		}
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return payload, nil
}

// recordingUI keeps every tray request as a line.
type recordingUI struct {
	mu    sync.Mutex
	lines []string
}

func (u *recordingUI) add(line string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lines = append(u.lines, line)
	return nil
}

func (u *recordingUI) ShowNotification(_ context.Context, message string) error {
	return u.add("notify: " + message)
}

func (u *recordingUI) SetIcon(_ context.Context, status event.IconStatus) error {
	return u.add("icon: " + string(status))
}

func (u *recordingUI) OpenFolder(_ context.Context, path string) error {
	return u.add("open: " + path)
}

// Lines returns the recorded lines.
func (u *recordingUI) Lines() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.lines...)
}

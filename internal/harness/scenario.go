package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/xpand/internal/event"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Matches and GlobalVars form the match file under test, in the same
	// format as files in the match directory.
	Matches    yaml.Node `yaml:"matches"`
	GlobalVars yaml.Node `yaml:"global_vars,omitempty"`

	// Config overrides configuration keys, e.g. "engine.undo_backspace".
	Config map[string]any `yaml:"config,omitempty"`

	// Clipboard is the initial clipboard text.
	Clipboard string `yaml:"clipboard,omitempty"`

	// Now is the RFC 3339 start time of the clock. Defaults to
	// testutil.Epoch.
	Now string `yaml:"now,omitempty"`

	// Answers are the indexes picked by selections and choices, in order.
	// -1 dismisses.
	Answers []int `yaml:"answers,omitempty"`

	// Flow is the user input, one action per step.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one user action. Exactly one field is set.
type FlowStep struct {
	// Type presses and releases one key per rune.
	Type string `yaml:"type,omitempty"`
	// Key presses and releases a named key, e.g. backspace or arrow_left.
	Key string `yaml:"key,omitempty"`
	// Press and Release send a single transition, e.g. to hold a modifier.
	Press   string `yaml:"press,omitempty"`
	Release string `yaml:"release,omitempty"`
	// Click presses and releases a mouse button.
	Click string `yaml:"click,omitempty"`
	// HotKey fires a registered shortcut.
	HotKey *int32 `yaml:"hotkey,omitempty"`
	// Menu clicks a tray menu item: toggle, config or exit.
	Menu string `yaml:"menu,omitempty"`
	// Request sends search, toggle, enable, disable or exit.
	Request string `yaml:"request,omitempty"`
	// Wait moves the clock forward.
	Wait string `yaml:"wait,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is the event kind (effect_contains, effect_count, journal_count).
	Kind string `yaml:"kind,omitempty"`

	// Fields are expected payload fields (effect_contains). Subset match.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Count is the expected number of events (effect_count, journal_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected order (effect_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Text is the expected screen text (screen) or a UI line fragment
	// (ui_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertEffectContains  = "effect_contains"
	AssertEffectOrder     = "effect_order"
	AssertEffectCount     = "effect_count"
	AssertScreen          = "screen"
	AssertUIContains      = "ui_contains"
	AssertJournalCount    = "journal_count"
	AssertReplayIdentical = "replay_identical"
)

var requests = map[string]event.Type{
	"search":  event.SearchRequested{},
	"toggle":  event.ToggleRequest{},
	"enable":  event.EnableRequest{},
	"disable": event.DisableRequest{},
	"exit":    event.ExitRequested{Mode: event.ExitAllProcesses},
}

// keyValues is the text produced by named keys.
var keyValues = map[event.Key]string{
	event.KeyEnter: "\n",
	event.KeyTab:   "\t",
	event.KeySpace: " ",
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Matches.Kind != yaml.SequenceNode {
		return fmt.Errorf("matches must be a list")
	}
	if s.GlobalVars.Kind != 0 && s.GlobalVars.Kind != yaml.SequenceNode {
		return fmt.Errorf("global_vars must be a list")
	}
	if s.Now != "" {
		if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
			return fmt.Errorf("now: %w", err)
		}
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step FlowStep) error {
	set := 0
	for _, s := range []string{step.Type, step.Key, step.Press, step.Release, step.Click, step.Menu, step.Request, step.Wait} {
		if s != "" {
			set++
		}
	}
	if step.HotKey != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one action is required, got %d", set)
	}
	if step.Request != "" {
		if _, ok := requests[step.Request]; !ok {
			return fmt.Errorf("unknown request %q", step.Request)
		}
	}
	if step.Wait != "" {
		if d, err := time.ParseDuration(step.Wait); err != nil || d < 0 {
			return fmt.Errorf("wait: invalid duration %q", step.Wait)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEffectContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for effect_contains", index)
		}
	case AssertEffectOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for effect_order", index)
		}
	case AssertEffectCount, AssertJournalCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertUIContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for ui_contains", index)
		}
	case AssertScreen, AssertReplayIdentical:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// events turns a step into the input it produces.
func (step FlowStep) events() []event.Type {
	switch {
	case step.Type != "":
		var out []event.Type
		for _, r := range step.Type {
			k, v := event.KeyOther, string(r)
			switch r {
			case ' ':
				k = event.KeySpace
			case '\n':
				k = event.KeyEnter
			case '\t':
				k = event.KeyTab
			}
			out = append(out,
				event.Keyboard{Key: k, Value: v, Status: event.Pressed},
				event.Keyboard{Key: k, Value: v, Status: event.Released})
		}
		return out
	case step.Key != "":
		k := event.Key(step.Key)
		v := keyValues[k]
		return []event.Type{
			event.Keyboard{Key: k, Value: v, Status: event.Pressed},
			event.Keyboard{Key: k, Value: v, Status: event.Released},
		}
	case step.Press != "":
		return []event.Type{event.Keyboard{Key: event.Key(step.Press), Status: event.Pressed}}
	case step.Release != "":
		return []event.Type{event.Keyboard{Key: event.Key(step.Release), Status: event.Released}}
	case step.Click != "":
		b := event.MouseButton(step.Click)
		return []event.Type{
			event.Mouse{Button: b, Status: event.Pressed},
			event.Mouse{Button: b, Status: event.Released},
		}
	case step.HotKey != nil:
		return []event.Type{event.HotKey{ID: *step.HotKey}}
	case step.Menu != "":
		return []event.Type{event.ContextMenuClicked{ItemID: step.Menu}}
	case step.Request != "":
		return []event.Type{requests[step.Request]}
	}
	return nil
}

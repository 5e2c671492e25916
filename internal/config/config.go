package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/roach88/xpand/internal/event"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// AppName names the xdg directories.
const AppName = "xpand"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "XPAND_"

// Config is the complete xpand configuration.
type Config struct {
	Matcher  Matcher  `koanf:"matcher"`
	Toggle   Toggle   `koanf:"toggle"`
	Inject   Inject   `koanf:"inject"`
	KeyState KeyState `koanf:"keystate"`
	Engine   Engine   `koanf:"engine"`
	Render   Render   `koanf:"render"`
	Paths    Paths    `koanf:"paths"`
	Journal  Journal  `koanf:"journal"`
}

type Matcher struct {
	WordSeparators  []string `koanf:"word_separators"`
	RegexBufferSize int      `koanf:"regex_buffer_size"`
	HistorySize     int      `koanf:"history_size"`
}

// Toggle configures the double press that toggles expansion.
type Toggle struct {
	Key      string        `koanf:"key"`
	Interval time.Duration `koanf:"interval"`
}

type Inject struct {
	Backend            string        `koanf:"backend"`
	ClipboardThreshold int           `koanf:"clipboard_threshold"`
	MaxModifierWait    time.Duration `koanf:"max_modifier_wait"`
	ModifierPoll       time.Duration `koanf:"modifier_poll"`
}

type KeyState struct {
	KeyTimeout      time.Duration `koanf:"key_timeout"`
	ModifierTimeout time.Duration `koanf:"modifier_timeout"`
}

type Engine struct {
	MaxSteps          int   `koanf:"max_steps"`
	UndoBackspace     bool  `koanf:"undo_backspace"`
	AltCodes          bool  `koanf:"alt_codes"`
	ShowNotifications bool  `koanf:"show_notifications"`
	SearchHotKey      int32 `koanf:"search_hotkey"`
}

type Render struct {
	ShellTimeout time.Duration `koanf:"shell_timeout"`
}

// Paths locate the match files and the directory $CONFIG expands to.
type Paths struct {
	Matches string `koanf:"matches"`
	Config  string `koanf:"config"`
}

type Journal struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ToggleKey maps the configured toggle key name to a key. OFF gives the
// empty key.
func (t Toggle) ToggleKey() event.Key {
	switch strings.ToUpper(t.Key) {
	case "ALT":
		return event.KeyAlt
	case "CTRL":
		return event.KeyCtrl
	case "SHIFT":
		return event.KeyShift
	case "META":
		return event.KeyMeta
	}
	return ""
}

// DefaultPath is the user config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// Default returns the built-in configuration, without any user file or
// environment overrides.
func Default() (*Config, error) {
	k, err := baseLayers()
	if err != nil {
		return nil, err
	}
	return decode(k)
}

// FromMap applies overrides, keyed by dotted path or nested maps, on top of
// the built-in defaults. Scenario files use it.
func FromMap(overrides map[string]any) (*Config, error) {
	k, err := baseLayers()
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return decode(k)
}

// Load reads the configuration. An empty path means DefaultPath; a missing
// file at the default path is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	k, err := baseLayers()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	return decode(k)
}

// envKey maps XPAND_INJECT_CLIPBOARD_THRESHOLD to inject.clipboard_threshold.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func baseLayers() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	platform := map[string]any{
		"engine.alt_codes": runtime.GOOS == "windows",
		"paths.matches":    filepath.Join(xdg.ConfigHome, AppName, "match"),
		"paths.config":     filepath.Join(xdg.ConfigHome, AppName),
		"journal.path":     filepath.Join(xdg.DataHome, AppName, "journal.db"),
	}
	if err := k.Load(confmap.Provider(platform, "."), nil); err != nil {
		return nil, fmt.Errorf("load platform defaults: %w", err)
	}
	return k, nil
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and far from
// their source.
func (c *Config) Validate() error {
	var errs []error
	switch c.Inject.Backend {
	case "auto", "keys", "clipboard":
	default:
		errs = append(errs, fmt.Errorf("inject.backend: unknown backend %q", c.Inject.Backend))
	}
	switch strings.ToUpper(c.Toggle.Key) {
	case "OFF", "ALT", "CTRL", "SHIFT", "META":
	default:
		errs = append(errs, fmt.Errorf("toggle.key: unknown key %q", c.Toggle.Key))
	}
	if c.Matcher.RegexBufferSize <= 0 {
		errs = append(errs, errors.New("matcher.regex_buffer_size must be positive"))
	}
	if c.Engine.MaxSteps <= 0 {
		errs = append(errs, errors.New("engine.max_steps must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// rawBytesProvider feeds embedded bytes to koanf.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }

func (r *rawBytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("not implemented")
}

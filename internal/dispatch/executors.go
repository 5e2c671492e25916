package dispatch

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// ErrNoClipboard is returned for rich content when no clipboard backend is
// configured.
var ErrNoClipboard = errors.New("no clipboard backend")

// Backend selects how plain text is injected.
type Backend string

const (
	BackendAuto      Backend = "auto"
	BackendKeys      Backend = "keys"
	BackendClipboard Backend = "clipboard"
)

// DefaultClipboardThreshold is the text length, in runes, above which the
// auto backend pastes instead of typing.
const DefaultClipboardThreshold = 100

// InjectPolicy decides between typing and pasting.
type InjectPolicy struct {
	Backend            Backend
	ClipboardThreshold int
}

// useClipboard applies the policy. A per-match force mode wins over the
// configured backend.
func (p InjectPolicy) useClipboard(text string, force event.ForceMode) bool {
	switch force {
	case event.ForceKeys:
		return false
	case event.ForceClipboard:
		return true
	}
	switch p.Backend {
	case BackendKeys:
		return false
	case BackendClipboard:
		return true
	}
	threshold := p.ClipboardThreshold
	if threshold <= 0 {
		threshold = DefaultClipboardThreshold
	}
	return utf8.RuneCountInString(text) > threshold
}

// TextExecutor injects TextInject effects.
type TextExecutor struct {
	Keys      Keyboard
	Clipboard Clipboard
	Policy    InjectPolicy
}

func (TextExecutor) Name() string { return "text" }

func (x TextExecutor) Execute(ctx context.Context, ev event.Event) (bool, error) {
	t, ok := ev.Type.(event.TextInject)
	if !ok {
		return false, nil
	}
	if x.Clipboard != nil && x.Policy.useClipboard(t.Text, t.ForceMode) {
		return true, x.Clipboard.PasteText(ctx, t.Text)
	}
	return true, x.Keys.InjectText(ctx, t.Text)
}

// CompensationExecutor deletes typed triggers and moves the caret back for
// cursor hints.
type CompensationExecutor struct {
	Keys Keyboard
}

func (CompensationExecutor) Name() string { return "compensation" }

func (x CompensationExecutor) Execute(ctx context.Context, ev event.Event) (bool, error) {
	switch t := ev.Type.(type) {
	case event.TriggerCompensation:
		n := utf8.RuneCountInString(t.Trigger) + utf8.RuneCountInString(t.RightSeparator)
		return true, x.Keys.SendKeys(ctx, repeat(event.KeyBackspace, n))
	case event.CursorHintCompensation:
		return true, x.Keys.SendKeys(ctx, repeat(event.KeyArrowLeft, t.BackCount))
	}
	return false, nil
}

// HTMLExecutor pastes rich text. Without a clipboard the fallback text is
// typed.
type HTMLExecutor struct {
	Keys      Keyboard
	Clipboard Clipboard
}

func (HTMLExecutor) Name() string { return "html" }

func (x HTMLExecutor) Execute(ctx context.Context, ev event.Event) (bool, error) {
	t, ok := ev.Type.(event.HTMLInject)
	if !ok {
		return false, nil
	}
	if x.Clipboard == nil {
		if t.FallbackText == "" {
			return true, ErrNoClipboard
		}
		return true, x.Keys.InjectText(ctx, t.FallbackText)
	}
	return true, x.Clipboard.PasteHTML(ctx, t.HTML, t.FallbackText)
}

// ImageExecutor pastes image files.
type ImageExecutor struct {
	Clipboard Clipboard
}

func (ImageExecutor) Name() string { return "image" }

func (x ImageExecutor) Execute(ctx context.Context, ev event.Event) (bool, error) {
	t, ok := ev.Type.(event.ImageInject)
	if !ok {
		return false, nil
	}
	if x.Clipboard == nil {
		return true, ErrNoClipboard
	}
	return true, x.Clipboard.PasteImage(ctx, t.ImagePath)
}

// UndoExecutor reverts an expansion. The user's Backspace already removed
// the last character, so one less is deleted before the trigger is typed
// back.
type UndoExecutor struct {
	Keys Keyboard
}

func (UndoExecutor) Name() string { return "undo" }

func (x UndoExecutor) Execute(ctx context.Context, ev event.Event) (bool, error) {
	t, ok := ev.Type.(event.Undo)
	if !ok {
		return false, nil
	}
	n := utf8.RuneCountInString(t.Replace) - 1
	if err := x.Keys.SendKeys(ctx, repeat(event.KeyBackspace, n)); err != nil {
		return true, fmt.Errorf("delete expansion: %w", err)
	}
	return true, x.Keys.InjectText(ctx, t.Trigger)
}

// UIExecutor forwards notifications, icon changes and config folder
// requests.
type UIExecutor struct {
	UI        UI
	ConfigDir string
}

func (UIExecutor) Name() string { return "ui" }

func (x UIExecutor) Execute(ctx context.Context, ev event.Event) (bool, error) {
	switch t := ev.Type.(type) {
	case event.ShowNotification:
		return true, x.UI.ShowNotification(ctx, t.Message)
	case event.IconStatusChange:
		return true, x.UI.SetIcon(ctx, t.Status)
	case event.ShowConfigFolder:
		return true, x.UI.OpenFolder(ctx, x.ConfigDir)
	}
	return false, nil
}

// ErrorExecutor reports processing errors. It never fails.
type ErrorExecutor struct {
	log zerolog.Logger
}

// NewErrorExecutor creates the executor.
func NewErrorExecutor() *ErrorExecutor {
	return &ErrorExecutor{log: logging.Component("dispatch.error")}
}

func (*ErrorExecutor) Name() string { return "processing_error" }

func (x *ErrorExecutor) Execute(_ context.Context, ev event.Event) (bool, error) {
	t, ok := ev.Type.(event.ProcessingError)
	if !ok {
		return false, nil
	}
	x.log.Warn().Uint32("source_id", uint32(ev.SourceID)).Str("reason", t.Reason).Msg("Expansion failed")
	return true, nil
}

// Collaborators are the backends the default executors drive. Keys is
// required; the others may be nil.
type Collaborators struct {
	Keys      Keyboard
	Clipboard Clipboard
	UI        UI
	ConfigDir string
	Policy    InjectPolicy
}

// Default returns the standard executor list.
func Default(c Collaborators) []Executor {
	executors := []Executor{
		CompensationExecutor{Keys: c.Keys},
		TextExecutor{Keys: c.Keys, Clipboard: c.Clipboard, Policy: c.Policy},
		HTMLExecutor{Keys: c.Keys, Clipboard: c.Clipboard},
		ImageExecutor{Clipboard: c.Clipboard},
		UndoExecutor{Keys: c.Keys},
	}
	if c.UI != nil {
		executors = append(executors, UIExecutor{UI: c.UI, ConfigDir: c.ConfigDir})
	}
	return append(executors, NewErrorExecutor())
}

package event

// TriggerCompensation removes the typed trigger (and its right separator)
// before the expansion is injected.
type TriggerCompensation struct {
	Trigger        string `json:"trigger"`
	LeftSeparator  string `json:"left_separator,omitempty"`
	RightSeparator string `json:"right_separator,omitempty"`
}

// CursorHintCompensation moves the caret back into the expansion.
type CursorHintCompensation struct {
	BackCount int `json:"back_count"`
}

// TextInject types or pastes plain text.
type TextInject struct {
	Text      string    `json:"text"`
	ForceMode ForceMode `json:"force_mode,omitempty"`
}

// MarkdownInject carries markdown that still needs conversion to HTML.
type MarkdownInject struct {
	Markdown string `json:"markdown"`
}

// HTMLInject pastes rich text, with a plain-text fallback.
type HTMLInject struct {
	HTML         string `json:"html"`
	FallbackText string `json:"fallback_text,omitempty"`
}

// ImageInject pastes an image file.
type ImageInject struct {
	ImagePath string `json:"image_path"`
}

// Undo reverts the previous expansion back to its trigger.
type Undo struct {
	Trigger string `json:"trigger"`
	Replace string `json:"replace"`
}

// ShowNotification asks the UI to display a message.
type ShowNotification struct {
	Message string `json:"message"`
}

// IconStatus is the tray icon state.
type IconStatus string

const (
	IconEnabled     IconStatus = "enabled"
	IconDisabled    IconStatus = "disabled"
	IconSecureInput IconStatus = "secure_input"
)

// IconStatusChange asks the UI to update the tray icon.
type IconStatusChange struct {
	Status IconStatus `json:"status"`
}

// ShowConfigFolder asks the UI to open the configuration directory.
type ShowConfigFolder struct{}

// Exit stops the engine loop once the current results are dispatched.
type Exit struct {
	Mode ExitMode `json:"mode"`
}

func (TriggerCompensation) Kind() Kind    { return KindTriggerCompensation }
func (CursorHintCompensation) Kind() Kind { return KindCursorHintCompensation }
func (TextInject) Kind() Kind             { return KindTextInject }
func (MarkdownInject) Kind() Kind         { return KindMarkdownInject }
func (HTMLInject) Kind() Kind             { return KindHTMLInject }
func (ImageInject) Kind() Kind            { return KindImageInject }
func (Undo) Kind() Kind                   { return KindUndo }
func (ShowNotification) Kind() Kind       { return KindShowNotification }
func (IconStatusChange) Kind() Kind       { return KindIconStatusChange }
func (ShowConfigFolder) Kind() Kind       { return KindShowConfigFolder }
func (Exit) Kind() Kind                   { return KindExit }

func (TriggerCompensation) sealed()    {}
func (CursorHintCompensation) sealed() {}
func (TextInject) sealed()             {}
func (MarkdownInject) sealed()         {}
func (HTMLInject) sealed()             {}
func (ImageInject) sealed()            {}
func (Undo) sealed()                   {}
func (ShowNotification) sealed()       {}
func (IconStatusChange) sealed()       {}
func (ShowConfigFolder) sealed()       {}
func (Exit) sealed()                   {}

// IsInjection reports whether t puts text or keystrokes into the focused
// application.
func IsInjection(t Type) bool {
	switch t.(type) {
	case TriggerCompensation, CursorHintCompensation, TextInject, MarkdownInject,
		HTMLInject, ImageInject, Undo:
		return true
	}
	return false
}

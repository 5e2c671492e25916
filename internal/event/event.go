package event

// Kind names a Type variant. It is stable and used as the discriminator in
// serialized payloads.
type Kind string

// Type is the closed union of event payloads.
type Type interface {
	Kind() Kind
	sealed()
}

// Event is one unit of work for the processor.
//
// Events are values: a stage that wants to change an event returns a new one
// instead of mutating the one it received.
type Event struct {
	SourceID SourceID
	Type     Type
}

// New creates an event with the given source id and payload.
func New(id SourceID, t Type) Event {
	return Event{SourceID: id, Type: t}
}

// CausedBy derives a new event from e, inheriting its source id.
func (e Event) CausedBy(t Type) Event {
	return Event{SourceID: e.SourceID, Type: t}
}

// Noop derives the NOOP sentinel from e.
func (e Event) Noop() Event {
	return e.CausedBy(Noop{})
}

// Kind returns the kind of the payload. A missing payload reads as NOOP.
func (e Event) Kind() Kind {
	if e.Type == nil {
		return KindNoop
	}
	return e.Type.Kind()
}

// IsNoop reports whether e is the NOOP sentinel.
func (e Event) IsNoop() bool {
	return e.Kind() == KindNoop
}

// Noop is the sentinel that stops further stage processing for a pass.
type Noop struct{}

func (Noop) Kind() Kind { return KindNoop }
func (Noop) sealed()    {}

// Kinds, grouped by origin.
const (
	KindNoop Kind = "noop"

	// Input
	KindKeyboard            Kind = "keyboard"
	KindMouse               Kind = "mouse"
	KindHotKey              Kind = "hotkey"
	KindContextMenuClicked  Kind = "context_menu_clicked"
	KindExitRequested       Kind = "exit_requested"
	KindSecureInputEnabled  Kind = "secure_input_enabled"
	KindSecureInputDisabled Kind = "secure_input_disabled"
	KindSearchRequested     Kind = "search_requested"
	KindEnableRequest       Kind = "enable_request"
	KindDisableRequest      Kind = "disable_request"
	KindToggleRequest       Kind = "toggle_request"

	// Internal
	KindProcessingError       Kind = "processing_error"
	KindMatchesDetected       Kind = "matches_detected"
	KindMatchSelected         Kind = "match_selected"
	KindCauseCompensatedMatch Kind = "cause_compensated_match"
	KindRenderingRequested    Kind = "rendering_requested"
	KindRendered              Kind = "rendered"
	KindImageRequested        Kind = "image_requested"
	KindImageResolved         Kind = "image_resolved"
	KindMatchInjected         Kind = "match_injected"
	KindDiscardPrevious       Kind = "discard_previous"
	KindDiscardBetween        Kind = "discard_between"
	KindEnabled               Kind = "enabled"
	KindDisabled              Kind = "disabled"

	// Effects
	KindTriggerCompensation    Kind = "trigger_compensation"
	KindCursorHintCompensation Kind = "cursor_hint_compensation"
	KindTextInject             Kind = "text_inject"
	KindMarkdownInject         Kind = "markdown_inject"
	KindHTMLInject             Kind = "html_inject"
	KindImageInject            Kind = "image_inject"
	KindUndo                   Kind = "undo"
	KindShowNotification       Kind = "show_notification"
	KindIconStatusChange       Kind = "icon_status_change"
	KindShowConfigFolder       Kind = "show_config_folder"
	KindExit                   Kind = "exit"
)

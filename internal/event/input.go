package event

// Key is the raw identity of a keyboard key, independent of the text it
// produced.
type Key string

const (
	KeyOther Key = "other"

	KeyAlt      Key = "alt"
	KeyCtrl     Key = "ctrl"
	KeyShift    Key = "shift"
	KeyMeta     Key = "meta"
	KeyCapsLock Key = "caps_lock"

	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeySpace     Key = "space"
	KeyEscape    Key = "escape"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
	KeyInsert    Key = "insert"

	KeyArrowUp    Key = "arrow_up"
	KeyArrowDown  Key = "arrow_down"
	KeyArrowLeft  Key = "arrow_left"
	KeyArrowRight Key = "arrow_right"
	KeyHome       Key = "home"
	KeyEnd        Key = "end"
	KeyPageUp     Key = "page_up"
	KeyPageDown   Key = "page_down"

	KeyNumpad0 Key = "numpad0"
	KeyNumpad1 Key = "numpad1"
	KeyNumpad2 Key = "numpad2"
	KeyNumpad3 Key = "numpad3"
	KeyNumpad4 Key = "numpad4"
	KeyNumpad5 Key = "numpad5"
	KeyNumpad6 Key = "numpad6"
	KeyNumpad7 Key = "numpad7"
	KeyNumpad8 Key = "numpad8"
	KeyNumpad9 Key = "numpad9"
)

// IsModifier reports whether k is one of the modifier keys.
func (k Key) IsModifier() bool {
	switch k {
	case KeyAlt, KeyCtrl, KeyShift, KeyMeta:
		return true
	}
	return false
}

// IsNavigation reports whether k moves the caret. Matching progress is lost
// whenever the caret moves.
func (k Key) IsNavigation() bool {
	switch k {
	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight,
		KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
		return true
	}
	return false
}

// NumpadDigit returns the digit for a numpad key.
func (k Key) NumpadDigit() (int, bool) {
	switch k {
	case KeyNumpad0:
		return 0, true
	case KeyNumpad1:
		return 1, true
	case KeyNumpad2:
		return 2, true
	case KeyNumpad3:
		return 3, true
	case KeyNumpad4:
		return 4, true
	case KeyNumpad5:
		return 5, true
	case KeyNumpad6:
		return 6, true
	case KeyNumpad7:
		return 7, true
	case KeyNumpad8:
		return 8, true
	case KeyNumpad9:
		return 9, true
	}
	return 0, false
}

// Status is the press state carried by keyboard and mouse events.
type Status string

const (
	Pressed  Status = "pressed"
	Released Status = "released"
)

// Variant distinguishes left and right instances of a modifier.
type Variant string

const (
	VariantNone  Variant = ""
	VariantLeft  Variant = "left"
	VariantRight Variant = "right"
)

// MouseButton identifies a mouse button.
type MouseButton string

const (
	MouseLeft   MouseButton = "left"
	MouseRight  MouseButton = "right"
	MouseMiddle MouseButton = "middle"
	MouseOther  MouseButton = "other"
)

// Keyboard is a raw key event. Value holds the text the key produced, if any.
type Keyboard struct {
	Key     Key     `json:"key"`
	Value   string  `json:"value,omitempty"`
	Status  Status  `json:"status"`
	Variant Variant `json:"variant,omitempty"`
}

// Mouse is a raw mouse button event.
type Mouse struct {
	Button MouseButton `json:"button"`
	Status Status      `json:"status"`
}

// HotKey reports that a registered global shortcut fired.
type HotKey struct {
	ID int32 `json:"id"`
}

// Context menu item ids understood by the context-menu stage.
const (
	MenuItemToggle = "toggle"
	MenuItemConfig = "config"
	MenuItemExit   = "exit"
)

// ContextMenuClicked reports a click on a tray context menu item.
type ContextMenuClicked struct {
	ItemID string `json:"item_id"`
}

// ExitMode selects how far an exit reaches.
type ExitMode string

const (
	ExitAllProcesses ExitMode = "exit_all"
	ExitWorkerOnly   ExitMode = "exit_worker"
	RestartWorker    ExitMode = "restart_worker"
)

// ExitRequested asks the engine to stop.
type ExitRequested struct {
	Mode ExitMode `json:"mode"`
}

// SecureInputEnabled reports that the platform entered secure input and
// keystrokes are no longer observable.
type SecureInputEnabled struct {
	AppName string `json:"app_name,omitempty"`
	AppPath string `json:"app_path,omitempty"`
}

// SecureInputDisabled reports that secure input ended.
type SecureInputDisabled struct{}

// SearchRequested asks for the interactive search over all matches.
type SearchRequested struct{}

// EnableRequest, DisableRequest and ToggleRequest change whether expansion
// is active.
type EnableRequest struct{}
type DisableRequest struct{}
type ToggleRequest struct{}

func (Keyboard) Kind() Kind            { return KindKeyboard }
func (Mouse) Kind() Kind               { return KindMouse }
func (HotKey) Kind() Kind              { return KindHotKey }
func (ContextMenuClicked) Kind() Kind  { return KindContextMenuClicked }
func (ExitRequested) Kind() Kind       { return KindExitRequested }
func (SecureInputEnabled) Kind() Kind  { return KindSecureInputEnabled }
func (SecureInputDisabled) Kind() Kind { return KindSecureInputDisabled }
func (SearchRequested) Kind() Kind     { return KindSearchRequested }
func (EnableRequest) Kind() Kind       { return KindEnableRequest }
func (DisableRequest) Kind() Kind      { return KindDisableRequest }
func (ToggleRequest) Kind() Kind       { return KindToggleRequest }

func (Keyboard) sealed()            {}
func (Mouse) sealed()               {}
func (HotKey) sealed()              {}
func (ContextMenuClicked) sealed()  {}
func (ExitRequested) sealed()       {}
func (SecureInputEnabled) sealed()  {}
func (SecureInputDisabled) sealed() {}
func (SearchRequested) sealed()     {}
func (EnableRequest) sealed()       {}
func (DisableRequest) sealed()      {}
func (ToggleRequest) sealed()       {}

package process

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
)

// ContextMenu routes tray menu clicks.
type ContextMenu struct {
	log zerolog.Logger
}

// NewContextMenu creates the stage.
func NewContextMenu() *ContextMenu {
	return &ContextMenu{log: logging.Component("process.menu")}
}

// Name implements Middleware.
func (*ContextMenu) Name() string { return "context_menu" }

// Next implements Middleware.
func (s *ContextMenu) Next(_ context.Context, ev event.Event, dispatch Dispatch) event.Event {
	click, ok := ev.Type.(event.ContextMenuClicked)
	if !ok {
		return ev
	}
	switch click.ItemID {
	case event.MenuItemToggle:
		dispatch(ev.CausedBy(event.ToggleRequest{}))
	case event.MenuItemConfig:
		return ev.CausedBy(event.ShowConfigFolder{})
	case event.MenuItemExit:
		dispatch(ev.CausedBy(event.ExitRequested{Mode: event.ExitAllProcesses}))
	default:
		s.log.Debug().Str("item", click.ItemID).Msg("Unknown context menu item")
	}
	return ev.Noop()
}

// NoSearchHotKey disables the search shortcut.
const NoSearchHotKey int32 = -1

// HotKey maps registered shortcuts to requests.
type HotKey struct {
	searchID int32
	log      zerolog.Logger
}

// NewHotKey creates the stage. searchID is the hotkey that opens search.
func NewHotKey(searchID int32) *HotKey {
	return &HotKey{searchID: searchID, log: logging.Component("process.hotkey")}
}

// Name implements Middleware.
func (*HotKey) Name() string { return "hotkey" }

// Next implements Middleware.
func (s *HotKey) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	hk, ok := ev.Type.(event.HotKey)
	if !ok {
		return ev
	}
	if s.searchID != NoSearchHotKey && hk.ID == s.searchID {
		return ev.CausedBy(event.SearchRequested{})
	}
	s.log.Debug().Int32("hotkey", hk.ID).Msg("Unhandled hotkey")
	return ev.Noop()
}

// Exit turns exit requests into the terminal Exit effect.
type Exit struct{}

// Name implements Middleware.
func (Exit) Name() string { return "exit" }

// Next implements Middleware.
func (Exit) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	if req, ok := ev.Type.(event.ExitRequested); ok {
		mode := req.Mode
		if mode == "" {
			mode = event.ExitAllProcesses
		}
		return ev.CausedBy(event.Exit{Mode: mode})
	}
	return ev
}

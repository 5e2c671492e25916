package dispatch

import (
	"context"

	"github.com/roach88/xpand/internal/event"
)

// Keyboard injects synthetic key strokes into the focused application.
type Keyboard interface {
	// InjectText types text as a sequence of key strokes.
	InjectText(ctx context.Context, text string) error
	// SendKeys presses and releases each key in order.
	SendKeys(ctx context.Context, keys []event.Key) error
}

// Clipboard injects content by pasting it through the system clipboard.
type Clipboard interface {
	PasteText(ctx context.Context, text string) error
	PasteHTML(ctx context.Context, html, fallback string) error
	PasteImage(ctx context.Context, path string) error
}

// UI is the tray and notification surface.
type UI interface {
	ShowNotification(ctx context.Context, message string) error
	SetIcon(ctx context.Context, status event.IconStatus) error
	OpenFolder(ctx context.Context, path string) error
}

func repeat(k event.Key, n int) []event.Key {
	if n <= 0 {
		return nil
	}
	keys := make([]event.Key, n)
	for i := range keys {
		keys[i] = k
	}
	return keys
}
